// Package deckname implements the machine-name encoding of the deck tree.
//
// A deck's position in the tree is encoded in its name: components joined
// by the reserved unit separator (0x1f). The separator and join order are
// part of the on-disk format and must not change, or existing collections
// stop resolving their hierarchy. The human-facing ("native") form joins
// components with "::" instead.
package deckname

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Separator joins machine-name components. Reserved: it may not appear
// inside a component.
const Separator = "\x1f"

// NativeSeparator joins components in the human-facing form.
const NativeSeparator = "::"

// Split breaks a machine name into its ordered components. An empty name
// yields a single empty component, mirroring strings.Split.
func Split(name string) []string {
	return strings.Split(name, Separator)
}

// Join is the inverse of Split.
func Join(components []string) string {
	return strings.Join(components, Separator)
}

// NumComponents returns the nesting depth encoded in a machine name.
func NumComponents(name string) int {
	return strings.Count(name, Separator) + 1
}

// ImmediateParent returns the machine name of the immediate parent (all
// components but the last). ok is false when the name has one component
// and therefore no parent.
func ImmediateParent(name string) (parent string, ok bool) {
	idx := strings.LastIndex(name, Separator)
	if idx < 0 {
		return "", false
	}
	return name[:idx], true
}

// ToNative converts a machine name to its display form.
func ToNative(name string) string {
	return strings.ReplaceAll(name, Separator, NativeSeparator)
}

// FromNative converts a display name to the machine form.
func FromNative(name string) string {
	return strings.ReplaceAll(name, NativeSeparator, Separator)
}

func invalidComponentChar(r rune) bool {
	return unicode.IsControl(r) || r == '"'
}

// normalizeComponent canonicalizes one component: Unicode NFC, invalid
// characters removed, surrounding whitespace trimmed. A component left
// empty becomes "blank" so the path keeps its depth.
func normalizeComponent(comp string) string {
	c := norm.NFC.String(comp)
	c = strings.Map(func(r rune) rune {
		if invalidComponentChar(r) {
			return -1
		}
		return r
	}, c)
	c = strings.TrimSpace(c)
	if c == "" {
		return "blank"
	}
	return c
}

// Normalize canonicalizes every component of a machine name. The function
// is pure and idempotent; ancestor case reconciliation and uniqueness
// checks both assume its output is stable.
func Normalize(name string) string {
	components := Split(name)
	for i, comp := range components {
		components[i] = normalizeComponent(comp)
	}
	return Join(components)
}
