package collection

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/andrejsk/kartoteka/internal/logging"
	"github.com/andrejsk/kartoteka/internal/models"
	"github.com/andrejsk/kartoteka/internal/repositories/repomanager"

	_ "modernc.org/sqlite"
)

func newTestCollection(t *testing.T) *Collection {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	repos := repomanager.NewSQLiteRepositoryManager()
	require.NoError(t, repos.RunMigrations(context.Background(), db))

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewWithDB(db, repos, logger)
}

func deckNames(t *testing.T, c *Collection) []string {
	t.Helper()
	all, err := c.ListDecks(context.Background())
	require.NoError(t, err)
	names := make([]string, 0, len(all))
	for _, d := range all {
		names = append(names, d.Name)
	}
	return names
}

func mustAdd(t *testing.T, c *Collection, deck *models.Deck) *OpOutput {
	t.Helper()
	out, err := c.AddDeck(context.Background(), deck)
	require.NoError(t, err)
	return out
}

func setUSN(t *testing.T, c *Collection, usn int64) {
	t.Helper()
	require.NoError(t, c.repos.Metadata(c.db).SetUSN(context.Background(), usn))
}

func TestOpen_MigratesAndReopens(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "collection.db")

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	c, err := Open(ctx, dsn, 5*time.Second, logger)
	require.NoError(t, err)
	mustAdd(t, c, models.NewNormalDeck("Default"))
	require.NoError(t, c.Close())

	c, err = Open(ctx, dsn, 0, logger)
	require.NoError(t, err)
	defer c.Close()

	id, err := c.DeckIDByName(ctx, "Default")
	require.NoError(t, err)
	deck, err := c.GetDeck(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Default", deck.Name)
}
