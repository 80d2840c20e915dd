package decks

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrejsk/kartoteka/internal/common"
	"github.com/andrejsk/kartoteka/internal/deckname"
	"github.com/andrejsk/kartoteka/internal/models"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE decks (
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL COLLATE NOCASE UNIQUE,
  kind INTEGER NOT NULL DEFAULT 0,
  mtime_secs INTEGER NOT NULL DEFAULT 0,
  usn INTEGER NOT NULL DEFAULT 0
);
`)
	require.NoError(t, err)

	return db
}

func TestAdd_AssignsID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	d := models.NewNormalDeck("Spanish")
	d.SetModified(3)
	before := time.Now().UnixMilli()
	require.NoError(t, r.Add(ctx, d))

	assert.NotEqual(t, models.SentinelDeckID, d.ID)
	assert.GreaterOrEqual(t, int64(d.ID), before)

	got, err := r.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spanish", got.Name)
	assert.Equal(t, models.KindNormal, got.Kind)
	assert.Equal(t, int64(3), got.USN)
}

func TestAdd_DistinctIDsWithinSameMillisecond(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	seen := map[models.DeckID]bool{}
	for i, name := range []string{"A", "B", "C", "D"} {
		d := models.NewNormalDeck(name)
		require.NoError(t, r.Add(ctx, d))
		require.False(t, seen[d.ID], "duplicate id on deck %d", i)
		seen[d.ID] = true
	}
}

func TestAdd_KeepsExplicitID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	d := models.NewNormalDeck("Imported")
	d.ID = 42
	require.NoError(t, r.Add(ctx, d))

	got, err := r.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "Imported", got.Name)
}

func TestGet_NotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := r.Get(context.Background(), 999)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	d := models.NewNormalDeck("Languages\x1fSpanish")
	require.NoError(t, r.Add(ctx, d))

	id, err := r.GetID(ctx, "Languages\x1fSpanish")
	require.NoError(t, err)
	assert.Equal(t, d.ID, id)

	// name matching is case-insensitive, like the collection's collation
	id, err = r.GetID(ctx, "languages\x1fspanish")
	require.NoError(t, err)
	assert.Equal(t, d.ID, id)

	_, err = r.GetID(ctx, "Languages")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdate(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	d := models.NewNormalDeck("Old")
	require.NoError(t, r.Add(ctx, d))

	d.Name = "New"
	d.SetModified(7)
	require.NoError(t, r.Update(ctx, d))

	got, err := r.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)
	assert.Equal(t, int64(7), got.USN)
}

func TestUpdate_NotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	d := models.NewNormalDeck("Ghost")
	d.ID = 12345
	err := r.Update(context.Background(), d)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpsert_InsertThenRewrite(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	d := models.NewNormalDeck("recovered77")
	d.ID = 77
	require.NoError(t, r.Upsert(ctx, d))

	d.Name = "recovered77+"
	require.NoError(t, r.Upsert(ctx, d))

	got, err := r.Get(ctx, 77)
	require.NoError(t, err)
	assert.Equal(t, "recovered77+", got.Name)
}

func TestListByPrefix(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	for _, name := range []string{
		"A",
		"A\x1fB",
		"A\x1fB\x1fC",
		"AB",
		"Z",
	} {
		require.NoError(t, r.Add(ctx, models.NewNormalDeck(name)))
	}

	children, err := r.ListByPrefix(ctx, "A"+deckname.Separator)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "A\x1fB", children[0].Name)
	assert.Equal(t, "A\x1fB\x1fC", children[1].Name)
}

func TestListByPrefix_EscapesLikeMetacharacters(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Add(ctx, models.NewNormalDeck("100%\x1fdone")))
	require.NoError(t, r.Add(ctx, models.NewNormalDeck("100x\x1fdone")))

	children, err := r.ListByPrefix(ctx, "100%"+deckname.Separator)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "100%\x1fdone", children[0].Name)
}

func TestAll_OrderedByName(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	for _, name := range []string{"B", "A", "C"} {
		require.NoError(t, r.Add(ctx, models.NewNormalDeck(name)))
	}

	all, err := r.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "A", all[0].Name)
	assert.Equal(t, "B", all[1].Name)
	assert.Equal(t, "C", all[2].Name)
}

func TestRemove(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	d := models.NewNormalDeck("Temp")
	require.NoError(t, r.Add(ctx, d))
	require.NoError(t, r.Remove(ctx, d.ID))

	_, err := r.Get(ctx, d.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGet_DBError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, name, kind, mtime_secs, usn FROM decks WHERE id = \?`).
		WillReturnError(errors.New("disk I/O error"))

	r := NewSQLiteRepository(db)
	_, err = r.Get(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_DBError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE decks SET name = \?, kind = \?, mtime_secs = \?, usn = \? WHERE id = \?`).
		WillReturnError(errors.New("database is locked"))

	r := NewSQLiteRepository(db)
	d := models.NewNormalDeck("X")
	d.ID = 1
	err = r.Update(context.Background(), d)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
