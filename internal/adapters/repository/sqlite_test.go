package repository_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	repository "github.com/okian/woodshed/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
)

func newStore(t *testing.T) *repository.SQLiteStore {
	t.Helper()
	store, err := repository.NewSQLiteStore(filepath.Join(t.TempDir(), "practice.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_Open(t *testing.T) {
	Convey("Given a database path in a fresh directory", t, func() {
		path := filepath.Join(t.TempDir(), "practice.db")

		Convey("When opening with a custom busy timeout", func() {
			store, err := repository.NewSQLiteStore(path, repository.WithBusyTimeout(time.Second))

			Convey("Then the store opens and closes cleanly", func() {
				So(err, ShouldBeNil)
				So(store, ShouldNotBeNil)
				So(store.Close(), ShouldBeNil)
			})
		})

		Convey("When opening the same database twice in sequence", func() {
			store, err := repository.NewSQLiteStore(path)
			So(err, ShouldBeNil)
			So(store.Close(), ShouldBeNil)

			reopened, err := repository.NewSQLiteStore(path)

			Convey("Then the idempotent schema applies without error", func() {
				So(err, ShouldBeNil)
				So(reopened.Close(), ShouldBeNil)
			})
		})
	})
}

func TestSQLiteStore_CreateRegiment(t *testing.T) {
	Convey("Given an empty store", t, func() {
		store := newStore(t)
		ctx := context.Background()
		practicedAt := time.Date(2026, 2, 1, 18, 0, 0, 0, time.UTC)

		Convey("When creating a regiment with three pieces", func() {
			id, err := store.CreateRegiment(ctx, practicedAt, []string{"Scales", "Etude No. 2", "Autumn Leaves"})

			Convey("Then all rows are persisted together", func() {
				So(err, ShouldBeNil)
				So(id, ShouldBeGreaterThan, 0)

				counts, err := store.Counts(ctx)
				So(err, ShouldBeNil)
				So(counts.Regiments, ShouldEqual, 1)
				So(counts.Pieces, ShouldEqual, 3)
				So(counts.LogEntries, ShouldEqual, 0)
			})
		})

		Convey("When one piece name violates the schema", func() {
			// The blank-name check rejects the second insert mid-transaction.
			_, err := store.CreateRegiment(ctx, practicedAt, []string{"Scales", ""})

			Convey("Then the whole transaction rolls back", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, repository.ErrPersistence), ShouldBeTrue)

				counts, err := store.Counts(ctx)
				So(err, ShouldBeNil)
				So(counts.Regiments, ShouldEqual, 0)
				So(counts.Pieces, ShouldEqual, 0)
			})
		})

		Convey("When creating two regiments", func() {
			id1, err1 := store.CreateRegiment(ctx, practicedAt, []string{"Scales"})
			id2, err2 := store.CreateRegiment(ctx, practicedAt.Add(time.Hour), []string{"Etude"})

			Convey("Then ids are distinct and both persist", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(id2, ShouldNotEqual, id1)
			})
		})
	})
}

func TestSQLiteStore_LogEntries(t *testing.T) {
	Convey("Given a store with one regiment and one piece", t, func() {
		store := newStore(t)
		ctx := context.Background()
		practicedAt := time.Date(2026, 2, 1, 18, 0, 0, 0, time.UTC)

		_, err := store.CreateRegiment(ctx, practicedAt, []string{"Scales"})
		So(err, ShouldBeNil)

		rows, err := store.FetchAllHierarchy(ctx)
		So(err, ShouldBeNil)
		So(rows, ShouldHaveLength, 1)
		pieceID := *rows[0].PieceID

		Convey("When the piece has no entries", func() {
			sample, err := store.LatestLogEntry(ctx, pieceID)

			Convey("Then the latest entry is nil without error", func() {
				So(err, ShouldBeNil)
				So(sample, ShouldBeNil)
			})
		})

		Convey("When appending entries", func() {
			first := practicedAt.Add(time.Minute)
			second := practicedAt.Add(2 * time.Minute)

			_, err := store.AppendLogEntry(ctx, pieceID, 100, first)
			So(err, ShouldBeNil)
			_, err = store.AppendLogEntry(ctx, pieceID, 120, second)
			So(err, ShouldBeNil)

			Convey("Then the latest entry reflects the newest append", func() {
				sample, err := store.LatestLogEntry(ctx, pieceID)
				So(err, ShouldBeNil)
				So(sample, ShouldNotBeNil)
				So(sample.BPM, ShouldEqual, 120)
				So(sample.At.UnixMilli(), ShouldEqual, second.UnixMilli())
			})
		})

		Convey("When appending to a piece that does not exist", func() {
			_, err := store.AppendLogEntry(ctx, 9999, 100, practicedAt)

			Convey("Then the foreign key rejects the insert", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, repository.ErrPersistence), ShouldBeTrue)
			})
		})
	})
}

func TestSQLiteStore_FetchAllHierarchy(t *testing.T) {
	Convey("Given a store with layered practice history", t, func() {
		store := newStore(t)
		ctx := context.Background()
		older := time.Date(2026, 2, 1, 18, 0, 0, 0, time.UTC)
		newer := older.Add(24 * time.Hour)

		olderID, err := store.CreateRegiment(ctx, older, []string{"Scales", "Etude"})
		So(err, ShouldBeNil)
		newerID, err := store.CreateRegiment(ctx, newer, []string{"Autumn Leaves"})
		So(err, ShouldBeNil)

		Convey("When fetching with no log entries", func() {
			rows, err := store.FetchAllHierarchy(ctx)

			Convey("Then every piece appears as a joinless row", func() {
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 3)
				for _, row := range rows {
					So(row.PieceID, ShouldNotBeNil)
					So(row.LogID, ShouldBeNil)
				}
			})

			Convey("Then regiments come back newest first", func() {
				So(err, ShouldBeNil)
				So(rows[0].RegimentID, ShouldEqual, newerID)
				So(rows[len(rows)-1].RegimentID, ShouldEqual, olderID)
			})
		})

		Convey("When a piece accumulates entries", func() {
			rows, err := store.FetchAllHierarchy(ctx)
			So(err, ShouldBeNil)
			pieceID := *rows[0].PieceID

			_, err = store.AppendLogEntry(ctx, pieceID, 90, newer.Add(time.Minute))
			So(err, ShouldBeNil)
			_, err = store.AppendLogEntry(ctx, pieceID, 95, newer.Add(2*time.Minute))
			So(err, ShouldBeNil)

			rows, err = store.FetchAllHierarchy(ctx)

			Convey("Then the piece fans out to one row per entry in append order", func() {
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 4)
				So(*rows[0].BPM, ShouldEqual, 90)
				So(*rows[1].BPM, ShouldEqual, 95)
				So(*rows[0].LogID, ShouldBeLessThan, *rows[1].LogID)
			})
		})
	})
}
