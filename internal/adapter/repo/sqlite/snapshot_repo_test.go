package sqliterepo

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"tilecore/internal/app/ports"
	"tilecore/internal/domain/world"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "snapshots.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSnapshotRepo_SaveLatestRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewSnapshotRepo(db)
	ctx := context.Background()
	takenAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	if _, err := repo.Latest(ctx, "m"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	for _, rev := range []uint64{1, 5, 3} {
		snap := world.MapSnapshot{
			MapID: "m", DefinitionID: "duel", Width: 2, Height: 1, Revision: rev, TakenAt: takenAt,
			Tiles: []world.TileState{{ID: 0, TypeID: 2, ResourcesRemaining: int(rev)}},
		}
		if err := repo.Save(ctx, snap); err != nil {
			t.Fatalf("save rev %d: %v", rev, err)
		}
	}
	// Same revision again is ignored.
	if err := repo.Save(ctx, world.MapSnapshot{MapID: "m", Revision: 5, TakenAt: takenAt}); err != nil {
		t.Fatalf("duplicate save: %v", err)
	}

	got, err := repo.Latest(ctx, "m")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got.Revision != 5 || got.DefinitionID != "duel" || got.Width != 2 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
	if len(got.Tiles) != 1 || got.Tiles[0].ResourcesRemaining != 5 {
		t.Fatalf("expected first revision-5 payload: %+v", got.Tiles)
	}
	if !got.TakenAt.Equal(takenAt) {
		t.Fatalf("unexpected taken_at %v", got.TakenAt)
	}
}

func TestTxManager_RollsBack(t *testing.T) {
	db := openTestDB(t)
	repo := NewSnapshotRepo(db)
	ctx := context.Background()
	wantErr := errors.New("abort")

	err := NewTxManager(db).RunInTx(ctx, func(txCtx context.Context) error {
		if err := repo.Save(txCtx, world.MapSnapshot{MapID: "m", Revision: 1, TakenAt: time.Now()}); err != nil {
			return err
		}
		if _, err := repo.Latest(txCtx, "m"); err != nil {
			return err
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}
	if _, err := repo.Latest(ctx, "m"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("rolled back save must not be visible, got %v", err)
	}
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "again.db")
	for i := 0; i < 2; i++ {
		db, err := Open(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		_ = db.Close()
	}
}
