package main

import (
	"context"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	yamlcatalog "tilecore/internal/adapter/catalog/yamlcatalog"
	httpadapter "tilecore/internal/adapter/http"
	"tilecore/internal/adapter/mapdef"
	metricsinmem "tilecore/internal/adapter/metrics/inmemory"
	gormrepo "tilecore/internal/adapter/repo/gorm"
	"tilecore/internal/adapter/repo/memory"
	sqliterepo "tilecore/internal/adapter/repo/sqlite"
	"tilecore/internal/adapter/snapshotfile"
	"tilecore/internal/app/harvest"
	"tilecore/internal/app/maps"
	"tilecore/internal/app/occupancy"
	"tilecore/internal/app/ports"
	"tilecore/internal/app/tiles"

	"github.com/cloudwego/hertz/pkg/app/server"
)

type config struct {
	HTTPAddr       string
	DBDSN          string
	MigrationsDir  string
	SQLitePath     string
	TerrainCatalog string
	MapsDir        string
	SnapshotDir    string
	BootMaps       []string
	DBTimeout      time.Duration
}

func loadConfig() config {
	return config{
		HTTPAddr:       stringEnv("TILECORE_HTTP_ADDR", ":8080"),
		DBDSN:          stringEnv("TILECORE_DB_DSN", ""),
		MigrationsDir:  stringEnv("TILECORE_MIGRATIONS_DIR", "./migrations"),
		SQLitePath:     stringEnv("TILECORE_SQLITE_PATH", ""),
		TerrainCatalog: stringEnv("TILECORE_TERRAIN_CATALOG", "./configs/terrain.yaml"),
		MapsDir:        stringEnv("TILECORE_MAPS_DIR", "./maps"),
		SnapshotDir:    stringEnv("TILECORE_SNAPSHOT_DIR", ""),
		BootMaps:       listEnv("TILECORE_BOOT_MAPS"),
		DBTimeout:      time.Duration(intEnv("TILECORE_DB_TIMEOUT_SECONDS", 30)) * time.Second,
	}
}

func main() {
	cfg := loadConfig()

	catalog, err := yamlcatalog.Load(cfg.TerrainCatalog)
	if err != nil {
		log.Fatalf("load terrain catalog: %v", err)
	}
	store := memory.NewStore()
	mapStore := memory.NewMapStore(store)
	snapshots, txManager := mustBuildSnapshotRepo(cfg, store)
	kpiRecorder := metricsinmem.NewRecorder()

	mapsUC := maps.UseCase{
		Definitions: mapdef.Provider{Root: cfg.MapsDir},
		Terrain:     catalog,
		Store:       mapStore,
		Snapshots:   snapshots,
		TxManager:   txManager,
		Now:         time.Now,
	}
	if cfg.SnapshotDir != "" {
		mapsUC.Archive = snapshotfile.NewStore(cfg.SnapshotDir)
	}
	bootMaps(mapsUC, cfg.BootMaps)

	h := httpadapter.Handler{
		MapsUC:      mapsUC,
		TilesUC:     tiles.UseCase{Maps: mapStore},
		OccupancyUC: occupancy.UseCase{Maps: mapStore, Metrics: kpiRecorder},
		HarvestUC:   harvest.UseCase{Maps: mapStore, Metrics: kpiRecorder},
		KPI:         kpiRecorder,
	}

	s := server.Default(server.WithHostPorts(cfg.HTTPAddr))
	h.RegisterRoutes(s)

	log.Printf("tilecore server listening on %s (maps: %s)", cfg.HTTPAddr, cfg.MapsDir)
	s.Spin()
}

// mustBuildSnapshotRepo prefers postgres, then sqlite, then the in-memory
// store shared with the live maps.
func mustBuildSnapshotRepo(cfg config, store *memory.Store) (ports.SnapshotRepository, ports.TxManager) {
	switch {
	case cfg.DBDSN != "":
		db, err := gormrepo.OpenPostgres(cfg.DBDSN)
		if err != nil {
			log.Fatalf("open postgres: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.DBTimeout)
		defer cancel()
		if err := gormrepo.ApplyMigrations(ctx, db, os.DirFS(cfg.MigrationsDir)); err != nil {
			log.Fatalf("apply migrations from %s: %v", cfg.MigrationsDir, err)
		}
		log.Printf("snapshots: postgres")
		return gormrepo.NewMapSnapshotRepo(db), gormrepo.NewTxManager(db)
	case cfg.SQLitePath != "":
		db, err := sqliterepo.Open(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("open sqlite %s: %v", cfg.SQLitePath, err)
		}
		log.Printf("snapshots: sqlite %s", cfg.SQLitePath)
		return sqliterepo.NewSnapshotRepo(db), sqliterepo.NewTxManager(db)
	default:
		log.Printf("snapshots: in-memory (set TILECORE_DB_DSN or TILECORE_SQLITE_PATH to persist)")
		return memory.NewSnapshotRepo(store), memory.NewTxManager(store)
	}
}

// bootMaps loads each definition under a map id equal to its definition
// id, restoring the latest snapshot when there is one.
func bootMaps(uc maps.UseCase, ids []string) {
	for _, id := range ids {
		summary, err := uc.Load(context.Background(), maps.LoadRequest{MapID: id, DefinitionID: id, Restore: true})
		if errors.Is(err, ports.ErrConflict) {
			continue
		}
		if err != nil {
			log.Fatalf("boot map %s: %v", id, err)
		}
		log.Printf("booted map %s (%d tiles, revision %d, restored=%v)", summary.MapID, summary.TileCount, summary.Revision, summary.Restored)
	}
}

func intEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func stringEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func listEnv(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
