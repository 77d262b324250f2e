// Package snapshotfile archives map snapshots as zstd-compressed files:
// a JSON header line followed by a gob-encoded world.MapSnapshot.
package snapshotfile

import (
	"bufio"
	"context"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"tilecore/internal/app/ports"
	"tilecore/internal/domain/world"
)

const (
	FormatVersion = 1
	fileSuffix    = ".tile.zst"
)

var ErrInvalidMapID = fmt.Errorf("map id is not a valid file name: %w", ports.ErrInvalidID)

type Header struct {
	Version      int    `json:"version"`
	MapID        string `json:"map_id"`
	DefinitionID string `json:"definition_id"`
	Revision     uint64 `json:"revision"`
}

// Store keeps one directory per map under Dir, one file per revision.
type Store struct {
	Dir string
}

func NewStore(dir string) Store {
	return Store{Dir: dir}
}

func (s Store) Save(_ context.Context, snap world.MapSnapshot) error {
	dir, err := s.mapDir(snap.MapID)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, fileName(snap.Revision))
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return WriteFile(path, snap)
}

// Latest returns the snapshot with the highest revision on disk.
func (s Store) Latest(_ context.Context, mapID string) (world.MapSnapshot, error) {
	dir, err := s.mapDir(mapID)
	if err != nil {
		return world.MapSnapshot{}, err
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return world.MapSnapshot{}, ports.ErrNotFound
	}
	if err != nil {
		return world.MapSnapshot{}, err
	}
	best, found := uint64(0), false
	for _, e := range entries {
		rev, ok := parseFileName(e.Name())
		if e.IsDir() || !ok {
			continue
		}
		if !found || rev > best {
			best, found = rev, true
		}
	}
	if !found {
		return world.MapSnapshot{}, ports.ErrNotFound
	}
	return ReadFile(filepath.Join(dir, fileName(best)))
}

func (s Store) mapDir(mapID string) (string, error) {
	if mapID == "" || mapID == "." || mapID == ".." || strings.ContainsAny(mapID, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidMapID, mapID)
	}
	return filepath.Join(s.Dir, mapID), nil
}

func fileName(revision uint64) string {
	return fmt.Sprintf("%020d%s", revision, fileSuffix)
}

func parseFileName(name string) (uint64, bool) {
	if !strings.HasSuffix(name, fileSuffix) {
		return 0, false
	}
	rev, err := strconv.ParseUint(strings.TrimSuffix(name, fileSuffix), 10, 64)
	return rev, err == nil
}

// WriteFile writes snap to path through a temporary file, so a reader
// never sees a partial snapshot.
func WriteFile(path string, snap world.MapSnapshot) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	enc, err := zstd.NewWriter(tmp, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, err := json.Marshal(Header{
		Version:      FormatVersion,
		MapID:        snap.MapID,
		DefinitionID: snap.DefinitionID,
		Revision:     snap.Revision,
	})
	if err != nil {
		return err
	}
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func ReadFile(path string) (world.MapSnapshot, error) {
	var snap world.MapSnapshot
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	var h Header
	if err := json.Unmarshal(line, &h); err != nil {
		return snap, fmt.Errorf("decode header: %w", err)
	}
	if h.Version != FormatVersion {
		return snap, fmt.Errorf("unsupported snapshot version %d", h.Version)
	}
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}
