package memory

import (
	"sync"

	"tilecore/internal/app/ports"
	"tilecore/internal/domain/world"
)

// Store backs the in-memory repositories. txMu serialises
// TxManager.RunInTx; dataMu guards the maps so repositories stay safe to
// call with or without a transaction.
type Store struct {
	txMu      sync.Mutex
	dataMu    sync.RWMutex
	maps      map[string]ports.MapInstance
	snapshots map[string][]world.MapSnapshot
}

func NewStore() *Store {
	return &Store{
		maps:      make(map[string]ports.MapInstance),
		snapshots: make(map[string][]world.MapSnapshot),
	}
}
