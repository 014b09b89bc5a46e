// Package db is the installed-package registry: a JSON map persisted with
// atomic-write semantics, keyed by package name. Grounded on the teacher's
// renameio.TempFile/CloseAtomicallyReplace usage in cmd/distri/install.go's
// hookinstall, generalized from single in-prefix files to the whole
// installed.json document.
package db

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/google/renameio"

	"github.com/tpt-project/tpt/internal/tptlog"
	tpt "github.com/tpt-project/tpt"
)

// DB is the file-backed installed-package registry. Lookup by name is the
// only query it needs to support.
type DB struct {
	mu     sync.RWMutex
	path   string
	logger *tptlog.Logger

	records map[string]tpt.InstalledRecord
}

// Open loads path into memory. A missing or corrupt file is not fatal: it
// falls back to an empty map and logs a warning, per spec.md §4.7.
func Open(path string, logger *tptlog.Logger) (*DB, error) {
	d := &DB{path: path, logger: logger, records: map[string]tpt.InstalledRecord{}}
	b, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) && logger != nil {
			logger.Warning("installed-db %s unreadable, starting empty: %v", path, err)
		}
		return d, nil
	}
	var records map[string]tpt.InstalledRecord
	if err := json.Unmarshal(b, &records); err != nil {
		if logger != nil {
			logger.Warning("installed-db %s corrupt, starting empty: %v", path, err)
		}
		return d, nil
	}
	d.records = records
	return d, nil
}

// Get looks up name, reporting whether it is installed.
func (d *DB) Get(name string) (tpt.InstalledRecord, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.records[name]
	return r, ok
}

// All returns a snapshot copy of every installed record, keyed by name.
func (d *DB) All() map[string]tpt.InstalledRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]tpt.InstalledRecord, len(d.records))
	for k, v := range d.records {
		out[k] = v
	}
	return out
}

// Save upserts name's record and atomically persists the whole registry.
func (d *DB) Save(name string, record tpt.InstalledRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.records[name] = record
	return d.flushLocked()
}

// Remove deletes name from the registry (no-op if absent) and atomically
// persists the change.
func (d *DB) Remove(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.records, name)
	return d.flushLocked()
}

func (d *DB) flushLocked() error {
	b, err := json.MarshalIndent(d.records, "", "  ")
	if err != nil {
		return err
	}
	return renameio.WriteFile(d.path, b, 0o644)
}
