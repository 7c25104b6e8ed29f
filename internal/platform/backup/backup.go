// Package backup snapshots every record collection into an xz-compressed
// JSON document and restores from one.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ulikunitz/xz"

	"hrdesk/internal/domain/records"
)

const (
	FormatVersion = 1
	Extension     = ".json.xz"
)

var ErrUnsupportedVersion = errors.New("backup: unsupported snapshot version")

type Snapshot struct {
	Version     int                        `json:"version"`
	CreatedAt   time.Time                  `json:"createdAt"`
	Collections map[string]json.RawMessage `json:"collections"`
}

// Take copies the raw value of every known collection. Values that are not
// valid JSON are left out and logged.
func Take(ctx context.Context, store *records.Store) (Snapshot, error) {
	snap := Snapshot{
		Version:     FormatVersion,
		CreatedAt:   store.Now().UTC(),
		Collections: map[string]json.RawMessage{},
	}
	ctx, unlock := store.Lock(ctx)
	defer unlock()
	for _, name := range records.AllCollections {
		raw, ok, err := store.Backend().Get(ctx, name)
		if err != nil {
			return Snapshot{}, fmt.Errorf("backup: read %s: %w", name, err)
		}
		if !ok || raw == "" {
			continue
		}
		if !json.Valid([]byte(raw)) {
			slog.Warn("backup skipped corrupt collection", "collection", name)
			continue
		}
		snap.Collections[name] = json.RawMessage(raw)
	}
	return snap, nil
}

func Encode(w io.Writer, snap Snapshot) error {
	zw, err := xz.NewWriter(w)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(zw).Encode(snap); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}

func Decode(r io.Reader) (Snapshot, error) {
	zr, err := xz.NewReader(r)
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := json.NewDecoder(zr).Decode(&snap); err != nil {
		return Snapshot{}, err
	}
	if snap.Version != FormatVersion {
		return Snapshot{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, snap.Version)
	}
	return snap, nil
}

// Restore replaces every known collection in one all-or-nothing write.
// Collections missing from the snapshot are reset to empty.
func Restore(ctx context.Context, store *records.Store, snap Snapshot) error {
	entries := make(map[string]string, len(records.AllCollections))
	for _, name := range records.AllCollections {
		raw, ok := snap.Collections[name]
		if !ok {
			entries[name] = "[]"
			continue
		}
		entries[name] = string(raw)
	}
	ctx, unlock := store.Lock(ctx)
	defer unlock()
	if err := store.Backend().SetMulti(ctx, entries); err != nil {
		return fmt.Errorf("backup: restore: %w", err)
	}
	return nil
}
