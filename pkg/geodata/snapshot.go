package geodata

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// snapshotVersion guards against loading snapshots written by an
// incompatible record layout.
const snapshotVersion = 1

type snapshot struct {
	Version int           `msgpack:"v"`
	Records []PlaceRecord `msgpack:"records"`
}

// SaveSnapshot writes the record set as a msgpack binary snapshot.
// Snapshots skip TSV parsing and key normalization on startup.
func SaveSnapshot(path string, records []PlaceRecord) error {
	data, err := msgpack.Marshal(snapshot{Version: snapshotVersion, Records: records})
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	log.Debugf("Wrote snapshot of %d places to %s", len(records), path)
	return nil
}

// LoadSnapshot reads a msgpack binary snapshot produced by SaveSnapshot.
func LoadSnapshot(path string) ([]PlaceRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	var snap snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", path, err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("snapshot %s has version %d, want %d", path, snap.Version, snapshotVersion)
	}
	if len(snap.Records) == 0 {
		return nil, fmt.Errorf("snapshot %s contains no records", path)
	}
	log.Debugf("Loaded %d places from snapshot %s", len(snap.Records), path)
	return snap.Records, nil
}
