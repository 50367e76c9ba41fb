package driver

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
)

// BackupEnvelope is the persisted backup shape: a timestamp plus the full
// snapshot in the same shape as the data file.
type BackupEnvelope struct {
	Timestamp string    `json:"timestamp"`
	Data      *Snapshot `json:"data"`
}

// Backup writes the current snapshot to path. Like Select it reads without
// the mutation lock.
func (d *Driver) Backup(path string) error {
	return d.run(OpBackup, "", func() error {
		snapshot, err := d.load()
		if err != nil {
			return err
		}
		raw, err := json.MarshalIndent(BackupEnvelope{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Data:      snapshot,
		}, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encoding backup")
		}
		if err := os.WriteFile(path, raw, 0644); err != nil {
			return errors.Wrap(err, "writing backup file")
		}
		return nil
	})
}

// Restore replaces the live snapshot wholesale with the backup's data field.
// It takes no lock; the caller must serialize against writers.
func (d *Driver) Restore(path string) error {
	return d.run(OpRestore, "", func() error {
		raw, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrap(err, "reading backup file")
		}
		var envelope BackupEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return errors.Wrap(err, "decoding backup file")
		}
		if envelope.Data == nil {
			return errors.New("backup file has no data")
		}
		if err := d.save(envelope.Data); err != nil {
			return err
		}
		d.results.Reset()
		return nil
	})
}
