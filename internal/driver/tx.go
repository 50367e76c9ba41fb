package driver

import (
	"time"

	"github.com/google/uuid"

	"github.com/snapdb/snapdb/pkg"
)

// Tx is a best-effort snapshot-restore primitive, not a real transaction:
// it captures the snapshot at Begin and can rewrite it wholesale on
// Rollback. Writes between Begin and Rollback by other callers are lost too.
type Tx struct {
	driver *Driver
	id     uuid.UUID

	startTime time.Time
	snapshot  *Snapshot
}

func (d *Driver) Begin() (*Tx, error) {
	snapshot, err := d.load()
	if err != nil {
		return nil, err
	}
	return &Tx{d, uuid.Must(uuid.NewV7()), time.Now(), snapshot}, nil
}

func (tx *Tx) ID() uuid.UUID { return tx.id }

// Rollback restores the snapshot captured at Begin and drops every cached
// result.
func (tx *Tx) Rollback() error {
	pkg.WarnLog("rolling back to snapshot taken at", tx.startTime, "tx", tx.id.String())
	if err := tx.driver.save(tx.snapshot); err != nil {
		return err
	}
	tx.driver.results.Reset()
	return nil
}

// Transaction runs fn and restores the pre-call snapshot when fn returns an
// error. The original error is returned even if the restore itself fails.
func (d *Driver) Transaction(fn func(*Driver) error) error {
	tx, err := d.Begin()
	if err != nil {
		return err
	}
	if err := fn(d); err != nil {
		if rollback_err := tx.Rollback(); rollback_err != nil {
			pkg.ErrorLog("rollback failed:", rollback_err)
		}
		return err
	}
	return nil
}
