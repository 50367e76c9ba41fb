// Package migrate detects schema drift by hashing the registered models and
// comparing against the hash stored in the migration table. When the hashes
// differ it creates every registered table and its declared indexes, then
// replaces the stored migration record. Running it twice with an unchanged
// registry performs zero additional writes.
package migrate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/looplab/fsm"
	"github.com/zeebo/xxh3"

	"github.com/snapdb/snapdb/internal/driver"
	"github.com/snapdb/snapdb/internal/query"
	"github.com/snapdb/snapdb/internal/registry"
	"github.com/snapdb/snapdb/pkg"
)

const MigrationTable = "_snapdb_migrations"

const (
	StateUnchanged = "unchanged"
	StateChanged   = "changed"

	eventDetect = "detect"
	eventApply  = "apply"
)

var migrationSchema = registry.Schema{
	"version":     registry.FieldTypeStr,
	"applied_at":  registry.FieldTypeStr,
	"models_hash": registry.FieldTypeStr,
}

type Engine struct {
	db      *driver.Driver
	models  *registry.Registry
	machine *fsm.FSM
}

func NewEngine(db *driver.Driver, models *registry.Registry) *Engine {
	machine := fsm.NewFSM(StateUnchanged, fsm.Events{
		{Name: eventDetect, Src: []string{StateUnchanged}, Dst: StateChanged},
		{Name: eventApply, Src: []string{StateChanged}, Dst: StateUnchanged},
	}, fsm.Callbacks{})
	return &Engine{db: db, models: models, machine: machine}
}

func (e *Engine) State() string { return e.machine.Current() }

// hashedModel is the canonical shape fed to the hash; field order is fixed
// by the struct and the model list is sorted by table name.
type hashedModel struct {
	TableName    string            `json:"table_name"`
	Schema       registry.Schema   `json:"schema"`
	Indexes      []string          `json:"indexes"`
	UniqueFields []string          `json:"unique_fields"`
	ForeignKeys  map[string]string `json:"foreign_keys"`
}

// ModelsHash digests every registered model's name, schema, index list and
// unique-field list.
func (e *Engine) ModelsHash() string {
	hashed := []hashedModel{}
	for _, model := range e.models.Models() {
		hashed = append(hashed, hashedModel{
			TableName:    model.TableName,
			Schema:       model.Schema,
			Indexes:      model.Indexes,
			UniqueFields: model.UniqueFields,
			ForeignKeys:  model.ForeignKeys,
		})
	}
	raw, _ := json.Marshal(hashed)
	return fmt.Sprintf("%016x", xxh3.Hash(raw))
}

func (e *Engine) storedHash() (string, error) {
	record, err := e.db.SelectOne(MigrationTable, query.Record{})
	if err != nil || record == nil {
		// an absent record hashes as empty, which always reads as changed
		return "", err
	}
	hash, _ := record.Get("models_hash").(string)
	return hash, nil
}

// Detect compares the registry hash against the stored one and moves the
// state machine to Changed on a mismatch.
func (e *Engine) Detect() (bool, error) {
	stored, err := e.storedHash()
	if err != nil {
		return false, err
	}
	if e.ModelsHash() == stored {
		return e.machine.Is(StateChanged), nil
	}
	if e.machine.Is(StateUnchanged) {
		if err := e.machine.Event(context.Background(), eventDetect); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Init creates the migration table itself. Idempotent.
func (e *Engine) Init() error {
	return e.db.CreateTable(MigrationTable, migrationSchema)
}

// Upgrade applies the registry to the database: when the hash changed it
// creates every registered table and index, then replaces the migration
// record (only the latest row is retained). With no change it is a no-op.
func (e *Engine) Upgrade() error {
	changed, err := e.Detect()
	if err != nil {
		return err
	}
	if !changed {
		pkg.DebugLog("no model changes detected")
		return nil
	}

	for _, model := range e.models.Models() {
		if err := e.db.CreateTable(model.TableName, model.Schema); err != nil {
			return err
		}
		for _, field := range model.Indexes {
			e.db.Indexes().CreateIndex(model.TableName, field)
		}
	}

	if err := e.Init(); err != nil {
		return err
	}
	if _, err := e.db.Delete(MigrationTable, query.Record{}); err != nil {
		return err
	}

	version := time.Now().UTC().Format("20060102_150405")
	if _, err := e.db.Insert(MigrationTable, query.Record{
		"version":     version,
		"applied_at":  time.Now().UTC().Format(time.RFC3339),
		"models_hash": e.ModelsHash(),
	}); err != nil {
		return err
	}

	if err := e.machine.Event(context.Background(), eventApply); err != nil {
		return err
	}
	pkg.InfoLog("migration applied", version, "tables", e.models.Len())
	return nil
}

// Version returns the stored migration version label, or "0" before any
// upgrade.
func (e *Engine) Version() (string, error) {
	record, err := e.db.SelectOne(MigrationTable, query.Record{})
	if err != nil {
		return "", err
	}
	if record == nil {
		return "0", nil
	}
	version, _ := record.Get("version").(string)
	return version, nil
}
