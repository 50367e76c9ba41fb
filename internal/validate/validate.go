// Package validate computes unique and foreign-key violations as
// human-readable messages. The driver does not enforce these transactionally:
// callers validate first and must not reach the driver on a non-empty result.
package validate

import (
	"fmt"

	"github.com/snapdb/snapdb/internal/driver"
	"github.com/snapdb/snapdb/internal/query"
	"github.com/snapdb/snapdb/internal/registry"
	"github.com/snapdb/snapdb/pkg"
)

// Unique reports the unique fields of record whose value already appears on
// a different record in existing.
func Unique(record query.Record, existing []query.Record, uniqueFields []string) []string {
	messages := []string{}
	id := record.Get("id")

	for _, field := range uniqueFields {
		value := record.Get(field)
		if value == nil {
			continue
		}
		for _, other := range existing {
			if id != nil && query.Equal(other.Get("id"), id) {
				continue
			}
			if query.Equal(other.Get(field), value) {
				messages = append(messages, fmt.Sprintf("field %s must be unique", field))
				break
			}
		}
	}
	return messages
}

// ForeignKeys reports every foreign-key field of record that references a
// missing row, using exists(table, id) to probe the target table.
func ForeignKeys(record query.Record, model registry.Model, exists func(table string, id int) bool) []string {
	messages := []string{}
	for field, target := range model.ForeignKeys {
		value := record.Get(field)
		if value == nil {
			continue
		}
		if !exists(target, pkg.NumToInt(value)) {
			messages = append(messages,
				fmt.Sprintf("foreign key %s references non-existent record in %s", field, target))
		}
	}
	return messages
}

// Exists returns a probe over the driver for ForeignKeys.
func Exists(d *driver.Driver) func(table string, id int) bool {
	return func(table string, id int) bool {
		record, err := d.SelectOne(table, query.Record{"id": id})
		return err == nil && record != nil
	}
}

// Record runs both validators against the driver's current state.
func Record(d *driver.Driver, model registry.Model, record query.Record) ([]string, error) {
	existing, err := d.Select(model.TableName, query.Record{})
	if err != nil {
		return nil, err
	}
	messages := Unique(record, existing, model.UniqueFields)
	messages = append(messages, ForeignKeys(record, model, Exists(d))...)
	return messages, nil
}
