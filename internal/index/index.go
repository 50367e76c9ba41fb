// Package index maintains in-memory secondary indexes:
// table -> field -> stringified value -> row ids.
//
// The index is a maintained side structure, populated by the migration flow
// and by callers that opt in; the query engine does not consult it.
// It lives only in memory and is rebuilt through the same flows on restart.
package index

import (
	"fmt"
	"sync"

	"github.com/snapdb/snapdb/pkg"
)

type fieldIndex = pkg.Map[string, []int]

type Manager struct {
	locker sync.RWMutex
	tables pkg.Map[string, pkg.Map[string, fieldIndex]]
}

func NewManager() *Manager {
	return &Manager{tables: pkg.Map[string, pkg.Map[string, fieldIndex]]{}}
}

func formatIndexValue(v any) string {
	return fmt.Sprintf("%v", v)
}

// CreateIndex establishes an empty index for (table, field). Idempotent.
func (m *Manager) CreateIndex(table, field string) {
	m.locker.Lock()
	defer m.locker.Unlock()
	m.createIndex(table, field)
}

func (m *Manager) createIndex(table, field string) {
	if !m.tables.Has(table) {
		m.tables.Set(table, pkg.Map[string, fieldIndex]{})
	}
	if !m.tables.Get(table).Has(field) {
		m.tables.Get(table).Set(field, fieldIndex{})
	}
}

func (m *Manager) Has(table, field string) bool {
	m.locker.RLock()
	defer m.locker.RUnlock()
	return m.tables.Has(table) && m.tables.Get(table).Has(field)
}

// Add records id under the stringified value, creating the index if needed.
func (m *Manager) Add(table, field string, value any, id int) {
	m.locker.Lock()
	defer m.locker.Unlock()

	m.createIndex(table, field)
	key := formatIndexValue(value)
	ids := m.tables.Get(table).Get(field).Get(key)
	for _, existing := range ids {
		if existing == id {
			return
		}
	}
	m.tables.Get(table).Get(field).Set(key, append(ids, id))
}

// Remove drops id from the value's id list. A missing index, value or id is
// not an error.
func (m *Manager) Remove(table, field string, value any, id int) {
	m.locker.Lock()
	defer m.locker.Unlock()

	if !m.tables.Has(table) || !m.tables.Get(table).Has(field) {
		return
	}
	key := formatIndexValue(value)
	ids := m.tables.Get(table).Get(field).Get(key)
	m.tables.Get(table).Get(field).Set(key, pkg.Filter(ids, func(existing int) bool {
		return existing != id
	}))
}

// Find returns a copy of the ids recorded for the value, or an empty list.
func (m *Manager) Find(table, field string, value any) []int {
	m.locker.RLock()
	defer m.locker.RUnlock()

	if !m.tables.Has(table) || !m.tables.Get(table).Has(field) {
		return []int{}
	}
	ids := m.tables.Get(table).Get(field).Get(formatIndexValue(value))
	return append([]int{}, ids...)
}
