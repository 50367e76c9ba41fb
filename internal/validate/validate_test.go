package validate_test

import (
	"path/filepath"
	"testing"

	"gotest.tools/assert"

	"github.com/snapdb/snapdb/internal/driver"
	"github.com/snapdb/snapdb/internal/query"
	"github.com/snapdb/snapdb/internal/registry"
	"github.com/snapdb/snapdb/internal/validate"
)

func TestUnique(t *testing.T) {
	existing := []query.Record{
		{"id": 1, "email": "a@b.c"},
		{"id": 2, "email": "x@y.z"},
	}

	messages := validate.Unique(query.Record{"email": "a@b.c"}, existing, []string{"email"})
	assert.DeepEqual(t, messages, []string{"field email must be unique"})

	messages = validate.Unique(query.Record{"email": "new@b.c"}, existing, []string{"email"})
	assert.Equal(t, len(messages), 0)

	// a record keeps its own value on update
	messages = validate.Unique(query.Record{"id": 1, "email": "a@b.c"}, existing, []string{"email"})
	assert.Equal(t, len(messages), 0)

	// absent values are not unique-checked
	messages = validate.Unique(query.Record{}, existing, []string{"email"})
	assert.Equal(t, len(messages), 0)
}

func TestForeignKeys(t *testing.T) {
	model := registry.Model{
		TableName:   "posts",
		ForeignKeys: map[string]string{"user_id": "users"},
	}
	exists := func(table string, id int) bool { return table == "users" && id == 1 }

	messages := validate.ForeignKeys(query.Record{"user_id": 1}, model, exists)
	assert.Equal(t, len(messages), 0)

	messages = validate.ForeignKeys(query.Record{"user_id": 2}, model, exists)
	assert.DeepEqual(t, messages, []string{"foreign key user_id references non-existent record in users"})

	messages = validate.ForeignKeys(query.Record{}, model, exists)
	assert.Equal(t, len(messages), 0)
}

func TestRecordAgainstDriver(t *testing.T) {
	db, err := driver.New(filepath.Join(t.TempDir(), "app"))
	assert.NilError(t, err)

	assert.NilError(t, db.CreateTable("users", registry.Schema{"name": registry.FieldTypeStr}))
	assert.NilError(t, db.CreateTable("posts", registry.Schema{"title": registry.FieldTypeStr}))
	_, err = db.Insert("users", query.Record{"name": "ann"})
	assert.NilError(t, err)

	model := registry.Model{
		TableName:    "posts",
		UniqueFields: []string{"title"},
		ForeignKeys:  map[string]string{"user_id": "users"},
	}

	messages, err := validate.Record(db, model, query.Record{"title": "hello", "user_id": 1})
	assert.NilError(t, err)
	assert.Equal(t, len(messages), 0)

	_, err = db.Insert("posts", query.Record{"title": "hello", "user_id": 1})
	assert.NilError(t, err)

	messages, err = validate.Record(db, model, query.Record{"title": "hello", "user_id": 9})
	assert.NilError(t, err)
	assert.Equal(t, len(messages), 2)
}
