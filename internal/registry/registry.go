// Package registry holds the statically registered model descriptors that
// drive table and index creation. Declaring a model has no side effect;
// callers register descriptors explicitly during initialization.
package registry

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/snapdb/snapdb/pkg"
)

type FieldType string

const (
	FieldTypeInt  FieldType = "int"
	FieldTypeStr  FieldType = "str"
	FieldTypeBool FieldType = "bool"
)

// Schema maps a field name to its declared type tag.
type Schema = pkg.Map[string, FieldType]

type Model struct {
	TableName    string
	Schema       Schema
	Indexes      []string
	UniqueFields []string
	// field name -> referenced table; checked by the validate package
	ForeignKeys map[string]string
}

type Registry struct {
	models pkg.Map[string, Model]
}

func New() *Registry {
	return &Registry{models: pkg.Map[string, Model]{}}
}

// Register adds or replaces a model descriptor. Unknown type tags fall back
// to str, matching what the driver stores for undeclared fields.
func (r *Registry) Register(model Model) error {
	if model.TableName == "" {
		return errors.New("model table name cannot be empty")
	}

	normalized := Schema{}
	for field, tag := range model.Schema {
		switch tag {
		case FieldTypeInt, FieldTypeStr, FieldTypeBool:
			normalized.Set(field, tag)
		default:
			normalized.Set(field, FieldTypeStr)
		}
	}
	model.Schema = normalized

	r.models.Set(model.TableName, model)
	return nil
}

func (r *Registry) Get(table string) (Model, bool) {
	if !r.models.Has(table) {
		return Model{}, false
	}
	return r.models.Get(table), true
}

func (r *Registry) Len() int { return len(r.models) }

// Models returns registered models sorted by table name, so callers that
// hash or create tables in order behave deterministically.
func (r *Registry) Models() []Model {
	names := r.models.Keys()
	sort.Strings(names)

	models := make([]Model, 0, len(names))
	for _, name := range names {
		models = append(models, r.models.Get(name))
	}
	return models
}
