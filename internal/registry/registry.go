// Package registry maps field type identifiers used in JSON block
// definitions to constructors.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/steipete/sheetfield/internal/field"
)

// Constructor builds a field from its JSON definition, e.g.
// {"type":"field_sheet_dropdown","name":"SHEET","key":"..","parentFieldName":"URL"}.
type Constructor func(raw json.RawMessage) (field.Field, error)

var (
	ErrDuplicate = errors.New("field type already registered")
	ErrUnknown   = errors.New("unknown field type")
)

type Registry struct {
	mu    sync.RWMutex
	types map[string]Constructor
}

func New() *Registry {
	return &Registry{types: make(map[string]Constructor)}
}

func (r *Registry) Register(name string, ctor Constructor) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("empty field type name")
	}
	if ctor == nil {
		return fmt.Errorf("field type %q: nil constructor", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	r.types[name] = ctor
	return nil
}

func (r *Registry) Construct(name string, raw json.RawMessage) (field.Field, error) {
	r.mu.RLock()
	ctor, ok := r.types[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return ctor(raw)
}

func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.types[name]
	return ok
}

// Types lists registered identifiers, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.types))
	for name := range r.types {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// RegisterDefaults adds the text field and the sheet dropdown. Dropdowns
// built from definitions share resolver.
func RegisterDefaults(r *Registry, resolver field.OptionResolver) error {
	if err := r.Register(field.TextFieldType, func(raw json.RawMessage) (field.Field, error) {
		return field.TextFieldFromJSON(raw)
	}); err != nil {
		return err
	}
	return r.Register(field.SheetDropdownType, func(raw json.RawMessage) (field.Field, error) {
		return field.SheetDropdownFromJSON(raw, resolver)
	})
}
