package block

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/steipete/sheetfield/internal/registry"
)

// Definition is a JSON block definition; only the field arguments matter
// here.
type Definition struct {
	Type string            `json:"type"`
	Args []json.RawMessage `json:"args0"`
}

type argHeader struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

var ErrUnknownBlock = errors.New("unknown block type")

// Catalog knows block definitions and builds blocks from them through a
// field registry.
type Catalog struct {
	reg *registry.Registry

	mu   sync.RWMutex
	defs map[string]Definition
}

func NewCatalog(reg *registry.Registry) *Catalog {
	return &Catalog{reg: reg, defs: make(map[string]Definition)}
}

func (c *Catalog) Define(def Definition) error {
	def.Type = strings.TrimSpace(def.Type)
	if def.Type == "" {
		return errors.New("block definition without type")
	}
	seen := map[string]bool{}
	for i, raw := range def.Args {
		var h argHeader
		if err := json.Unmarshal(raw, &h); err != nil {
			return fmt.Errorf("%s args0[%d]: %w", def.Type, i, err)
		}
		if h.Name == "" {
			return fmt.Errorf("%s args0[%d]: field without name", def.Type, i)
		}
		if seen[h.Name] {
			return fmt.Errorf("%s: duplicate field %q", def.Type, h.Name)
		}
		seen[h.Name] = true
		if !c.reg.Has(h.Type) {
			return fmt.Errorf("%s field %s: %w: %q", def.Type, h.Name, registry.ErrUnknown, h.Type)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defs[def.Type] = def
	return nil
}

// DefineJSON accepts a single definition object or an array of them.
func (c *Catalog) DefineJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var defs []Definition
		if err := json.Unmarshal(data, &defs); err != nil {
			return err
		}
		for _, d := range defs {
			if err := c.Define(d); err != nil {
				return err
			}
		}
		return nil
	}
	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	return c.Define(def)
}

func (c *Catalog) Types() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.defs))
	for t := range c.defs {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// New builds a block with freshly constructed fields.
func (c *Catalog) New(blockType string) (*Block, error) {
	c.mu.RLock()
	def, ok := c.defs[blockType]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBlock, blockType)
	}

	b := New(blockType)
	for _, raw := range def.Args {
		var h argHeader
		if err := json.Unmarshal(raw, &h); err != nil {
			return nil, err
		}
		f, err := c.reg.Construct(h.Type, raw)
		if err != nil {
			return nil, fmt.Errorf("%s field %s: %w", blockType, h.Name, err)
		}
		b.AppendField(h.Name, f)
	}
	return b, nil
}
