// Package block is a minimal headless host for fields: blocks built from
// JSON definitions, with the JSON and XML save formats.
package block

import (
	"sync"

	"github.com/steipete/sheetfield/internal/field"
)

// Block holds named fields in definition order and answers sibling lookups.
type Block struct {
	Type   string
	ID     string
	Shadow bool
	RTL    bool

	mu     sync.RWMutex
	fields []field.Field
}

func New(blockType string) *Block {
	return &Block{Type: blockType}
}

// AppendField names f and attaches it to b.
func (b *Block) AppendField(name string, f field.Field) {
	f.SetName(name)
	f.SetSourceBlock(b)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fields = append(b.fields, f)
}

func (b *Block) Field(name string) field.Field {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, f := range b.fields {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

func (b *Block) Fields() []field.Field {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]field.Field(nil), b.fields...)
}

// FieldValue is "" for unknown names.
func (b *Block) FieldValue(name string) string {
	f := b.Field(name)
	if f == nil {
		return ""
	}
	return f.Value()
}

func (b *Block) IsShadow() bool { return b.Shadow }
func (b *Block) IsRTL() bool    { return b.RTL }
