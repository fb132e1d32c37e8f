package field

import (
	"context"
	"sync"

	"github.com/steipete/sheetfield/internal/sheetopts"
)

type fakeBlock struct {
	mu     sync.Mutex
	values map[string]string
	shadow bool
	rtl    bool
}

func newFakeBlock(values map[string]string) *fakeBlock {
	return &fakeBlock{values: values}
}

func (b *fakeBlock) FieldValue(name string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.values[name]
}

func (b *fakeBlock) set(name, v string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[name] = v
}

func (b *fakeBlock) IsShadow() bool { return b.shadow }
func (b *fakeBlock) IsRTL() bool    { return b.rtl }

// recordingResolver returns fixed options and remembers what it was asked.
type recordingResolver struct {
	mu      sync.Mutex
	options []sheetopts.Option
	urls    []string
	keys    []string
}

func (r *recordingResolver) Resolve(_ context.Context, url, key string) []sheetopts.Option {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, url)
	r.keys = append(r.keys, key)
	return append([]sheetopts.Option(nil), r.options...)
}

func (r *recordingResolver) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.urls)
}

func titles(names ...string) []sheetopts.Option {
	out := make([]sheetopts.Option, 0, len(names))
	for _, n := range names {
		out = append(out, sheetopts.Option{Label: n, Value: n})
	}
	return out
}
