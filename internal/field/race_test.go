package field

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"github.com/steipete/sheetfield/internal/sheetopts"
)

// gatedResolver blocks each call until released, so tests can interleave
// activations with dismiss/select.
type gatedResolver struct {
	entered chan string
	release map[string]chan []sheetopts.Option
}

func newGatedResolver(urls ...string) *gatedResolver {
	g := &gatedResolver{entered: make(chan string, len(urls)), release: map[string]chan []sheetopts.Option{}}
	for _, u := range urls {
		g.release[u] = make(chan []sheetopts.Option, 1)
	}
	return g
}

func (g *gatedResolver) Resolve(ctx context.Context, url, _ string) []sheetopts.Option {
	g.entered <- url
	select {
	case opts := <-g.release[url]:
		return opts
	case <-ctx.Done():
		return []sheetopts.Option{sheetopts.Placeholder}
	}
}

func TestSheetDropdown_DismissDuringResolution(t *testing.T) {
	defer goleak.VerifyNone(t)

	g := newGatedResolver(testURL)
	f, _ := attached(t, "Sheet1", g)

	var eg errgroup.Group
	var activateErr error
	eg.Go(func() error {
		_, activateErr = f.Activate(context.Background(), nil)
		return nil
	})

	<-g.entered
	if f.State() != StateResolving {
		t.Fatalf("state = %s", f.State())
	}
	f.Dismiss()
	g.release[testURL] <- titles("Sheet1", "Sheet2")
	_ = eg.Wait()

	if !errors.Is(activateErr, ErrStaleActivation) {
		t.Fatalf("expected ErrStaleActivation, got %v", activateErr)
	}
	if f.State() != StateClosed || f.Menu() != nil || f.Value() != "Sheet1" {
		t.Fatalf("stale resolution touched the field: %s %#v %q", f.State(), f.Menu(), f.Value())
	}
}

func TestSheetDropdown_OverlappingActivationsLastWins(t *testing.T) {
	defer goleak.VerifyNone(t)

	const second = "https://docs.google.com/spreadsheets/d/Y/edit"
	g := newGatedResolver(testURL, second)
	f, b := attached(t, "", g)

	var eg errgroup.Group
	var firstErr error
	eg.Go(func() error {
		_, firstErr = f.Activate(context.Background(), nil)
		return nil
	})
	<-g.entered

	b.set("URL", second)
	var secondMenu *Menu
	eg.Go(func() error {
		m, err := f.Activate(context.Background(), nil)
		secondMenu = m
		return err
	})
	<-g.entered

	g.release[second] <- titles("New")
	g.release[testURL] <- titles("Old")
	if err := eg.Wait(); err != nil {
		t.Fatalf("second activation: %v", err)
	}

	if !errors.Is(firstErr, ErrStaleActivation) {
		t.Fatalf("expected first activation to be stale, got %v", firstErr)
	}
	if secondMenu == nil || len(secondMenu.Items) != 1 || secondMenu.Items[0].Value != "New" {
		t.Fatalf("unexpected second menu: %#v", secondMenu)
	}
	if f.State() != StateOpen || f.Menu().Items[0].Value != "New" {
		t.Fatalf("field shows stale options: %#v", f.Menu())
	}
}

func TestSheetDropdown_CancelDuringResolution(t *testing.T) {
	defer goleak.VerifyNone(t)

	g := newGatedResolver(testURL)
	f, _ := attached(t, "", g)
	ctx, cancel := context.WithCancel(context.Background())

	var eg errgroup.Group
	var activateErr error
	eg.Go(func() error {
		_, activateErr = f.Activate(ctx, nil)
		return nil
	})
	<-g.entered
	cancel()
	_ = eg.Wait()

	if !errors.Is(activateErr, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", activateErr)
	}
	if f.State() != StateClosed {
		t.Fatalf("state = %s", f.State())
	}
}
