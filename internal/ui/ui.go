// Package ui prints human-facing output with optional color.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
)

type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	Color  string
}

type ParseError struct {
	msg string
}

func (e *ParseError) Error() string { return e.msg }

type UI struct {
	out *Printer
	err *Printer
}

type Printer struct {
	w       io.Writer
	profile termenv.Profile
}

func New(opts Options) (*UI, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	outProfile, errProfile := termenv.Ascii, termenv.Ascii
	switch strings.ToLower(strings.TrimSpace(opts.Color)) {
	case "", "auto":
		outProfile = termenv.NewOutput(opts.Stdout).EnvColorProfile()
		errProfile = termenv.NewOutput(opts.Stderr).EnvColorProfile()
	case "always":
		outProfile, errProfile = termenv.ANSI256, termenv.ANSI256
	case "never":
	default:
		return nil, &ParseError{msg: fmt.Sprintf("invalid --color %q (expected auto|always|never)", opts.Color)}
	}

	return &UI{
		out: &Printer{w: opts.Stdout, profile: outProfile},
		err: &Printer{w: opts.Stderr, profile: errProfile},
	}, nil
}

func (u *UI) Out() *Printer { return u.out }
func (u *UI) Err() *Printer { return u.err }

func (p *Printer) Println(msg string) {
	_, _ = fmt.Fprintln(p.w, msg)
}

func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintln(p.w, fmt.Sprintf(format, args...))
}

func (p *Printer) Successf(format string, args ...any) {
	p.Println(p.colored(fmt.Sprintf(format, args...), "2"))
}

func (p *Printer) Error(msg string) {
	p.Println(p.colored(msg, "1"))
}

// Highlight renders s in bold where color is on.
func (p *Printer) Highlight(s string) string {
	if p.profile == termenv.Ascii {
		return s
	}
	return p.profile.String(s).Bold().String()
}

func (p *Printer) colored(s, ansi string) string {
	if p.profile == termenv.Ascii {
		return s
	}
	return p.profile.String(s).Foreground(p.profile.Color(ansi)).String()
}

type ctxKey struct{}

func WithUI(ctx context.Context, u *UI) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

func FromContext(ctx context.Context) *UI {
	if ctx == nil {
		return nil
	}
	u, _ := ctx.Value(ctxKey{}).(*UI)
	return u
}
