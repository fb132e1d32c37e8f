package field

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/steipete/sheetfield/internal/sheetopts"
)

const SheetDropdownType = "field_sheet_dropdown"

// OptionResolver produces the menu options for a spreadsheet URL.
type OptionResolver interface {
	Resolve(ctx context.Context, spreadsheetURL, apiKey string) []sheetopts.Option
}

type State int

const (
	StateClosed State = iota
	StateResolving
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateResolving:
		return "resolving"
	case StateOpen:
		return "open"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// SheetDropdownOptions is both the JSON definition and the saved state.
type SheetDropdownOptions struct {
	Key             string `json:"key"`
	ParentFieldName string `json:"parentFieldName"`
	Value           string `json:"value"`
}

// SheetDropdown lists the sheets of the spreadsheet whose URL is in the
// sibling field named ParentFieldName. Options are fetched on every
// activation and dropped when the menu closes.
type SheetDropdown struct {
	mu              sync.Mutex
	name            string
	value           string
	key             string
	parentFieldName string
	block           Block
	resolver        OptionResolver

	state     State
	gen       uint64
	menu      *Menu
	hasBorder bool
	textArrow bool
	listeners []func(oldValue, newValue string)
}

func NewSheetDropdown(value, key, parentFieldName string, r OptionResolver) *SheetDropdown {
	return &SheetDropdown{
		value:           value,
		key:             key,
		parentFieldName: parentFieldName,
		resolver:        r,
	}
}

func SheetDropdownFromJSON(raw json.RawMessage, r OptionResolver) (*SheetDropdown, error) {
	var opts struct {
		SheetDropdownOptions
		Name string `json:"name"`
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &opts); err != nil {
			return nil, fmt.Errorf("sheet dropdown options: %w", err)
		}
	}
	f := NewSheetDropdown(opts.Value, opts.Key, opts.ParentFieldName, r)
	f.name = opts.Name
	return f, nil
}

func (f *SheetDropdown) Type() string { return SheetDropdownType }

func (f *SheetDropdown) Name() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.name
}

func (f *SheetDropdown) SetName(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.name = name
}

func (f *SheetDropdown) Key() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.key
}

func (f *SheetDropdown) ParentFieldName() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.parentFieldName
}

func (f *SheetDropdown) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Menu returns a copy of the open menu, or nil.
func (f *SheetDropdown) Menu() *Menu {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.menu.clone()
}

func (f *SheetDropdown) Value() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

func (f *SheetDropdown) SetValue(v string) {
	f.mu.Lock()
	old := f.value
	f.value = v
	listeners := append([]func(string, string){}, f.listeners...)
	f.mu.Unlock()

	if old != v {
		for _, fn := range listeners {
			fn(old, v)
		}
	}
}

// OnChange registers fn to run after the value changes.
func (f *SheetDropdown) OnChange(fn func(oldValue, newValue string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
}

func (f *SheetDropdown) SourceBlock() Block {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.block
}

func (f *SheetDropdown) SetSourceBlock(b Block) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.block = b
}

func (f *SheetDropdown) SaveState() any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return SheetDropdownOptions{Key: f.key, ParentFieldName: f.parentFieldName, Value: f.value}
}

func (f *SheetDropdown) LoadState(raw json.RawMessage) error {
	if isNullState(raw) {
		return errNullState
	}
	var st SheetDropdownOptions
	if err := json.Unmarshal(raw, &st); err != nil {
		return fmt.Errorf("sheet dropdown state: %w", err)
	}
	f.mu.Lock()
	f.key = st.Key
	f.parentFieldName = st.ParentFieldName
	f.mu.Unlock()
	f.SetValue(st.Value)
	return nil
}

func (f *SheetDropdown) ToXML(el *XMLElement) {
	f.mu.Lock()
	defer f.mu.Unlock()
	el.SetAttr("key", f.key)
	el.SetAttr("parentFieldName", f.parentFieldName)
	el.Text = f.value
}

func (f *SheetDropdown) FromXML(el *XMLElement) error {
	key, _ := el.Attr("key")
	parent, _ := el.Attr("parentFieldName")
	f.mu.Lock()
	f.key = key
	f.parentFieldName = parent
	f.mu.Unlock()
	f.SetValue(el.Text)
	return nil
}

// InitView decides which elements the host draws. Renderers that drop the
// border rect on shadow blocks make the whole block the click target.
func (f *SheetDropdown) InitView(c Constants) View {
	f.mu.Lock()
	defer f.mu.Unlock()

	shadow, rtl := false, false
	if f.block != nil {
		shadow, rtl = f.block.IsShadow(), f.block.IsRTL()
	}

	v := View{ClickTarget: ClickField}
	if !c.NoBorderRectShadow || !shadow {
		v.BorderRect = true
		v.BorderRadius = c.BorderRectRadius
		v.Classes = append(v.Classes, "blocklyFieldRect", "blocklyDropdownRect")
	} else {
		v.ClickTarget = ClickBlock
	}
	f.hasBorder = v.BorderRect
	f.textArrow = !c.SVGArrow

	if c.TextBaselineCenter {
		v.Baseline = "central"
	}

	if c.SVGArrow {
		v.Arrow = ArrowSVG
		v.ArrowSize = c.SVGArrowSize
		v.ArrowHref = c.SVGArrowDataURI
		return v
	}
	v.Arrow = ArrowText
	if rtl {
		v.ArrowText = ArrowChar + " "
		v.ArrowBefore = true
	} else {
		v.ArrowText = " " + ArrowChar
	}
	return v
}

// ApplyTheme fills the border with the tertiary colour while the menu is
// open. Only a text arrow is coloured; it follows the secondary colour on
// shadow blocks.
func (f *SheetDropdown) ApplyTheme(s Style) Colours {
	f.mu.Lock()
	defer f.mu.Unlock()

	var c Colours
	if f.hasBorder {
		c.Stroke = s.Tertiary
		c.Fill = "transparent"
		if f.menu != nil {
			c.Fill = s.Tertiary
		}
	}
	if f.block != nil && f.textArrow {
		c.ArrowFill = s.Primary
		if f.block.IsShadow() {
			c.ArrowFill = s.Secondary
		}
	}
	return c
}

// MenuColours returns the floating menu tint for renderers that colour it.
// Shadow blocks borrow their parent's colours. ok is false when the renderer
// leaves the menu alone or the field is unattached.
func (f *SheetDropdown) MenuColours(c Constants, own, parent Style) (MenuColours, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !c.DropdownColouredDiv || f.block == nil {
		return MenuColours{}, false
	}
	s := own
	if f.block.IsShadow() {
		s = parent
	}
	return MenuColours{Background: s.Primary, Border: s.Tertiary}, true
}

// Activate resolves options for the sibling field's current URL and opens
// the menu. It blocks while options resolve. If the field is dismissed,
// selected or activated again in the meantime, the result is discarded and
// ErrStaleActivation returned.
func (f *SheetDropdown) Activate(ctx context.Context, ev *PointerEvent) (*Menu, error) {
	f.mu.Lock()
	block := f.block
	if block == nil {
		name := f.name
		f.mu.Unlock()
		return nil, &UnattachedFieldError{Field: name}
	}
	f.gen++
	gen := f.gen
	f.state = StateResolving
	f.menu = nil
	key, parent, resolver := f.key, f.parentFieldName, f.resolver
	f.mu.Unlock()

	url := block.FieldValue(parent)
	var options []sheetopts.Option
	if resolver != nil {
		options = resolver.Resolve(ctx, url, key)
	} else {
		options = []sheetopts.Option{sheetopts.Placeholder}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen || f.state != StateResolving {
		return nil, ErrStaleActivation
	}
	if err := ctx.Err(); err != nil {
		f.closeLocked()
		return nil, err
	}

	menu := newMenu(options, f.value, block.IsRTL())
	if ev != nil {
		menu.OpeningCoords = &Coordinate{X: ev.ClientX, Y: ev.ClientY}
	}
	f.menu = menu
	f.state = StateOpen
	return menu.clone(), nil
}

// Select picks value from the open menu and closes it.
func (f *SheetDropdown) Select(value string) error {
	f.mu.Lock()
	if f.state != StateOpen {
		f.mu.Unlock()
		return ErrNotOpen
	}
	if _, ok := f.menu.item(value); !ok {
		f.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownOption, value)
	}
	f.closeLocked()
	f.mu.Unlock()

	f.SetValue(value)
	return nil
}

// Dismiss closes the menu, or abandons a pending resolution, without
// touching the value.
func (f *SheetDropdown) Dismiss() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateClosed {
		return
	}
	f.closeLocked()
}

func (f *SheetDropdown) closeLocked() {
	f.gen++
	f.state = StateClosed
	f.menu = nil
}
