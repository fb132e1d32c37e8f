package field

import "github.com/steipete/sheetfield/internal/sheetopts"

const (
	RoleListbox = "listbox"
	RoleOption  = "option"
)

type MenuItem struct {
	Label     string `json:"label"`
	Value     string `json:"value"`
	Role      string `json:"role"`
	RTL       bool   `json:"rtl,omitempty"`
	Checkable bool   `json:"checkable"`
	Checked   bool   `json:"checked"`
}

// Menu is the option list handed to the host's floating menu widget.
// Highlighted is the index of the pre-selected item, or -1.
type Menu struct {
	Role          string      `json:"role"`
	Items         []MenuItem  `json:"items"`
	Highlighted   int         `json:"highlighted"`
	OpeningCoords *Coordinate `json:"openingCoords,omitempty"`
}

func newMenu(options []sheetopts.Option, current string, rtl bool) *Menu {
	m := &Menu{Role: RoleListbox, Items: make([]MenuItem, 0, len(options)), Highlighted: -1}
	for _, opt := range options {
		checked := opt.Value == current
		m.Items = append(m.Items, MenuItem{
			Label:     opt.Label,
			Value:     opt.Value,
			Role:      RoleOption,
			RTL:       rtl,
			Checkable: true,
			Checked:   checked,
		})
		// first match wins if titles repeat
		if checked && m.Highlighted < 0 {
			m.Highlighted = len(m.Items) - 1
		}
	}
	return m
}

// Selected returns the pre-selected item.
func (m *Menu) Selected() (MenuItem, bool) {
	if m == nil || m.Highlighted < 0 || m.Highlighted >= len(m.Items) {
		return MenuItem{}, false
	}
	return m.Items[m.Highlighted], true
}

func (m *Menu) item(value string) (MenuItem, bool) {
	for _, it := range m.Items {
		if it.Value == value {
			return it, true
		}
	}
	return MenuItem{}, false
}

func (m *Menu) clone() *Menu {
	if m == nil {
		return nil
	}
	out := *m
	out.Items = append([]MenuItem(nil), m.Items...)
	if m.OpeningCoords != nil {
		c := *m.OpeningCoords
		out.OpeningCoords = &c
	}
	return &out
}
