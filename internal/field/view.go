package field

// ArrowChar is drawn after (LTR) or before (RTL) the dropdown text.
const ArrowChar = "▾"

// Constants are the renderer settings a dropdown's view depends on.
type Constants struct {
	NoBorderRectShadow bool
	BorderRectRadius   float64
	TextBaselineCenter bool
	SVGArrow           bool
	SVGArrowSize       float64
	SVGArrowDataURI    string
	// DropdownColouredDiv tints the floating menu with the block's colours.
	DropdownColouredDiv bool
}

type ArrowKind string

const (
	ArrowText ArrowKind = "text"
	ArrowSVG  ArrowKind = "svg"
)

type ClickTarget string

const (
	ClickField ClickTarget = "field"
	ClickBlock ClickTarget = "block"
)

// View describes the elements the host should create for a field.
type View struct {
	BorderRect   bool        `json:"borderRect"`
	BorderRadius float64     `json:"borderRadius,omitempty"`
	ClickTarget  ClickTarget `json:"clickTarget"`
	Baseline     string      `json:"baseline,omitempty"`
	Arrow        ArrowKind   `json:"arrow"`
	ArrowText    string      `json:"arrowText,omitempty"`
	ArrowBefore  bool        `json:"arrowBefore,omitempty"`
	ArrowSize    float64     `json:"arrowSize,omitempty"`
	ArrowHref    string      `json:"arrowHref,omitempty"`
	Classes      []string    `json:"classes,omitempty"`
}

// Style is the owning block's colour set.
type Style struct {
	Primary   string
	Secondary string
	Tertiary  string
}

// Colours are the attribute values ApplyTheme wants set. Empty means leave
// unset.
type Colours struct {
	Stroke    string `json:"stroke,omitempty"`
	Fill      string `json:"fill,omitempty"`
	ArrowFill string `json:"arrowFill,omitempty"`
}

// MenuColours tint the floating menu container.
type MenuColours struct {
	Background string `json:"background"`
	Border     string `json:"border"`
}
