package bbcode

// Kind identifies a tag family by its delimiter name.
type Kind string

const (
	KindCoord     Kind = "coord"
	KindPlayer    Kind = "player"
	KindAlly      Kind = "ally"
	KindUnit      Kind = "unit"
	KindBuilding  Kind = "building"
	KindCommand   Kind = "command"
	KindBold      Kind = "b"
	KindItalic    Kind = "i"
	KindUnderline Kind = "u"
)

// Kinds lists every supported kind in render pass order.
var Kinds = []Kind{
	KindCoord,
	KindPlayer,
	KindAlly,
	KindUnit,
	KindBuilding,
	KindCommand,
	KindBold,
	KindItalic,
	KindUnderline,
}

// Open returns the opening delimiter, e.g. "[coord]".
func (k Kind) Open() string {
	return "[" + string(k) + "]"
}

// Close returns the closing delimiter, e.g. "[/coord]".
func (k Kind) Close() string {
	return "[/" + string(k) + "]"
}

// IsEntity reports whether the kind references game data (coordinate,
// player or tribe).
func (k Kind) IsEntity() bool {
	switch k {
	case KindCoord, KindPlayer, KindAlly:
		return true
	}
	return false
}

// IsSymbol reports whether the kind maps to an emoji symbol.
func (k Kind) IsSymbol() bool {
	switch k {
	case KindUnit, KindBuilding, KindCommand:
		return true
	}
	return false
}

// IsStyle reports whether the kind is a literal emphasis marker.
func (k Kind) IsStyle() bool {
	switch k {
	case KindBold, KindItalic, KindUnderline:
		return true
	}
	return false
}
