package node

// Type defines the node type for identity purposes.
// The zero value for Type is invalid.
type Type uint8

const (
	// Full is a node that follows the chain, keeps the full block history
	// and serves it to its peers.
	Full Type = iota + 1
	// Authority is a block authoring node participating in consensus.
	Authority
)

// String converts Type to its string representation.
func (t Type) String() string {
	if !t.IsValid() {
		return "unknown"
	}
	return typeToString[t]
}

// IsValid reports whether the Type is known.
func (t Type) IsValid() bool {
	_, ok := typeToString[t]
	return ok
}

// GetTypes provides a list of all known node types in preference order.
func GetTypes() []Type {
	return []Type{Full, Authority}
}

// ParseType converts a string into a Type if possible.
// The zero value is returned for unknown strings.
func ParseType(tp string) Type {
	t, ok := stringToType[tp]
	if !ok {
		return 0
	}

	return t
}

// typeToString keeps string representations of all valid Types.
var typeToString = map[Type]string{
	Full:      "Full",
	Authority: "Authority",
}

// stringToType keeps string representations of all valid Types.
var stringToType = map[string]Type{
	"Full":      Full,
	"Authority": Authority,
}
