package models

// Direction selects which endpoint of an edge is matched against a vertex.
type Direction int

// Direction values. DirectionAny is the zero value.
const (
	DirectionAny Direction = iota
	DirectionInbound
	DirectionOutbound
)

// String returns the literal accepted by ParseDirection.
func (d Direction) String() string {
	switch d {
	case DirectionInbound:
		return "inbound"
	case DirectionOutbound:
		return "outbound"
	default:
		return "any"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// ParseDirection parses one of "any", "inbound" or "outbound". Matching is
// exact and case-sensitive. function names the caller for diagnostics.
func ParseDirection(function, s string) (Direction, error) {
	switch s {
	case "any":
		return DirectionAny, nil
	case "inbound":
		return DirectionInbound, nil
	case "outbound":
		return DirectionOutbound, nil
	default:
		return DirectionAny, &InvalidDirectionError{Function: function, Value: s}
	}
}
