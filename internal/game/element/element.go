// Package element defines the closed set of attack elements.
package element

import "fmt"

// Element is the damage type carried by an enemy attack.
type Element int

const (
	Physical Element = iota
	Fire
	Ice
	ColdFire
)

// All lists every element in declaration order.
var All = []Element{Physical, Fire, Ice, ColdFire}

// String returns the wire/display name of the element.
func (e Element) String() string {
	switch e {
	case Physical:
		return "physical"
	case Fire:
		return "fire"
	case Ice:
		return "ice"
	case ColdFire:
		return "cold_fire"
	default:
		return "unknown"
	}
}

// Parse converts a wire name back into an Element.
//
// Postcondition: Returns the matching Element, or an error for an
// unrecognised name.
func Parse(s string) (Element, error) {
	switch s {
	case "physical":
		return Physical, nil
	case "fire":
		return Fire, nil
	case "ice":
		return Ice, nil
	case "cold_fire":
		return ColdFire, nil
	default:
		return Physical, fmt.Errorf("unknown element %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler so elements serialise
// as their wire names in JSON and YAML.
func (e Element) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Element) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
