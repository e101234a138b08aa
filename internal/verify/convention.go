package verify

import (
	"fmt"
	"strings"
)

// Convention defines how an expected value is padded to a field's declared
// width before comparison against the payload slice.
type Convention struct {
	Name string
	// NumericZeroFill right-aligns numeric fields with leading zeros.
	// When false every field is left-aligned and space-filled.
	NumericZeroFill bool
}

// Get returns the built-in convention for the given name.
func Get(name string) (*Convention, error) {
	switch name {
	case "standard", "":
		return standard(), nil
	case "space-fill":
		return spaceFill(), nil
	default:
		return nil, fmt.Errorf("unknown padding convention %q: valid conventions are standard, space-fill", name)
	}
}

func standard() *Convention {
	return &Convention{Name: "standard", NumericZeroFill: true}
}

func spaceFill() *Convention {
	return &Convention{Name: "space-fill"}
}

// Pad aligns value into a field of the given width. Values already at or
// past the width pass through untouched.
func (c *Convention) Pad(value string, width int, datatype string) string {
	if len(value) >= width {
		return value
	}
	if c.NumericZeroFill && Numeric(datatype) {
		return strings.Repeat("0", width-len(value)) + value
	}
	return value + strings.Repeat(" ", width-len(value))
}

var numericTypes = map[string]bool{
	"n":       true,
	"9":       true,
	"num":     true,
	"number":  true,
	"numeric": true,
	"int":     true,
	"integer": true,
	"dec":     true,
	"decimal": true,
	"amount":  true,
}

// Numeric reports whether a declared datatype names a right-aligned
// numeric field.
func Numeric(datatype string) bool {
	return numericTypes[strings.ToLower(strings.TrimSpace(datatype))]
}
