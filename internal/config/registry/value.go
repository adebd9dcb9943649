package registry

import (
	"fmt"
	"strconv"

	"github.com/dshills/modsync/internal/config/keycode"
)

// Kind is the closed set of field types a section may declare.
type Kind uint8

const (
	// KindFloat is a float64 field.
	KindFloat Kind = iota
	// KindInt is an int field.
	KindInt
	// KindBool is a bool field.
	KindBool
	// KindString is a string field.
	KindString
	// KindEnum is a single symbol of an EnumType.
	KindEnum
	// KindFlags is a bit combination of a flags EnumType.
	KindFlags
	// KindKeyCode is a keybinding from the trusted key code table.
	KindKeyCode
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindEnum:
		return "enum"
	case KindFlags:
		return "flags"
	case KindKeyCode:
		return "keycode"
	default:
		return "unknown"
	}
}

// Value is a comparable snapshot of one field value. Two values are equal
// when they have the same kind and the same content.
type Value struct {
	kind Kind
	f    float64
	i    int
	b    bool
	s    string
	enum *EnumType
}

// FloatValue wraps a float.
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

// IntValue wraps an int.
func IntValue(i int) Value { return Value{kind: KindInt, i: i} }

// BoolValue wraps a bool.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// EnumValue wraps a symbol value of e. The kind follows e.IsFlags.
func EnumValue(e *EnumType, v int) Value {
	k := KindEnum
	if e != nil && e.IsFlags() {
		k = KindFlags
	}
	return Value{kind: k, i: v, enum: e}
}

// KeyCodeValue wraps a key code.
func KeyCodeValue(c keycode.KeyCode) Value { return Value{kind: KindKeyCode, i: int(c)} }

// Kind returns the value kind.
func (v Value) Kind() Kind { return v.kind }

// Float returns the float content.
func (v Value) Float() float64 { return v.f }

// Int returns the integer content of int, enum, flags and keycode values.
func (v Value) Int() int { return v.i }

// Bool returns the bool content.
func (v Value) Bool() bool { return v.b }

// Text returns the string content.
func (v Value) Text() string { return v.s }

// KeyCode returns the key code content.
func (v Value) KeyCode() keycode.KeyCode { return keycode.KeyCode(v.i) }

// String formats the value the way it is written to a document and to the
// server serialization. The format is stable across processes.
func (v Value) String() string {
	switch v.kind {
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindInt:
		return strconv.Itoa(v.i)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindString:
		return v.s
	case KindEnum, KindFlags:
		if v.enum == nil {
			return strconv.Itoa(v.i)
		}
		return v.enum.Format(v.i)
	case KindKeyCode:
		return keycode.KeyCode(v.i).String()
	default:
		return fmt.Sprintf("%v", v.i)
	}
}

// Interface returns the value as a plain Go value for exports.
func (v Value) Interface() any {
	switch v.kind {
	case KindFloat:
		return v.f
	case KindInt:
		return v.i
	case KindBool:
		return v.b
	default:
		return v.String()
	}
}
