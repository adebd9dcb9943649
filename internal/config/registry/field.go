package registry

import (
	"unicode"
	"unicode/utf8"

	"github.com/dshills/modsync/internal/config/keycode"
)

// Field describes one typed field of section type T. Fields are built once,
// at type definition time, with the typed constructors below; the order of
// the field list is the serialization order.
type Field[T any] struct {
	// Name is the field name used in the server serialization.
	Name string

	// Kind is the field type tag.
	Kind Kind

	// Policy controls loading. The zero value is PolicyAlways.
	Policy Policy

	// Enum is the symbol set of enum and flags fields.
	Enum *EnumType

	get func(*T) Value
	set func(*T, Value)
}

// KeyName returns the document key: the field name with its first
// character lower-cased.
func (f Field[T]) KeyName() string {
	r, size := utf8.DecodeRuneInString(f.Name)
	if r == utf8.RuneError || !unicode.IsUpper(r) {
		return f.Name
	}
	return string(unicode.ToLower(r)) + f.Name[size:]
}

// Get reads the field from v.
func (f Field[T]) Get(v *T) Value { return f.get(v) }

// Set writes val into v.
func (f Field[T]) Set(v *T, val Value) { f.set(v, val) }

// With returns a copy of f with policy p.
func (f Field[T]) With(p Policy) Field[T] {
	f.Policy = p
	return f
}

// IgnoredOnLoad reports whether the field is never loaded.
func (f Field[T]) IgnoredOnLoad() bool { return IgnoredOnLoad(f.Policy) }

// LocalOnly reports whether the field keeps its local value in ctx.
func (f Field[T]) LocalOnly(ctx SyncContext) bool { return LocalOnly(f.Policy, f.Kind, ctx) }

// Float declares a float64 field.
func Float[T any](name string, ref func(*T) *float64) Field[T] {
	return Field[T]{
		Name: name,
		Kind: KindFloat,
		get:  func(v *T) Value { return FloatValue(*ref(v)) },
		set:  func(v *T, val Value) { *ref(v) = val.Float() },
	}
}

// Int declares an int field.
func Int[T any](name string, ref func(*T) *int) Field[T] {
	return Field[T]{
		Name: name,
		Kind: KindInt,
		get:  func(v *T) Value { return IntValue(*ref(v)) },
		set:  func(v *T, val Value) { *ref(v) = val.Int() },
	}
}

// Bool declares a bool field.
func Bool[T any](name string, ref func(*T) *bool) Field[T] {
	return Field[T]{
		Name: name,
		Kind: KindBool,
		get:  func(v *T) Value { return BoolValue(*ref(v)) },
		set:  func(v *T, val Value) { *ref(v) = val.Bool() },
	}
}

// String declares a string field.
func String[T any](name string, ref func(*T) *string) Field[T] {
	return Field[T]{
		Name: name,
		Kind: KindString,
		get:  func(v *T) Value { return StringValue(*ref(v)) },
		set:  func(v *T, val Value) { *ref(v) = val.Text() },
	}
}

// Enum declares a field holding one symbol of e.
func Enum[T any, E ~int](name string, e *EnumType, ref func(*T) *E) Field[T] {
	return enumField(name, KindEnum, e, ref)
}

// Flags declares a field holding a bit combination of the flags type e.
func Flags[T any, E ~int](name string, e *EnumType, ref func(*T) *E) Field[T] {
	return enumField(name, KindFlags, e, ref)
}

func enumField[T any, E ~int](name string, k Kind, e *EnumType, ref func(*T) *E) Field[T] {
	return Field[T]{
		Name: name,
		Kind: k,
		Enum: e,
		get:  func(v *T) Value { return EnumValue(e, int(*ref(v))) },
		set:  func(v *T, val Value) { *ref(v) = E(val.Int()) },
	}
}

// KeyCode declares a keybinding field.
func KeyCode[T any](name string, ref func(*T) *keycode.KeyCode) Field[T] {
	return Field[T]{
		Name: name,
		Kind: KindKeyCode,
		get:  func(v *T) Value { return KeyCodeValue(*ref(v)) },
		set:  func(v *T, val Value) { *ref(v) = val.KeyCode() },
	}
}
