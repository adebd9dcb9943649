package registry

import (
	"strconv"
	"strings"
)

// Symbol is one named value of an enum type.
type Symbol struct {
	Name  string
	Value int
}

// EnumType is the declared symbol set of an enum or flags field.
type EnumType struct {
	name    string
	flags   bool
	symbols []Symbol
	mask    int
}

// NewEnum declares a plain enum type.
func NewEnum(name string, symbols ...Symbol) *EnumType {
	return newEnumType(name, false, symbols)
}

// NewFlags declares a flags enum whose values are OR-combined bits.
func NewFlags(name string, symbols ...Symbol) *EnumType {
	return newEnumType(name, true, symbols)
}

func newEnumType(name string, flags bool, symbols []Symbol) *EnumType {
	e := &EnumType{
		name:    name,
		flags:   flags,
		symbols: append([]Symbol(nil), symbols...),
	}
	for _, s := range symbols {
		e.mask |= s.Value
	}
	return e
}

// Name returns the type name.
func (e *EnumType) Name() string { return e.name }

// IsFlags reports whether values are bit combinations.
func (e *EnumType) IsFlags() bool { return e.flags }

// Symbols returns the declared symbols in declaration order.
func (e *EnumType) Symbols() []Symbol {
	return append([]Symbol(nil), e.symbols...)
}

// Lookup resolves a single symbol by case-insensitive name. Integer text is
// accepted when it is a valid value of the type.
func (e *EnumType) Lookup(name string) (int, bool) {
	name = strings.TrimSpace(name)
	for _, s := range e.symbols {
		if strings.EqualFold(s.Name, name) {
			return s.Value, true
		}
	}
	if n, err := strconv.Atoi(name); err == nil && e.Valid(n) {
		return n, true
	}
	return 0, false
}

// Valid reports whether v is a declared value, or for flags a combination
// of declared bits.
func (e *EnumType) Valid(v int) bool {
	if e.flags {
		return v >= 0 && v&^e.mask == 0
	}
	for _, s := range e.symbols {
		if s.Value == v {
			return true
		}
	}
	return false
}

// Format renders v as it is written in a document. Flag combinations are
// the names of the set bits in declaration order, separated by ", ".
func (e *EnumType) Format(v int) string {
	for _, s := range e.symbols {
		if s.Value == v {
			return s.Name
		}
	}
	if !e.flags {
		return strconv.Itoa(v)
	}
	if v == 0 {
		return ""
	}

	var names []string
	rest := v
	for _, s := range e.symbols {
		if s.Value != 0 && rest&s.Value == s.Value {
			names = append(names, s.Name)
			rest &^= s.Value
		}
	}
	if rest != 0 {
		return strconv.Itoa(v)
	}
	return strings.Join(names, ", ")
}
