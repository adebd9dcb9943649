package kvstore

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/dshills/modsync/internal/config/keycode"
	"gopkg.in/ini.v1"
)

// Symbols is a declared enum symbol set.
type Symbols interface {
	Name() string
	Lookup(name string) (int, bool)
	Valid(v int) bool
}

// Section is a read view of one document section. Typed getters never
// fail: malformed values yield the supplied default and a warning.
type Section struct {
	sec *ini.Section
	log *slog.Logger
}

// Name returns the section name as written in the document.
func (s *Section) Name() string { return s.sec.Name() }

// Get returns the value of key with Quote's quoting removed.
func (s *Section) Get(key string) (string, bool) {
	k := findKey(s.sec, key)
	if k == nil {
		return "", false
	}
	return Unquote(k.Value()), true
}

// Has reports whether key is present.
func (s *Section) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Keys returns the key names in document order.
func (s *Section) Keys() []string {
	return s.sec.KeyStrings()
}

func (s *Section) invalid(key, raw, kind string) {
	s.log.Warn("invalid value, using default", "key", key, "value", raw, "type", kind)
}

// Float parses key as a locale-independent float.
func (s *Section) Float(key string, def float64) float64 {
	raw, ok := s.Get(key)
	if !ok {
		return def
	}
	f, ok := ParseFloat(raw)
	if !ok {
		s.invalid(key, raw, "float")
		return def
	}
	return f
}

// Int parses key as a locale-independent integer. Integral float text
// such as "5.0" is accepted.
func (s *Section) Int(key string, def int) int {
	raw, ok := s.Get(key)
	if !ok {
		return def
	}
	n, ok := ParseInt(raw)
	if !ok {
		s.invalid(key, raw, "int")
		return def
	}
	return n
}

// Bool reports whether key holds a truthy token. It is total: absent and
// unrecognized values are false and produce no warning.
func (s *Section) Bool(key string) bool {
	raw, _ := s.Get(key)
	return ParseBool(raw)
}

// String returns the value of key. Surrounding blanks are only kept
// when the value was quoted.
func (s *Section) String(key, def string) string {
	raw, ok := s.Get(key)
	if !ok {
		return def
	}
	return raw
}

// Enum matches key case-insensitively against the symbols of e.
func (s *Section) Enum(key string, def int, e Symbols) int {
	raw, ok := s.Get(key)
	if !ok {
		return def
	}
	v, ok := e.Lookup(raw)
	if !ok {
		s.invalid(key, raw, e.Name())
		return def
	}
	return v
}

// Flags parses a comma-separated list of flag names and ORs them.
// Unknown tokens are skipped with a warning. The default is returned if
// the combination is not valid for e.
func (s *Section) Flags(key string, def int, e Symbols) int {
	raw, ok := s.Get(key)
	if !ok {
		return def
	}

	var v int
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		bit, ok := e.Lookup(tok)
		if !ok {
			s.log.Warn("unknown flag, skipping", "key", key, "flag", tok, "type", e.Name())
			continue
		}
		v |= bit
	}

	if !e.Valid(v) {
		s.invalid(key, raw, e.Name())
		return def
	}
	return v
}

// KeyCode matches key case-sensitively against the key code table.
func (s *Section) KeyCode(key string, def keycode.KeyCode) keycode.KeyCode {
	raw, ok := s.Get(key)
	if !ok {
		return def
	}
	c, ok := keycode.Parse(raw)
	if !ok {
		s.invalid(key, raw, "keycode")
		return def
	}
	return c
}

var truthy = map[string]bool{
	"y":       true,
	"yes":     true,
	"true":    true,
	"1":       true,
	"enabled": true,
}

// ParseBool reports whether raw is one of y, yes, true, 1 or enabled,
// ignoring case and surrounding blanks.
func ParseBool(raw string) bool {
	return truthy[strings.ToLower(strings.TrimSpace(raw))]
}

// ParseFloat parses raw with '.' as the decimal point, ignoring ','
// group separators and surrounding blanks. Non-finite values are rejected.
func ParseFloat(raw string) (float64, bool) {
	f, err := strconv.ParseFloat(normalizeNumber(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseInt parses raw as a base 10 32-bit integer, falling back to
// integral float text. Values outside the 32-bit range are rejected.
func ParseInt(raw string) (int, bool) {
	text := normalizeNumber(raw)
	if n, err := strconv.ParseInt(text, 10, 32); err == nil {
		return int(n), true
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// Quote returns s in a form that Section.Get reads back unchanged.
// Values with surrounding blanks, a leading double quote or line breaks
// are written as Go-style quoted strings; everything else as is.
func Quote(s string) string {
	if s == "" {
		return s
	}
	if strings.TrimSpace(s) != s || s[0] == '"' || strings.ContainsAny(s, "\r\n") {
		return strconv.Quote(s)
	}
	return s
}

// Unquote reverses Quote. A hand-written value in double quotes that is
// not a valid quoted string only loses the quotes.
func Unquote(raw string) string {
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return raw
	}
	if s, err := strconv.Unquote(raw); err == nil {
		return s
	}
	return raw[1 : len(raw)-1]
}

func normalizeNumber(raw string) string {
	return strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
}
