package kvstore

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/dshills/modsync/internal/config/keycode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// testSymbols is a minimal Symbols implementation.
type testSymbols struct {
	name    string
	flags   bool
	symbols map[string]int
}

func (e testSymbols) Name() string { return e.name }

func (e testSymbols) Lookup(name string) (int, bool) {
	for n, v := range e.symbols {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return v, true
		}
	}
	return 0, false
}

func (e testSymbols) Valid(v int) bool {
	if e.flags {
		mask := 0
		for _, b := range e.symbols {
			mask |= b
		}
		return v >= 0 && v&^mask == 0
	}
	for _, s := range e.symbols {
		if s == v {
			return true
		}
	}
	return false
}

var (
	damage = testSymbols{name: "DamageType", flags: true, symbols: map[string]int{"Fire": 1, "Frost": 2}}
	mode   = testSymbols{name: "Mode", symbols: map[string]int{"Off": 0, "Light": 1, "Full": 2}}
)

func newTestStore(t *testing.T, doc string) (*Store, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	s, err := Parse([]byte(doc), log)
	require.NoError(t, err)
	return s, &buf
}

const sampleDoc = `
; Item settings
[Items]
enabled = true
baseItemWeightReduction = 1,250.5
maxStack = 50
halfStack = 12.0
badFloat = abc
badInt = 1.5
label =   hello world
mode = FULL
badMode = Turbo
damage = Fire, fire, BOGUS
frost = Frost,Fire
toss = F5
badKey = f5
numericKey = 97

[server]
serverSyncsConfig = yes
`

func TestStore_SectionLookup(t *testing.T) {
	s, _ := newTestStore(t, sampleDoc)

	if s.Section("items") == nil {
		t.Fatal("Section(items) should match [Items]")
	}
	if s.Section("SERVER") == nil {
		t.Fatal("Section(SERVER) should match [server]")
	}
	if s.Section("Player") != nil {
		t.Error("Section(Player) should be nil")
	}

	assert.Equal(t, []string{"Items", "server"}, s.SectionNames())
}

func TestSection_Getters(t *testing.T) {
	s, logs := newTestStore(t, sampleDoc)
	items := s.Section("Items")
	require.NotNil(t, items)

	if got := items.Float("baseItemWeightReduction", 0); got != 1250.5 {
		t.Errorf("Float = %v, want 1250.5", got)
	}
	if got := items.Float("missing", 7); got != 7 {
		t.Errorf("Float(missing) = %v, want 7", got)
	}
	if got := items.Float("badFloat", 3); got != 3 {
		t.Errorf("Float(badFloat) = %v, want default 3", got)
	}
	if got := items.Int("maxStack", 0); got != 50 {
		t.Errorf("Int = %d, want 50", got)
	}
	if got := items.Int("halfStack", 0); got != 12 {
		t.Errorf("Int(halfStack) = %d, want 12", got)
	}
	if got := items.Int("badInt", 9); got != 9 {
		t.Errorf("Int(badInt) = %d, want default 9", got)
	}
	if got := items.String("label", ""); got != "hello world" {
		t.Errorf("String = %q, want %q", got, "hello world")
	}
	if got := items.Enum("mode", 0, mode); got != 2 {
		t.Errorf("Enum = %d, want 2", got)
	}
	if got := items.Enum("badMode", 1, mode); got != 1 {
		t.Errorf("Enum(badMode) = %d, want default 1", got)
	}
	if got := items.Flags("frost", 0, damage); got != 3 {
		t.Errorf("Flags(frost) = %d, want 3", got)
	}
	if got := items.KeyCode("toss", keycode.None); got != keycode.F5 {
		t.Errorf("KeyCode = %v, want F5", got)
	}
	if got := items.KeyCode("badKey", keycode.F1); got != keycode.F1 {
		t.Errorf("KeyCode(badKey) = %v, want default F1", got)
	}
	if got := items.KeyCode("numericKey", keycode.None); got != keycode.A {
		t.Errorf("KeyCode(numericKey) = %v, want A", got)
	}

	out := logs.String()
	for _, key := range []string{"badFloat", "badInt", "badMode", "badKey"} {
		if !strings.Contains(out, "key="+key) {
			t.Errorf("expected warning for %s, logs:\n%s", key, out)
		}
	}
	if !strings.Contains(out, "section=Items") {
		t.Errorf("warnings should carry the section attribute, logs:\n%s", out)
	}
}

func TestSection_FlagsScenario(t *testing.T) {
	s, logs := newTestStore(t, sampleDoc)

	got := s.Section("Items").Flags("damage", 0, damage)
	if got != 1 {
		t.Errorf("Flags = %d, want 1 (Fire)", got)
	}

	out := logs.String()
	if n := strings.Count(out, "unknown flag"); n != 1 {
		t.Errorf("unknown flag warnings = %d, want 1, logs:\n%s", n, out)
	}
	if !strings.Contains(out, "flag=BOGUS") {
		t.Errorf("warning should name BOGUS, logs:\n%s", out)
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"y", true},
		{"YES", true},
		{" True ", true},
		{"1", true},
		{"Enabled", true},
		{"", false},
		{"no", false},
		{"0", false},
		{"on", false},
		{"truthy", false},
	}

	for _, tt := range tests {
		if got := ParseBool(tt.raw); got != tt.want {
			t.Errorf("ParseBool(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestParseBool_Total(t *testing.T) {
	tokens := map[string]bool{"y": true, "yes": true, "true": true, "1": true, "enabled": true}

	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.OneOf(
			rapid.String(),
			rapid.SampledFrom([]string{"y", "Yes", " TRUE", "1 ", "eNaBlEd", "false", "off"}),
		).Draw(t, "raw")

		want := tokens[strings.ToLower(strings.TrimSpace(raw))]
		if got := ParseBool(raw); got != want {
			t.Fatalf("ParseBool(%q) = %v, want %v", raw, got, want)
		}
	})
}

func TestSection_BoolNoWarning(t *testing.T) {
	s, logs := newTestStore(t, "[A]\nenabled=maybe\n")

	if s.Section("A").Bool("enabled") {
		t.Error("Bool(maybe) should be false")
	}
	if s.Section("A").Bool("missing") {
		t.Error("Bool(missing) should be false")
	}
	if logs.Len() != 0 {
		t.Errorf("Bool should never warn, logs:\n%s", logs.String())
	}
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"1.5", 1.5, true},
		{" -2 ", -2, true},
		{"1,000", 1000, true},
		{"1e3", 1000, true},
		{"1,5x", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseFloat(tt.raw)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseFloat(%q) = (%v, %v), want (%v, %v)", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestStore_SetAndBytes(t *testing.T) {
	s := Empty(nil)
	require.NoError(t, s.Set("Items", "enabled", "true"))
	require.NoError(t, s.Set("items", "maxStack", "50"))
	require.NoError(t, s.Set("Items", "MAXSTACK", "60"))

	data, err := s.Bytes()
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "[Items]")
	assert.Contains(t, text, "maxStack=60")
	assert.Equal(t, 1, strings.Count(text, "[Items]"))
	assert.NotContains(t, text, "MAXSTACK")
}

func TestStore_MergeFrom(t *testing.T) {
	template, _ := newTestStore(t, `; Item settings
[Items]
; Enables the section
enabled = true
baseItemWeightReduction = 10
; A new feature
newFeature = 5
`)
	local, _ := newTestStore(t, `[Items]
; my private note
enabled = true
baseItemWeightReduction = 20
legacyKey = foo

[Custom]
value = 1
`)

	local.StripComments()
	require.NoError(t, template.MergeFrom(local))

	data, err := template.Bytes()
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "baseItemWeightReduction=20")
	assert.NotContains(t, text, "baseItemWeightReduction=10")
	assert.Contains(t, text, "newFeature=5")
	assert.Contains(t, text, "; A new feature")
	assert.Contains(t, text, "; Item settings")
	assert.Contains(t, text, "legacyKey=foo")
	assert.Contains(t, text, "[Custom]")
	assert.NotContains(t, text, "my private note")

	reparsed, err := Parse(data, nil)
	require.NoError(t, err)
	if got := reparsed.Section("Items").Int("baseItemWeightReduction", 0); got != 20 {
		t.Errorf("reparsed weight = %d, want 20", got)
	}
}

func TestSection_NoContinuationLines(t *testing.T) {
	s, _ := newTestStore(t, "[Server]\nwelcomeMessage=Mods in C:\\Games\\\ndataRate=120\n")
	server := s.Section("Server")

	if got := server.String("welcomeMessage", ""); got != `Mods in C:\Games\` {
		t.Errorf("welcomeMessage = %q", got)
	}
	if got := server.Int("dataRate", 60); got != 120 {
		t.Errorf("dataRate = %d, want 120", got)
	}
}

func TestSection_Quoting(t *testing.T) {
	doc := `[Server]
plain = hello world
spaced = "  padded  "
escaped = "say \"hi\""
windows = "C:\Games"
number = "16"
single = 'kept'
`
	s, _ := newTestStore(t, doc)
	server := s.Section("Server")

	tests := []struct {
		key  string
		want string
	}{
		{"plain", "hello world"},
		{"spaced", "  padded  "},
		{"escaped", `say "hi"`},
		{"windows", `C:\Games`},
		{"number", "16"},
		{"single", "'kept'"},
	}
	for _, tt := range tests {
		if got := server.String(tt.key, ""); got != tt.want {
			t.Errorf("String(%s) = %q, want %q", tt.key, got, tt.want)
		}
	}
	if got := server.Int("number", 0); got != 16 {
		t.Errorf("Int(number) = %d, want 16", got)
	}
}

func TestQuote_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		value := rapid.String().Draw(t, "value")

		s := Empty(nil)
		if err := s.Set("Server", "welcomeMessage", Quote(value)); err != nil {
			t.Fatalf("Set: %v", err)
		}
		if err := s.Set("Server", "next", "1"); err != nil {
			t.Fatalf("Set: %v", err)
		}
		data, err := s.Bytes()
		if err != nil {
			t.Fatalf("Bytes: %v", err)
		}

		reparsed, err := Parse(data, nil)
		if err != nil {
			t.Fatalf("Parse: %v\n%s", err, data)
		}
		server := reparsed.Section("Server")
		if got := server.String("welcomeMessage", "<missing>"); got != value {
			t.Fatalf("got %q, want %q\n%s", got, value, data)
		}
		if got := server.Int("next", 0); got != 1 {
			t.Fatalf("next = %d, want 1\n%s", got, data)
		}
	})
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		raw  string
		want int
		ok   bool
	}{
		{"42", 42, true},
		{" -7 ", -7, true},
		{"1,000", 1000, true},
		{"12.0", 12, true},
		{"1.5", 0, false},
		{"2147483647", 2147483647, true},
		{"2147483648", 0, false},
		{"-2147483649", 0, false},
		{"3e9", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseInt(tt.raw)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseInt(%q) = (%v, %v), want (%v, %v)", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}
