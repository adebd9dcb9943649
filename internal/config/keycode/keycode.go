// Package keycode provides the trusted key code table used by keybinding
// settings.
//
// Key codes are written in configuration files by their exact symbol name
// ("F1", "LeftShift", "Alpha3", "Mouse4"). Matching is case-sensitive: the
// table is the authority and spelling variants are rejected. Numeric values
// of declared codes are accepted as well.
package keycode

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// KeyCode identifies a physical key or mouse button.
type KeyCode int

// Special keys. Letters, digits, function keys, keypad keys and mouse
// buttons are contiguous ranges declared below.
const (
	None         KeyCode = 0
	Backspace    KeyCode = 8
	Tab          KeyCode = 9
	Clear        KeyCode = 12
	Return       KeyCode = 13
	Pause        KeyCode = 19
	Escape       KeyCode = 27
	Space        KeyCode = 32
	Quote        KeyCode = 39
	Comma        KeyCode = 44
	Minus        KeyCode = 45
	Period       KeyCode = 46
	Slash        KeyCode = 47
	Alpha0       KeyCode = 48
	Semicolon    KeyCode = 59
	Equals       KeyCode = 61
	LeftBracket  KeyCode = 91
	Backslash    KeyCode = 92
	RightBracket KeyCode = 93
	BackQuote    KeyCode = 96
	A            KeyCode = 97
	Delete       KeyCode = 127

	Keypad0        KeyCode = 256
	KeypadPeriod   KeyCode = 266
	KeypadDivide   KeyCode = 267
	KeypadMultiply KeyCode = 268
	KeypadMinus    KeyCode = 269
	KeypadPlus     KeyCode = 270
	KeypadEnter    KeyCode = 271
	KeypadEquals   KeyCode = 272

	UpArrow    KeyCode = 273
	DownArrow  KeyCode = 274
	RightArrow KeyCode = 275
	LeftArrow  KeyCode = 276
	Insert     KeyCode = 277
	Home       KeyCode = 278
	End        KeyCode = 279
	PageUp     KeyCode = 280
	PageDown   KeyCode = 281

	F1  KeyCode = 282
	F2  KeyCode = 283
	F3  KeyCode = 284
	F4  KeyCode = 285
	F5  KeyCode = 286
	F6  KeyCode = 287
	F7  KeyCode = 288
	F8  KeyCode = 289
	F9  KeyCode = 290
	F10 KeyCode = 291
	F11 KeyCode = 292
	F12 KeyCode = 293
	F13 KeyCode = 294
	F14 KeyCode = 295
	F15 KeyCode = 296

	Numlock      KeyCode = 300
	CapsLock     KeyCode = 301
	ScrollLock   KeyCode = 302
	RightShift   KeyCode = 303
	LeftShift    KeyCode = 304
	RightControl KeyCode = 305
	LeftControl  KeyCode = 306
	RightAlt     KeyCode = 307
	LeftAlt      KeyCode = 308
	LeftCommand  KeyCode = 310
	RightCommand KeyCode = 309
	Print        KeyCode = 316

	Mouse0 KeyCode = 323
)

const (
	numFunctionKeys = 15
	numMouseButtons = 7
)

var (
	byName = make(map[string]KeyCode)
	byCode = make(map[KeyCode]string)
)

func init() {
	specials := map[KeyCode]string{
		None: "None", Backspace: "Backspace", Tab: "Tab", Clear: "Clear",
		Return: "Return", Pause: "Pause", Escape: "Escape", Space: "Space",
		Quote: "Quote", Comma: "Comma", Minus: "Minus", Period: "Period",
		Slash: "Slash", Semicolon: "Semicolon", Equals: "Equals",
		LeftBracket: "LeftBracket", Backslash: "Backslash",
		RightBracket: "RightBracket", BackQuote: "BackQuote", Delete: "Delete",
		KeypadPeriod: "KeypadPeriod", KeypadDivide: "KeypadDivide",
		KeypadMultiply: "KeypadMultiply", KeypadMinus: "KeypadMinus",
		KeypadPlus: "KeypadPlus", KeypadEnter: "KeypadEnter",
		KeypadEquals: "KeypadEquals",
		UpArrow: "UpArrow", DownArrow: "DownArrow", RightArrow: "RightArrow",
		LeftArrow: "LeftArrow", Insert: "Insert", Home: "Home", End: "End",
		PageUp: "PageUp", PageDown: "PageDown",
		Numlock: "Numlock", CapsLock: "CapsLock", ScrollLock: "ScrollLock",
		RightShift: "RightShift", LeftShift: "LeftShift",
		RightControl: "RightControl", LeftControl: "LeftControl",
		RightAlt: "RightAlt", LeftAlt: "LeftAlt",
		LeftCommand: "LeftCommand", RightCommand: "RightCommand",
		Print: "Print",
	}
	for code, name := range specials {
		register(code, name)
	}

	for i := 0; i < 10; i++ {
		register(Alpha0+KeyCode(i), "Alpha"+strconv.Itoa(i))
		register(Keypad0+KeyCode(i), "Keypad"+strconv.Itoa(i))
	}
	for i := 0; i < 26; i++ {
		register(A+KeyCode(i), string(rune('A'+i)))
	}
	for i := 0; i < numFunctionKeys; i++ {
		register(F1+KeyCode(i), "F"+strconv.Itoa(i+1))
	}
	for i := 0; i < numMouseButtons; i++ {
		register(Mouse0+KeyCode(i), "Mouse"+strconv.Itoa(i))
	}
}

func register(code KeyCode, name string) {
	byName[name] = code
	byCode[code] = name
}

// Parse resolves a key code from its symbol name or numeric value.
// Surrounding whitespace is ignored; the name itself must match exactly.
func Parse(s string) (KeyCode, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return None, false
	}
	if code, ok := byName[s]; ok {
		return code, true
	}
	if n, err := strconv.Atoi(s); err == nil {
		if _, ok := byCode[KeyCode(n)]; ok {
			return KeyCode(n), true
		}
	}
	return None, false
}

// String returns the symbol name of the key code.
func (k KeyCode) String() string {
	if name, ok := byCode[k]; ok {
		return name
	}
	return fmt.Sprintf("KeyCode(%d)", int(k))
}

// Valid reports whether k is a declared key code.
func (k KeyCode) Valid() bool {
	_, ok := byCode[k]
	return ok
}

// IsMouse reports whether k is a mouse button.
func (k KeyCode) IsMouse() bool {
	return k >= Mouse0 && k < Mouse0+numMouseButtons
}

// IsFunctionKey reports whether k is one of F1 through F15.
func (k KeyCode) IsFunctionKey() bool {
	return k >= F1 && k < F1+numFunctionKeys
}

// All returns every declared key code in ascending order.
func All() []KeyCode {
	codes := make([]KeyCode, 0, len(byCode))
	for code := range byCode {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}
