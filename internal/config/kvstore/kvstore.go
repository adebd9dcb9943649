// Package kvstore adapts INI documents to the typed, fail-soft accessors
// used by section population, and provides the write side used by
// template generation and auto-update merging.
package kvstore

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/ini.v1"
)

func init() {
	// Documents are written as key=value with no alignment padding.
	ini.PrettyFormat = false
}

// Values are taken as written: no continuation lines, no inline comments
// and no quote stripping. Quoting is handled by Quote and Section.Get.
var loadOptions = ini.LoadOptions{
	IgnoreInlineComment:     true,
	IgnoreContinuation:      true,
	PreserveSurroundedQuote: true,
	SkipUnrecognizableLines: true,
}

// Store is a parsed INI document.
type Store struct {
	file *ini.File
	log  *slog.Logger
}

// Parse parses data into a Store. A nil logger uses slog.Default.
func Parse(data []byte, log *slog.Logger) (*Store, error) {
	f, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return nil, fmt.Errorf("parse ini: %w", err)
	}
	return &Store{file: f, log: orDefault(log)}, nil
}

// Empty returns a store with no sections.
func Empty(log *slog.Logger) *Store {
	return &Store{file: ini.Empty(loadOptions), log: orDefault(log)}
}

func orDefault(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.Default()
	}
	return log
}

// Section returns the section named name, matched case-insensitively,
// or nil when the document has no such section.
func (s *Store) Section(name string) *Section {
	sec := s.find(name)
	if sec == nil {
		return nil
	}
	return &Section{sec: sec, log: s.log.With("section", sec.Name())}
}

// SectionNames returns the section names in document order.
func (s *Store) SectionNames() []string {
	var names []string
	for _, sec := range s.file.Sections() {
		if sec.Name() == ini.DefaultSection && len(sec.Keys()) == 0 {
			continue
		}
		names = append(names, sec.Name())
	}
	return names
}

func (s *Store) find(name string) *ini.Section {
	for _, sec := range s.file.Sections() {
		if strings.EqualFold(sec.Name(), name) {
			return sec
		}
	}
	return nil
}

func (s *Store) ensure(name string) (*ini.Section, error) {
	if sec := s.find(name); sec != nil {
		return sec, nil
	}
	sec, err := s.file.NewSection(name)
	if err != nil {
		return nil, fmt.Errorf("new section %s: %w", name, err)
	}
	return sec, nil
}

// Set writes key=value into section, creating either when missing.
func (s *Store) Set(section, key, value string) error {
	sec, err := s.ensure(section)
	if err != nil {
		return err
	}
	if k := findKey(sec, key); k != nil {
		k.SetValue(value)
		return nil
	}
	if _, err := sec.NewKey(key, value); err != nil {
		return fmt.Errorf("new key %s.%s: %w", section, key, err)
	}
	return nil
}

// SetComment sets the comment written above section.
func (s *Store) SetComment(section, comment string) error {
	sec, err := s.ensure(section)
	if err != nil {
		return err
	}
	sec.Comment = comment
	return nil
}

// StripComments removes every section and key comment.
func (s *Store) StripComments() {
	for _, sec := range s.file.Sections() {
		sec.Comment = ""
		for _, k := range sec.Keys() {
			k.Comment = ""
		}
	}
}

// MergeFrom copies every key of other into s. Values from other win;
// sections and keys s does not have are appended with their comments.
// Existing comments in s are kept.
func (s *Store) MergeFrom(other *Store) error {
	for _, src := range other.file.Sections() {
		if src.Name() == ini.DefaultSection && len(src.Keys()) == 0 {
			continue
		}
		dst := s.find(src.Name())
		if dst == nil {
			var err error
			dst, err = s.file.NewSection(src.Name())
			if err != nil {
				return fmt.Errorf("merge section %s: %w", src.Name(), err)
			}
			dst.Comment = src.Comment
		}

		for _, sk := range src.Keys() {
			if dk := findKey(dst, sk.Name()); dk != nil {
				dk.SetValue(sk.Value())
				continue
			}
			dk, err := dst.NewKey(sk.Name(), sk.Value())
			if err != nil {
				return fmt.Errorf("merge key %s.%s: %w", src.Name(), sk.Name(), err)
			}
			dk.Comment = sk.Comment
		}
	}
	return nil
}

// WriteTo writes the document to w.
func (s *Store) WriteTo(w io.Writer) (int64, error) {
	return s.file.WriteTo(w)
}

// Bytes returns the serialized document.
func (s *Store) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := s.file.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// findKey matches key exactly, then case-insensitively.
func findKey(sec *ini.Section, key string) *ini.Key {
	keys := sec.Keys()
	for _, k := range keys {
		if k.Name() == key {
			return k
		}
	}
	for _, k := range keys {
		if strings.EqualFold(k.Name(), key) {
			return k
		}
	}
	return nil
}
