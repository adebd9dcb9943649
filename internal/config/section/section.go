// Package section binds a typed section struct to its ordered field list
// and implements population from a document, server serialization and
// encoding back to a document.
//
// Section structs embed Meta:
//
//	type Items struct {
//	    section.Meta
//	    MaxStack int
//	}
//
//	var ItemsSection = section.New[Items]("Items", true, defaultItems,
//	    registry.Int("MaxStack", func(v *Items) *int { return &v.MaxStack }),
//	)
//
// Every load pass constructs fresh instances; a populated instance is never
// mutated afterwards.
package section

import (
	"log/slog"
	"strings"

	"github.com/dshills/modsync/internal/config/kvstore"
	"github.com/dshills/modsync/internal/config/registry"
)

// EnabledKey gates whether a section's fields are read.
const EnabledKey = "enabled"

// Meta holds the two meta-fields every section carries. Neither is read
// from a document field: enabled comes from the gating key and serverSync
// is fixed by the section's descriptor.
type Meta struct {
	enabled    bool
	serverSync bool
}

// IsEnabled reports whether the document enabled the section.
func (m Meta) IsEnabled() bool { return m.enabled }

// NeedsServerSync reports whether the section must match between peers.
func (m Meta) NeedsServerSync() bool { return m.serverSync }

func (m *Meta) sectionMeta() *Meta { return m }

// Instance is implemented by structs embedding Meta.
type Instance interface {
	sectionMeta() *Meta
}

// Pointer constrains P to *T where T embeds Meta.
type Pointer[T any] interface {
	*T
	Instance
}

// Descriptor describes one section type.
type Descriptor[T any, P Pointer[T]] struct {
	name       string
	serverSync bool
	defaults   func() T
	fields     []registry.Field[T]
}

// New declares a section type. The field order is the serialization order.
func New[T any, P Pointer[T]](name string, serverSync bool, defaults func() T, fields ...registry.Field[T]) *Descriptor[T, P] {
	return &Descriptor[T, P]{
		name:       name,
		serverSync: serverSync,
		defaults:   defaults,
		fields:     fields,
	}
}

// Name returns the section name.
func (d *Descriptor[T, P]) Name() string { return d.name }

// NeedsServerSync reports whether instances of this type must match
// between peers.
func (d *Descriptor[T, P]) NeedsServerSync() bool { return d.serverSync }

// Fields returns the declared fields in order.
func (d *Descriptor[T, P]) Fields() []registry.Field[T] {
	return append([]registry.Field[T](nil), d.fields...)
}

func (d *Descriptor[T, P]) fresh(enabled bool) *T {
	v := d.defaults()
	m := P(&v).sectionMeta()
	m.enabled = enabled
	m.serverSync = d.serverSync
	return &v
}

// IsEnabled reports whether v is non-nil and enabled.
func (d *Descriptor[T, P]) IsEnabled(v *T) bool {
	return v != nil && P(v).sectionMeta().enabled
}

// Default returns a disabled instance holding the default values.
func (d *Descriptor[T, P]) Default() *T {
	return d.fresh(false)
}

// Populate builds a new instance from store. A missing section, or one
// whose enabled key is not truthy, yields Default. Otherwise each field is
// read from the document. A key absent from the document keeps the
// field's default; a malformed value keeps base's value (the currently
// active instance, or the defaults when base is nil). Fields that are
// local-only in ctx keep base's value; fields with PolicyNever keep their
// default. base is not modified.
func (d *Descriptor[T, P]) Populate(store *kvstore.Store, base *T, ctx registry.SyncContext, log *slog.Logger) *T {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("section", d.name)

	var sec *kvstore.Section
	if store != nil {
		sec = store.Section(d.name)
	}
	if sec == nil || !sec.Bool(EnabledKey) {
		return d.Default()
	}

	out := d.fresh(true)
	if base == nil {
		base = d.fresh(false)
	}

	for _, f := range d.fields {
		if f.IgnoredOnLoad() {
			continue
		}

		prev := f.Get(base)
		if f.LocalOnly(ctx) {
			f.Set(out, prev)
			continue
		}

		key := f.KeyName()
		if !sec.Has(key) {
			log.Debug("key not defined, using default", "key", key, "value", f.Get(out).String())
			continue
		}

		val, ok := read(sec, f, key, prev)
		if !ok {
			log.Warn("no accessor for field type, leaving untouched", "key", key, "kind", f.Kind)
			continue
		}
		if val != prev {
			log.Info("value updated", "key", key, "from", prev.String(), "to", val.String())
		}
		f.Set(out, val)
	}

	return out
}

func read[T any](sec *kvstore.Section, f registry.Field[T], key string, prev registry.Value) (registry.Value, bool) {
	switch f.Kind {
	case registry.KindFloat:
		return registry.FloatValue(sec.Float(key, prev.Float())), true
	case registry.KindInt:
		return registry.IntValue(sec.Int(key, prev.Int())), true
	case registry.KindBool:
		return registry.BoolValue(sec.Bool(key)), true
	case registry.KindString:
		return registry.StringValue(sec.String(key, prev.Text())), true
	case registry.KindEnum:
		if f.Enum == nil {
			return prev, false
		}
		return registry.EnumValue(f.Enum, sec.Enum(key, prev.Int(), f.Enum)), true
	case registry.KindFlags:
		if f.Enum == nil {
			return prev, false
		}
		return registry.EnumValue(f.Enum, sec.Flags(key, prev.Int(), f.Enum)), true
	case registry.KindKeyCode:
		return registry.KeyCodeValue(sec.KeyCode(key, prev.KeyCode())), true
	default:
		return prev, false
	}
}

// SerializeForServer returns "Name=value|" for every field in declaration
// order, or "" when v is disabled or the section does not sync.
func (d *Descriptor[T, P]) SerializeForServer(v *T) string {
	if v == nil {
		return ""
	}
	m := P(v).sectionMeta()
	if !m.enabled || !m.serverSync {
		return ""
	}

	var b strings.Builder
	for _, f := range d.fields {
		b.WriteString(f.Name)
		b.WriteByte('=')
		b.WriteString(f.Get(v).String())
		b.WriteByte('|')
	}
	return b.String()
}

// Encode writes v into store: the enabled key followed by every field
// that is loaded from documents.
func (d *Descriptor[T, P]) Encode(v *T, store *kvstore.Store) error {
	enabled := "false"
	if P(v).sectionMeta().enabled {
		enabled = "true"
	}
	if err := store.Set(d.name, EnabledKey, enabled); err != nil {
		return err
	}
	for _, f := range d.fields {
		if f.IgnoredOnLoad() {
			continue
		}
		text := f.Get(v).String()
		if f.Kind == registry.KindString {
			text = kvstore.Quote(text)
		}
		if err := store.Set(d.name, f.KeyName(), text); err != nil {
			return err
		}
	}
	return nil
}

// Export returns v's values keyed by document key, including enabled.
func (d *Descriptor[T, P]) Export(v *T) map[string]any {
	out := make(map[string]any, len(d.fields)+1)
	out[EnabledKey] = P(v).sectionMeta().enabled
	for _, f := range d.fields {
		out[f.KeyName()] = f.Get(v).Interface()
	}
	return out
}

// Equal reports whether a and b hold the same meta and field values.
func (d *Descriptor[T, P]) Equal(a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	if *P(a).sectionMeta() != *P(b).sectionMeta() {
		return false
	}
	for _, f := range d.fields {
		if f.Get(a) != f.Get(b) {
			return false
		}
	}
	return true
}
