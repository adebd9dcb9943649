package config

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"lukechampine.com/blake3"

	"github.com/dshills/modsync/internal/config/kvstore"
	"github.com/dshills/modsync/internal/config/loader"
	"github.com/dshills/modsync/internal/config/registry"
	"github.com/dshills/modsync/internal/config/section"
)

// Configuration is one immutable snapshot of every section. Section
// pointers are never nil in a Configuration returned by this package.
type Configuration struct {
	General    *GeneralConfig
	Server     *ServerConfig
	Items      *ItemsConfig
	AutoStack  *AutoStackConfig
	Durability *DurabilityConfig
	Armor      *ArmorConfig
	Shields    *ShieldsConfig
	Player     *PlayerConfig
	Hotkeys    *HotkeysConfig

	// Generation identifies the load that produced the snapshot.
	// It is the zero UUID for Default.
	Generation uuid.UUID

	// Remote is set when the snapshot came from a server's document.
	Remote bool
}

// binding connects a section descriptor to its Configuration field.
type binding struct {
	name       string
	serverSync bool
	comment    string

	populate  func(dst *Configuration, store *kvstore.Store, current *Configuration, ctx registry.SyncContext, log *slog.Logger)
	setDef    func(dst *Configuration)
	serialize func(cfg *Configuration) string
	encode    func(cfg *Configuration, store *kvstore.Store) error
	export    func(cfg *Configuration) map[string]any
	equal     func(a, b *Configuration) bool
	enabled   func(cfg *Configuration) bool
}

func (b binding) Name() string { return b.name }

func bind[T any, P section.Pointer[T]](d *section.Descriptor[T, P], comment string, ref func(*Configuration) **T) binding {
	get := func(cfg *Configuration) *T {
		if cfg == nil {
			return nil
		}
		return *ref(cfg)
	}
	return binding{
		name:       d.Name(),
		serverSync: d.NeedsServerSync(),
		comment:    comment,
		populate: func(dst *Configuration, store *kvstore.Store, current *Configuration, ctx registry.SyncContext, log *slog.Logger) {
			*ref(dst) = d.Populate(store, get(current), ctx, log)
		},
		setDef:    func(dst *Configuration) { *ref(dst) = d.Default() },
		serialize: func(cfg *Configuration) string { return d.SerializeForServer(get(cfg)) },
		encode: func(cfg *Configuration, store *kvstore.Store) error {
			return d.Encode(orDefault(d, get(cfg)), store)
		},
		export:  func(cfg *Configuration) map[string]any { return d.Export(orDefault(d, get(cfg))) },
		equal:   func(a, b *Configuration) bool { return d.Equal(get(a), get(b)) },
		enabled: func(cfg *Configuration) bool { return d.IsEnabled(get(cfg)) },
	}
}

func orDefault[T any, P section.Pointer[T]](d *section.Descriptor[T, P], v *T) *T {
	if v == nil {
		return d.Default()
	}
	return v
}

// sections holds every known section in declaration order. The order is
// the fingerprint order and must not change between releases.
var sections = registry.New[binding]()

func init() {
	sections.MustRegister(bind(GeneralSection, "General settings of the configuration file", func(c *Configuration) **GeneralConfig { return &c.General }))
	sections.MustRegister(bind(ServerSection, "Server settings, shared with every client when serverSyncsConfig is enabled", func(c *Configuration) **ServerConfig { return &c.Server }))
	sections.MustRegister(bind(ItemsSection, "Item weight, stack size and drop duration modifiers in percent", func(c *Configuration) **ItemsConfig { return &c.Items }))
	sections.MustRegister(bind(AutoStackSection, "Stacking items into nearby containers", func(c *Configuration) **AutoStackConfig { return &c.AutoStack }))
	sections.MustRegister(bind(DurabilitySection, "Maximum durability modifiers in percent", func(c *Configuration) **DurabilityConfig { return &c.Durability }))
	sections.MustRegister(bind(ArmorSection, "Armor modifiers in percent", func(c *Configuration) **ArmorConfig { return &c.Armor }))
	sections.MustRegister(bind(ShieldsSection, "Shield block rating modifier in percent", func(c *Configuration) **ShieldsConfig { return &c.Shields }))
	sections.MustRegister(bind(PlayerSection, "Player carry weight and damage settings", func(c *Configuration) **PlayerConfig { return &c.Player }))
	sections.MustRegister(bind(HotkeysSection, "Keybindings, kept local unless the server syncs hotkeys", func(c *Configuration) **HotkeysConfig { return &c.Hotkeys }))
}

// SectionNames returns the known section names in declaration order.
func SectionNames() []string {
	return sections.Names()
}

// IsSyncSection reports whether the named section must match between
// peers. Unknown names report false.
func IsSyncSection(name string) bool {
	b, ok := sections.Get(name)
	return ok && b.serverSync
}

// Default returns a configuration with every section disabled and at its
// default values.
func Default() *Configuration {
	cfg := &Configuration{}
	for _, b := range sections.All() {
		b.setDef(cfg)
	}
	return cfg
}

// LoadFromStore populates every section from store. Sections are populated
// in case-insensitive sorted order; current supplies the previous value of
// every field and may be nil.
func LoadFromStore(store *kvstore.Store, current *Configuration, ctx registry.SyncContext, log *slog.Logger) *Configuration {
	if log == nil {
		log = slog.Default()
	}

	cfg := &Configuration{
		Generation: uuid.New(),
		Remote:     ctx.Remote,
	}
	for _, b := range sections.Sorted() {
		b.populate(cfg, store, current, ctx, log)
		if b.enabled(cfg) {
			log.Debug("section enabled", "section", b.name)
		} else {
			log.Debug("section not enabled", "section", b.name)
		}
	}
	return cfg
}

// LoadFromBytes parses a local document and populates a configuration.
func LoadFromBytes(data []byte, source string, current *Configuration, log *slog.Logger) (*Configuration, error) {
	store, err := kvstore.Parse(data, log)
	if err != nil {
		return nil, &ParseError{Path: source, Err: err}
	}
	return LoadFromStore(store, current, registry.SyncContext{}, log), nil
}

// LoadFromFile reads and populates the local document at path.
func LoadFromFile(path string, current *Configuration, log *slog.Logger) (*Configuration, error) {
	return loadFromFS(loader.DefaultFS(), path, current, log)
}

func loadFromFS(fsys loader.FileSystem, path string, current *Configuration, log *slog.Logger) (*Configuration, error) {
	data, err := loader.ReadDocument(fsys, path)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	return LoadFromBytes(data, path, current, log)
}

// LoadFromRemote applies a document received from a server.
//
// When the document's [Server] serverSyncsConfig is not truthy, the remote
// data is ignored and current is returned as is. Otherwise every section is
// repopulated in the remote sync context. Whether keybindings may be
// overwritten is decided by current's ServerSyncHotkeys before any section
// is populated. A nil current is treated as Default.
func LoadFromRemote(data []byte, current *Configuration, log *slog.Logger) (*Configuration, error) {
	if log == nil {
		log = slog.Default()
	}
	if current == nil {
		current = Default()
	}

	store, err := kvstore.Parse(data, log)
	if err != nil {
		return nil, &ParseError{Path: "remote", Err: err}
	}

	syncsConfig := false
	if sec := store.Section(SectionServer); sec != nil {
		syncsConfig = sec.Bool("serverSyncsConfig")
	}
	log.Info("remote configuration received", "serverSyncsConfig", syncsConfig)
	if !syncsConfig {
		return current, nil
	}

	ctx := registry.SyncContext{
		Remote:      true,
		SyncHotkeys: current.Server.ServerSyncHotkeys,
	}
	log.Info("applying remote configuration", "serverSyncHotkeys", ctx.SyncHotkeys)

	return LoadFromStore(store, current, ctx, log), nil
}

// Serialize returns the concatenated server serialization of every section
// in declaration order. Disabled and non-sync sections contribute nothing.
func Serialize(cfg *Configuration) string {
	var b strings.Builder
	for _, s := range sections.All() {
		b.WriteString(s.serialize(cfg))
	}
	return b.String()
}

// Fingerprint returns the lower-case hex BLAKE3-256 digest of Serialize.
func Fingerprint(cfg *Configuration) string {
	sum := blake3.Sum256([]byte(Serialize(cfg)))
	return hex.EncodeToString(sum[:])
}

// Encode writes every section of cfg into a new document in declaration
// order.
func Encode(cfg *Configuration) (*kvstore.Store, error) {
	store := kvstore.Empty(nil)
	for _, b := range sections.All() {
		if err := b.encode(cfg, store); err != nil {
			return nil, fmt.Errorf("encode section %s: %w", b.name, err)
		}
	}
	return store, nil
}

// Template returns the default document: every section disabled, at its
// defaults, with a comment describing it.
func Template() (*kvstore.Store, error) {
	store, err := Encode(Default())
	if err != nil {
		return nil, err
	}
	for _, b := range sections.All() {
		if err := store.SetComment(b.name, "; "+b.comment); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// Export returns the typed values of cfg keyed by section name and then
// by document key.
func Export(cfg *Configuration) map[string]map[string]any {
	out := make(map[string]map[string]any, sections.Len())
	for _, b := range sections.All() {
		out[b.name] = b.export(cfg)
	}
	return out
}

// Equal reports whether a and b hold the same section values. Generation
// and Remote are not compared.
func Equal(a, b *Configuration) bool {
	return len(ChangedSections(a, b)) == 0
}

// ChangedSections returns the names of the sections that differ between
// prev and next in declaration order. A nil prev reports every section.
func ChangedSections(prev, next *Configuration) []string {
	if prev == nil && next == nil {
		return nil
	}
	var changed []string
	for _, b := range sections.All() {
		if prev == nil || next == nil || !b.equal(prev, next) {
			changed = append(changed, b.name)
		}
	}
	return changed
}

// EnabledSections returns the names of the enabled sections of cfg in
// declaration order.
func EnabledSections(cfg *Configuration) []string {
	var names []string
	for _, b := range sections.All() {
		if b.enabled(cfg) {
			names = append(names, b.name)
		}
	}
	return names
}
