// Package config is the typed configuration engine.
//
// A configuration document is an INI file with one section per feature
// area. Every section is gated by an enabled key; a section that is
// missing or not enabled keeps its defaults and is reported as disabled.
//
// # Sections
//
// Each section is a plain struct embedding section.Meta, described by a
// section.Descriptor holding its ordered field list:
//
//	[Items]
//	enabled=true
//	baseItemWeightReduction=20
//	itemStackMultiplier=50
//
// The field order fixes the server serialization, and through it the
// fingerprint, so it never depends on map iteration or reflection.
//
// # Loading
//
// LoadFromFile populates every section from a local document. Sections are
// populated in case-insensitive sorted order. A malformed value logs a
// warning and keeps the previous value; nothing in a document aborts a
// load.
//
// LoadFromRemote applies a document pushed by a server. When the server
// does not sync its configuration the current configuration is returned
// unchanged. Otherwise every section is repopulated with the remote sync
// context: fields marked local-only, and keybindings unless the server
// syncs hotkeys, keep the values of the current configuration.
//
// # Fingerprints
//
//	fp := config.Fingerprint(cfg)
//	if err := svc.Handshake(peerFingerprint); err != nil {
//	    // errors.Is(err, config.ErrFingerprintMismatch)
//	}
//
// The fingerprint hashes the server serialization of every enabled sync
// section. Local-only sections such as Hotkeys never contribute.
//
// # Service
//
// Service owns the current configuration behind an atomic pointer.
// Readers call Current and always see a fully built Configuration; every
// load builds a new one and swaps it in.
//
//	svc := config.NewService(path,
//	    config.WithTemplate(loader.NewHTTPFetcher(url)),
//	    config.WithLogger(log),
//	)
//	if err := svc.LoadSettings(ctx); err != nil {
//	    return err
//	}
//	cfg := svc.Current()
//
// # Sub-packages
//
//   - kvstore: INI document access with fail-soft typed getters
//   - registry: field model, load policies and the named registry
//   - section: section descriptors (populate, serialize, encode)
//   - keycode: the key code table used by keybinding fields
//   - loader: file and HTTP byte sources, atomic writes
//   - watcher: file watching for live reload
//   - notify: change notification and observer pattern
package config
