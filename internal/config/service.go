package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/modsync/internal/config/loader"
	"github.com/dshills/modsync/internal/config/notify"
	"github.com/dshills/modsync/internal/config/watcher"
	"github.com/dshills/modsync/internal/metric"
)

// ErrServiceClosed is returned when operations are attempted on a closed
// Service.
var ErrServiceClosed = errors.New("config service is closed")

// Service owns the current configuration.
//
// Thread Safety:
// Service is safe for concurrent use. Loads are serialized; readers call
// Current without locking and see either the previous or the next
// configuration, never a partially built one.
type Service struct {
	// writeMu serializes everything that replaces the current configuration.
	writeMu sync.Mutex
	current atomic.Pointer[Configuration]
	closed  atomic.Bool

	path     string
	fs       loader.FileSystem
	template loader.Fetcher
	log      *slog.Logger
	metrics  *metric.Metrics
	notifier *notify.Notifier
	debounce time.Duration

	watchMu sync.Mutex
	watcher *watcher.Watcher

	// Timing and health, protected by statMu.
	statMu       sync.RWMutex
	loaded       bool
	loadTime     time.Duration
	lastReloadAt time.Time
	lastErr      error
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithFileSystem sets the file system used for the local document.
func WithFileSystem(fsys loader.FileSystem) ServiceOption {
	return func(s *Service) {
		if fsys != nil {
			s.fs = fsys
		}
	}
}

// WithTemplate sets the source of the upstream template document.
func WithTemplate(f loader.Fetcher) ServiceOption {
	return func(s *Service) {
		s.template = f
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metric.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithNotifier sets the change notifier. The service closes it on Close.
func WithNotifier(n *notify.Notifier) ServiceOption {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithWatchDebounce sets the quiet period used by Watch.
func WithWatchDebounce(d time.Duration) ServiceOption {
	return func(s *Service) {
		s.debounce = d
	}
}

// NewService creates a service for the document at path. Until the first
// load, Current returns Default.
func NewService(path string, opts ...ServiceOption) *Service {
	s := &Service{
		path:     path,
		fs:       loader.DefaultFS(),
		log:      slog.Default(),
		debounce: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = notify.New()
	}
	s.log = s.log.With("component", "config")
	s.current.Store(Default())
	return s
}

// Path returns the local document path.
func (s *Service) Path() string { return s.path }

// Current returns the current configuration. It never returns nil.
func (s *Service) Current() *Configuration {
	return s.current.Load()
}

// Fingerprint returns the fingerprint of the current configuration.
func (s *Service) Fingerprint() string {
	return Fingerprint(s.Current())
}

// LoadSettings loads the local document, then merges it with the upstream
// template when one is configured. A missing document is replaced by the
// template. It fails only when no configuration could be obtained; a
// panic during loading is logged and reported as an error.
func (s *Service) LoadSettings(ctx context.Context) (err error) {
	if s.closed.Load() {
		return ErrServiceClosed
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("could not load config file", "panic", r)
			err = fmt.Errorf("loading settings: panic: %v", r)
		}
		s.setStatus(err)
	}()

	if loader.Exists(s.fs, s.path) {
		s.log.Info("found config file", "path", s.path)
		cfg, err := s.loadLocal()
		if err != nil {
			return err
		}
		s.publish(cfg, notify.ChangeLoad, s.path)
		s.autoUpdate(ctx, cfg)
		return nil
	}

	s.log.Warn("configuration not found, trying to download template", "path", s.path)
	if s.template == nil {
		return fmt.Errorf("%w: %s missing: %w", ErrConfigUnavailable, s.path, ErrNoSource)
	}

	data, err := s.template.Fetch(ctx)
	if err != nil {
		s.log.Error("unable to download template", "template", loader.Describe(s.template), "error", err)
		return fmt.Errorf("%w: %w", ErrConfigUnavailable, err)
	}
	if err := s.fs.WriteFile(s.path, data); err != nil {
		return fmt.Errorf("%w: writing %s: %w", ErrConfigUnavailable, s.path, err)
	}
	s.log.Info("default configuration downloaded", "path", s.path)

	cfg, err := s.loadLocal()
	if err != nil {
		return err
	}
	s.publish(cfg, notify.ChangeLoad, s.path)
	return nil
}

func (s *Service) autoUpdate(ctx context.Context, cfg *Configuration) {
	if s.template == nil {
		return
	}
	updated, err := AutoUpdate(ctx, s.fs, s.path, cfg, s.template, s.log)
	if err != nil {
		s.log.Warn("unable to update config file from template", "error", err)
		s.metrics.RecordAutoUpdate(err)
		return
	}
	if updated {
		s.metrics.RecordAutoUpdate(nil)
	}
}

// loadLocal reads and populates the local document. Callers hold writeMu.
func (s *Service) loadLocal() (*Configuration, error) {
	start := time.Now()
	cfg, err := loadFromFS(s.fs, s.path, s.Current(), s.log)
	elapsed := time.Since(start)
	s.metrics.RecordLoad("file", err, elapsed)

	if err == nil {
		s.statMu.Lock()
		s.loadTime = elapsed
		s.statMu.Unlock()
	}
	return cfg, err
}

// ApplyRemote applies a document received from a server. It returns the
// configuration that is current afterwards; when the server does not sync
// its configuration that is the unchanged previous one.
func (s *Service) ApplyRemote(data []byte, source string) (*Configuration, error) {
	if s.closed.Load() {
		return nil, ErrServiceClosed
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	start := time.Now()
	prev := s.Current()
	cfg, err := LoadFromRemote(data, prev, s.log.With("source", source))
	s.metrics.RecordLoad("remote", err, time.Since(start))
	if err != nil {
		s.metrics.RecordRemoteSync("failed")
		s.log.Warn("could not apply remote configuration", "source", source, "error", err)
		return prev, err
	}
	if cfg == prev {
		s.metrics.RecordRemoteSync("ignored")
		return prev, nil
	}

	s.metrics.RecordRemoteSync("applied")
	s.publish(cfg, notify.ChangeRemoteSync, source)
	s.setStatus(nil)
	return cfg, nil
}

// SyncFrom fetches a server document from f and applies it. On a fetch
// failure the current configuration is kept and the error returned.
func (s *Service) SyncFrom(ctx context.Context, f loader.Fetcher) (*Configuration, error) {
	data, err := f.Fetch(ctx)
	if err != nil {
		s.metrics.RecordRemoteSync("failed")
		s.log.Warn("unable to fetch remote configuration, keeping local settings", "source", loader.Describe(f), "error", err)
		return s.Current(), fmt.Errorf("fetching remote configuration: %w", err)
	}
	return s.ApplyRemote(data, loader.Describe(f))
}

// Reload repopulates the configuration from the local document. It does
// nothing while a server's configuration is active.
func (s *Service) Reload(_ context.Context) error {
	if s.closed.Load() {
		return ErrServiceClosed
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.Current().Remote {
		s.log.Info("ignoring local config change while synced to a server", "path", s.path)
		return nil
	}

	cfg, err := s.loadLocal()
	if err != nil {
		s.log.Warn("reload failed, keeping previous configuration", "path", s.path, "error", err)
		s.setStatus(err)
		return fmt.Errorf("reloading configuration: %w", err)
	}
	s.publish(cfg, notify.ChangeReload, s.path)
	s.setStatus(nil)
	return nil
}

// Handshake compares a peer's fingerprint with the local one. A mismatch
// returns a *MismatchError matching ErrFingerprintMismatch; what to do
// about it is up to the caller.
func (s *Service) Handshake(peer string) error {
	local := s.Fingerprint()
	match := strings.EqualFold(strings.TrimSpace(peer), local)
	s.metrics.RecordFingerprintCheck(match)
	if match {
		return nil
	}
	s.log.Warn("configuration fingerprint mismatch", "local", local, "peer", peer)
	return &MismatchError{Local: local, Peer: peer}
}

// publish swaps in cfg and notifies observers. Callers hold writeMu.
func (s *Service) publish(cfg *Configuration, typ notify.ChangeType, source string) {
	prev := s.current.Swap(cfg)
	s.metrics.RecordPublish()

	s.statMu.Lock()
	s.loaded = true
	s.lastReloadAt = time.Now()
	s.statMu.Unlock()

	changed := ChangedSections(prev, cfg)
	s.log.Info("configuration published",
		"change", typ.String(),
		"source", source,
		"generation", cfg.Generation,
		"changed", changed,
	)
	s.notifier.Notify(notify.Change{
		Type:       typ,
		Sections:   changed,
		Source:     source,
		Generation: cfg.Generation,
	})
}

func (s *Service) setStatus(err error) {
	s.statMu.Lock()
	s.lastErr = err
	s.statMu.Unlock()
}

// Subscribe registers an observer for all configuration changes.
// Unless the notifier is asynchronous, observers run while the change is
// published and must not load or reload the service.
// Returns nil if the service has been closed.
func (s *Service) Subscribe(observer notify.Observer) *notify.Subscription {
	if s.closed.Load() {
		return nil
	}
	return s.notifier.Subscribe(observer)
}

// SubscribeSection registers an observer for changes to one section.
// Returns nil if the service has been closed.
func (s *Service) SubscribeSection(name string, observer notify.Observer) *notify.Subscription {
	if s.closed.Load() {
		return nil
	}
	return s.notifier.SubscribeSection(name, observer)
}

// Watch reloads the configuration whenever the local document changes.
func (s *Service) Watch() error {
	if s.closed.Load() {
		return ErrServiceClosed
	}

	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	if s.watcher != nil {
		return nil
	}

	w := watcher.New(watcher.WithDebounce(s.debounce), watcher.WithLogger(s.log))
	if err := w.Watch(s.path); err != nil {
		return fmt.Errorf("watching %s: %w", s.path, err)
	}
	w.OnChange(s.handleFileChange)
	if err := w.Start(); err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	s.watcher = w
	return nil
}

func (s *Service) handleFileChange(event watcher.Event) {
	if event.Op == watcher.OpRemove || event.Op == watcher.OpRename {
		s.log.Warn("config file removed, keeping current configuration", "path", event.Path)
		return
	}
	if err := s.Reload(context.Background()); err != nil && !errors.Is(err, ErrServiceClosed) {
		s.log.Warn("config reload after file change failed", "path", event.Path, "error", err)
	}
}

// Close stops watching and shuts down change notification.
// It is safe to call Close multiple times.
func (s *Service) Close() {
	if s.closed.Swap(true) {
		return
	}

	s.watchMu.Lock()
	w := s.watcher
	s.watcher = nil
	s.watchMu.Unlock()
	if w != nil {
		w.Stop()
	}
	s.notifier.Close()
}

// LoadTime returns the duration of the last local load.
func (s *Service) LoadTime() time.Duration {
	s.statMu.RLock()
	defer s.statMu.RUnlock()
	return s.loadTime
}

// LastReloadAt returns the time the current configuration was published.
func (s *Service) LastReloadAt() time.Time {
	s.statMu.RLock()
	defer s.statMu.RUnlock()
	return s.lastReloadAt
}

// Health returns the health status of the service.
func (s *Service) Health() Health {
	s.statMu.RLock()
	loaded := s.loaded
	lastErr := s.lastErr
	loadTime := s.loadTime
	lastReloadAt := s.lastReloadAt
	s.statMu.RUnlock()

	cfg := s.Current()
	status := HealthOK
	switch {
	case !loaded:
		status = HealthUnhealthy
	case lastErr != nil:
		status = HealthDegraded
	}

	return Health{
		Status:       status,
		LoadTime:     loadTime,
		LastReloadAt: lastReloadAt,
		LastError:    lastErr,
		Generation:   cfg.Generation.String(),
		Fingerprint:  Fingerprint(cfg),
		Remote:       cfg.Remote,
		Enabled:      EnabledSections(cfg),
	}
}

// Health represents the health status of the configuration service.
type Health struct {
	// Status is the overall health status.
	Status HealthStatus

	// LoadTime is the duration of the last local load.
	LoadTime time.Duration

	// LastReloadAt is the time the current configuration was published.
	LastReloadAt time.Time

	// LastError is the error of the last failed operation, if the
	// service has not recovered since.
	LastError error

	Generation  string
	Fingerprint string
	Remote      bool
	Enabled     []string
}

// HealthStatus represents the health status of a component.
type HealthStatus int

const (
	// HealthOK indicates a configuration is loaded.
	HealthOK HealthStatus = iota
	// HealthDegraded indicates the last load or reload failed and an
	// older configuration is still in use.
	HealthDegraded
	// HealthUnhealthy indicates no configuration was ever loaded.
	HealthUnhealthy
)

// String returns a human-readable status string.
func (s HealthStatus) String() string {
	switch s {
	case HealthOK:
		return "ok"
	case HealthDegraded:
		return "degraded"
	case HealthUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}
