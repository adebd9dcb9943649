// Package notify delivers configuration change events to subscribers.
//
// A change is published each time the active configuration is replaced.
// Observers subscribe to every change or to changes touching one section.
package notify

import (
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ChangeType identifies what replaced the active configuration.
type ChangeType int

const (
	// ChangeLoad is a load from the local file at startup.
	ChangeLoad ChangeType = iota

	// ChangeRemoteSync is a configuration received from a server.
	ChangeRemoteSync

	// ChangeReload is a reload after the local file changed.
	ChangeReload
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeLoad:
		return "load"
	case ChangeRemoteSync:
		return "remote-sync"
	case ChangeReload:
		return "reload"
	default:
		return "unknown"
	}
}

// Change describes one replacement of the active configuration.
type Change struct {
	// Type is the kind of replacement.
	Type ChangeType

	// Sections lists the sections whose values differ from the previous
	// configuration, in declaration order.
	Sections []string

	// Source identifies where the new configuration came from (a path or URL).
	Source string

	// Generation is the id of the new configuration.
	Generation uuid.UUID
}

// Touches reports whether the change affects section, ignoring case.
func (c Change) Touches(section string) bool {
	return slices.ContainsFunc(c.Sections, func(s string) bool {
		return strings.EqualFold(s, section)
	})
}

// Observer is called when the configuration changes.
type Observer func(change Change)

// Subscription represents an active observer subscription.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes this subscription.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

type entry struct {
	section  string
	observer Observer
}

// Notifier manages change subscriptions.
type Notifier struct {
	mu sync.RWMutex

	observers map[uint64]entry
	nextID    uint64

	async  bool
	buffer chan Change
	done   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithAsync enables asynchronous delivery through a buffer of bufferSize.
func WithAsync(bufferSize int) Option {
	return func(n *Notifier) {
		if bufferSize > 0 {
			n.async = true
			n.buffer = make(chan Change, bufferSize)
		}
	}
}

// New creates a new Notifier.
func New(opts ...Option) *Notifier {
	n := &Notifier{
		observers: make(map[uint64]entry),
		done:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(n)
	}

	if n.async {
		n.wg.Add(1)
		go n.processAsync()
	}

	return n
}

// Subscribe registers an observer for all changes.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	return n.add(entry{observer: observer})
}

// SubscribeSection registers an observer called only for changes that
// touch section.
func (n *Notifier) SubscribeSection(section string, observer Observer) *Subscription {
	return n.add(entry{section: section, observer: observer})
}

func (n *Notifier) add(e entry) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.observers[id] = e

	return &Subscription{id: id, notifier: n}
}

// Notify publishes change. It is a no-op after Close.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()
	if n.closed {
		n.mu.RUnlock()
		return
	}
	n.mu.RUnlock()

	if n.async {
		select {
		case n.buffer <- change:
		case <-n.done:
		}
		return
	}

	n.deliver(change)
}

// Close shuts down the notifier, delivering buffered changes first.
// It is safe to call Close multiple times.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.mu.Unlock()

	close(n.done)
	n.wg.Wait()
}

// Len returns the number of active subscriptions.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.observers)
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.observers, id)
}

func (n *Notifier) deliver(change Change) {
	n.mu.RLock()
	ids := make([]uint64, 0, len(n.observers))
	for id, e := range n.observers {
		if e.section == "" || change.Touches(e.section) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	observers := make([]Observer, len(ids))
	for i, id := range ids {
		observers[i] = n.observers[id].observer
	}
	n.mu.RUnlock()

	// Observers run outside the lock so they may subscribe or unsubscribe.
	for _, obs := range observers {
		obs(change)
	}
}

func (n *Notifier) processAsync() {
	defer n.wg.Done()

	for {
		select {
		case change := <-n.buffer:
			n.deliver(change)
		case <-n.done:
			for {
				select {
				case change := <-n.buffer:
					n.deliver(change)
				default:
					return
				}
			}
		}
	}
}
