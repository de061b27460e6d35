// SPDX-License-Identifier: MPL-2.0

package locator

import "sync"

const (
	// EventDetectionInvalidated fires after the detection cache was cleared.
	EventDetectionInvalidated EventKind = iota + 1
	// EventExecutableDetected fires after a lookup ran at least one probe.
	EventExecutableDetected
	// EventVersionCacheDropped fires after version results were dropped.
	EventVersionCacheDropped
	// EventSettingsChanged fires after the manager received new settings.
	EventSettingsChanged
)

type (
	// EventKind discriminates events.
	EventKind int

	// Event is delivered to subscribers. Listeners run on the goroutine that
	// triggered the event, after every lock was released.
	Event struct {
		Kind EventKind
	}

	listener struct {
		id int
		fn func(Event)
	}

	// listenerSet is a copy-on-emit observer list.
	listenerSet struct {
		mu        sync.Mutex
		nextID    int
		listeners []listener
	}
)

// String returns the event name.
func (k EventKind) String() string {
	switch k {
	case EventDetectionInvalidated:
		return "detection-invalidated"
	case EventExecutableDetected:
		return "executable-detected"
	case EventVersionCacheDropped:
		return "version-cache-dropped"
	case EventSettingsChanged:
		return "settings-changed"
	default:
		return "unknown"
	}
}

// subscribe registers fn and returns a function removing it.
func (s *listenerSet) subscribe(fn func(Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, l := range s.listeners {
				if l.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *listenerSet) emit(kind EventKind) {
	s.mu.Lock()
	snapshot := make([]listener, len(s.listeners))
	copy(snapshot, s.listeners)
	s.mu.Unlock()

	ev := Event{Kind: kind}
	for _, l := range snapshot {
		l.fn(ev)
	}
}
