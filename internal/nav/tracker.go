// Package nav tracks which page section is in view and drives navigation
// highlighting.
package nav

import (
	"sync"
)

// Lookahead marks a section active slightly before it reaches the top of the
// viewport.
const Lookahead = 100

// Tracker holds the active section for one page.
type Tracker struct {
	mu        sync.RWMutex
	viewport  Viewport
	sections  []SectionID
	active    SectionID
	seed      SectionID
	listeners []func(SectionID)
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithSections replaces the default section order. Empty lists are ignored.
func WithSections(ids ...SectionID) Option {
	return func(t *Tracker) {
		if len(ids) > 0 {
			t.sections = append([]SectionID(nil), ids...)
		}
	}
}

// WithActive seeds the active section, e.g. from the previous request. Ids
// outside the section set are ignored.
func WithActive(id SectionID) Option {
	return func(t *Tracker) {
		t.seed = id
	}
}

// WithListener is called with the new active section whenever it changes.
func WithListener(fn func(SectionID)) Option {
	return func(t *Tracker) {
		t.listeners = append(t.listeners, fn)
	}
}

// NewTracker returns a tracker over vp with the first section active.
func NewTracker(vp Viewport, opts ...Option) *Tracker {
	t := &Tracker{viewport: vp, sections: Sections}
	for _, opt := range opts {
		opt(t)
	}
	t.active = t.sections[0]
	if t.seed != "" && t.has(t.seed) {
		t.active = t.seed
	}
	return t
}

func (t *Tracker) has(id SectionID) bool {
	for _, s := range t.sections {
		if s == id {
			return true
		}
	}
	return false
}

// Active returns the current active section.
func (t *Tracker) Active() SectionID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active
}

// OnScroll recomputes the active section from the viewport. The first section
// in declared order whose region contains offset+Lookahead wins; with no match
// the active section is left alone.
func (t *Tracker) OnScroll() (SectionID, bool) {
	probe := t.viewport.ScrollOffset() + Lookahead

	t.mu.Lock()
	next := t.active
	for _, id := range t.sections {
		if r, ok := t.viewport.Region(id); ok && r.Contains(probe) {
			next = id
			break
		}
	}
	changed := next != t.active
	t.active = next
	listeners := t.listeners
	t.mu.Unlock()

	if changed {
		for _, fn := range listeners {
			fn(next)
		}
	}
	return next, changed
}

// ScrollToSection asks the viewport to bring id into view. Unknown or
// unrendered sections are ignored.
func (t *Tracker) ScrollToSection(id SectionID) {
	if !t.has(id) {
		return
	}
	if _, ok := t.viewport.Region(id); !ok {
		return
	}
	t.viewport.ScrollIntoView(id)
}

// Subscribe runs OnScroll for every event until the returned func is called
// or events is closed. Once unsubscribe returns, the handler never runs again.
func (t *Tracker) Subscribe(events <-chan struct{}) (unsubscribe func()) {
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				select {
				case <-stop:
					return
				default:
				}
				t.OnScroll()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(stop) })
		<-done
	}
}
