package yetichat

import (
	"sync"
)

// Listener receives every published AuthState
type Listener func(state AuthState)

type subscription struct {
	id uint64
	fn Listener
}

// statePublisher keeps listeners in registration order and dispatches
// synchronously on the publishing goroutine.
type statePublisher struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscription
	logger Logger
}

func newStatePublisher(logger Logger) *statePublisher {
	return &statePublisher{logger: normalizeLogger(logger)}
}

func (p *statePublisher) subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}

	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.subs = append(p.subs, subscription{id: id, fn: fn})
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { p.remove(id) })
	}
}

func (p *statePublisher) remove(id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, s := range p.subs {
		if s.id == id {
			// copy on removal so in-flight snapshots stay intact
			next := make([]subscription, 0, len(p.subs)-1)
			next = append(next, p.subs[:i]...)
			next = append(next, p.subs[i+1:]...)
			p.subs = next
			return
		}
	}
}

func (p *statePublisher) publish(state AuthState) {
	p.mu.Lock()
	snapshot := p.subs
	p.mu.Unlock()

	for _, s := range snapshot {
		if !p.active(s.id) {
			continue
		}
		p.dispatch(s, state.clone())
	}
}

func (p *statePublisher) active(id uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.subs {
		if s.id == id {
			return true
		}
	}
	return false
}

func (p *statePublisher) dispatch(s subscription, state AuthState) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("auth state listener %d failed: %v", s.id, r)
		}
	}()
	s.fn(state)
}
