package client

import (
	"sort"
	"sync"
)

// Registration is the handle returned when a listener is added. Release is
// idempotent.
type Registration struct {
	once    sync.Once
	release func()
}

func (r *Registration) Release() {
	r.once.Do(r.release)
}

// Listeners holds the frame consumers of a loop.
type Listeners struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(Frame)
}

func (l *Listeners) Add(fn func(Frame)) *Registration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func(Frame))
	}
	id := l.next
	l.next++
	l.fns[id] = fn
	return &Registration{release: func() {
		l.mu.Lock()
		delete(l.fns, id)
		l.mu.Unlock()
	}}
}

func (l *Listeners) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fns)
}

// Emit calls every listener in registration order.
func (l *Listeners) Emit(f Frame) {
	l.mu.Lock()
	ids := make([]int, 0, len(l.fns))
	for id := range l.fns {
		ids = append(ids, id)
	}
	fns := make([]func(Frame), 0, len(ids))
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, l.fns[id])
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(f)
	}
}

// ReleaseAll drops every listener, including ones whose registrations were never released.
func (l *Listeners) ReleaseAll() {
	l.mu.Lock()
	l.fns = nil
	l.mu.Unlock()
}
