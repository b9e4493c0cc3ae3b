// Package lock serialises booking admission per (table number, date).
//
// Without a Locker the overlap check and the insert run as independent store
// calls and two concurrent overlapping bookings can both be admitted. A
// Locker closes that window for every process sharing it.
package lock

import (
	"context"
	"fmt"
	"sync"
)

type Locker interface {
	// Lock blocks until key is held or ctx is done. The returned func
	// releases the key and is safe to call once.
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

func Key(tableNumber int, date string) string {
	return fmt.Sprintf("booking:table:%d:%s", tableNumber, date)
}

type entry struct {
	ch   chan struct{}
	refs int
}

type memory struct {
	mu   sync.Mutex
	keys map[string]*entry
}

// NewMemory returns a Locker that only serialises callers in this process.
func NewMemory() Locker {
	return &memory{keys: map[string]*entry{}}
}

func (m *memory) Lock(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	e, ok := m.keys[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		m.keys[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		m.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			m.release(key, e)
		})
	}, nil
}

func (m *memory) release(key string, e *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(m.keys, key)
	}
}
