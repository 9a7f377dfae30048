package session

import "sync"

// Value is an observable piece of session state. Subscribers are called
// synchronously, outside the lock, after every Set.
type Value[T any] struct {
	lock   sync.RWMutex
	value  T
	nextID int
	subs   map[int]func(T)
}

func (v *Value[T]) Get() T {
	v.lock.RLock()
	defer v.lock.RUnlock()
	return v.value
}

func (v *Value[T]) Set(value T) {
	v.lock.Lock()
	v.value = value
	subs := make([]func(T), 0, len(v.subs))
	for _, fn := range v.subs {
		subs = append(subs, fn)
	}
	v.lock.Unlock()

	for _, fn := range subs {
		fn(value)
	}
}

// Subscribe registers fn for future updates and returns a function that removes it.
func (v *Value[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	v.lock.Lock()
	defer v.lock.Unlock()
	if v.subs == nil {
		v.subs = make(map[int]func(T))
	}
	id := v.nextID
	v.nextID++
	v.subs[id] = fn

	return func() {
		v.lock.Lock()
		defer v.lock.Unlock()
		delete(v.subs, id)
	}
}
