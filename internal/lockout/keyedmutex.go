package lockout

import (
	"context"
	"sync"
)

// keyedMutex hands out one lock per key. Entries are reference counted and
// dropped once nobody holds or waits for them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	slot chan struct{}
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyLock)}
}

// lock blocks until key is free or ctx is done. The returned func releases
// the lock and must be called exactly once.
func (k *keyedMutex) lock(ctx context.Context, key string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k.mu.Lock()
	kl, ok := k.locks[key]
	if !ok {
		kl = &keyLock{slot: make(chan struct{}, 1)}
		k.locks[key] = kl
	}
	kl.refs++
	k.mu.Unlock()

	select {
	case kl.slot <- struct{}{}:
		return func() {
			<-kl.slot
			k.release(key, kl)
		}, nil
	case <-ctx.Done():
		k.release(key, kl)
		return nil, ctx.Err()
	}
}

func (k *keyedMutex) release(key string, kl *keyLock) {
	k.mu.Lock()
	defer k.mu.Unlock()

	kl.refs--
	if kl.refs == 0 {
		delete(k.locks, key)
	}
}

func (k *keyedMutex) len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
