package live

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"sitedata/notify"
	"sitedata/store"
)

// DefaultInterval is the fallback refresh period bounding staleness when
// no change announcement arrives.
const DefaultInterval = 5 * time.Minute

type DataFunc func(data json.RawMessage)
type ErrorFunc func(err error)

// Manager hands out live views of named documents: an initial load, a
// reload on every announcement for the document, and an unconditional
// reload on a fallback ticker.
type Manager struct {
	Notifier *notify.Notifier
	Interval time.Duration

	load func(ctx context.Context, name string) (json.RawMessage, error)
}

func NewManager(client *store.Client, notifier *notify.Notifier) *Manager {
	return &Manager{
		Notifier: notifier,
		Interval: DefaultInterval,
		load: func(ctx context.Context, name string) (json.RawMessage, error) {
			return client.Get(ctx, name), nil
		},
	}
}

// Subscribe starts a live view of name and returns its cancel function.
// The first load happens asynchronously; Subscribe itself returns
// immediately. onError may be nil. Cancel is idempotent; once it returns
// no further callback fires, even for a reload already in flight. It
// waits for a callback that is already running, so it must not be called
// from inside onData or onError.
func (m *Manager) Subscribe(name string, onData DataFunc, onError ErrorFunc) (cancel func()) {
	interval := m.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	// mu covers the active check together with the callback it guards,
	// so cancelling cannot race a delivery.
	var mu sync.Mutex
	active := true
	done := make(chan struct{})

	events, unsubscribe := m.Notifier.Subscribe()

	reload := func() {
		data, err := m.load(context.Background(), name)
		mu.Lock()
		defer mu.Unlock()
		if !active {
			return
		}
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onData(data)
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		reload()

		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				if ev.Name == name {
					reload()
				}
			case <-ticker.C:
				reload()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			mu.Lock()
			active = false
			mu.Unlock()
			close(done)
			unsubscribe()
		})
	}
}
