package memstore

import (
	"context"
	"sync"
)

// Bus is an in-process stand-in for the redis PubSub. Delivery is
// best-effort: a subscriber whose buffer is full misses the signal.
type Bus struct {
	mu   sync.Mutex
	subs map[string]map[chan []byte]struct{}
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[chan []byte]struct{})}
}

func (b *Bus) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[channel] {
		select {
		case ch <- payload:
		default:
		}
	}
	return nil
}

// Subscribe mirrors PubSub.Subscribe: the returned channel closes after
// cleanup is called or ctx is done.
func (b *Bus) Subscribe(ctx context.Context, channels ...string) (<-chan []byte, func(), error) {
	ch := make(chan []byte, 64)

	b.mu.Lock()
	for _, name := range channels {
		if b.subs[name] == nil {
			b.subs[name] = make(map[chan []byte]struct{})
		}
		b.subs[name][ch] = struct{}{}
	}
	b.mu.Unlock()

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			b.mu.Lock()
			for _, name := range channels {
				delete(b.subs[name], ch)
				if len(b.subs[name]) == 0 {
					delete(b.subs, name)
				}
			}
			b.mu.Unlock()
			close(ch)
		})
	}

	go func() {
		<-ctx.Done()
		cleanup()
	}()

	return ch, cleanup, nil
}
