package events

import (
	"sync"
)

// PublisherService is a concurrent-safe service that
// could "Notify" channels of observers.
// Please "Register" observers via RegisterClaimedObserver before Notify.
type PublisherService struct {
	ClaimedObservers []chan Claimed
	mu               sync.Mutex

	quit    chan struct{}
	closed  bool
	pending sync.WaitGroup // deliveries to full observers
}

// NewPublisherService creates a new PublisherService without observers.
func NewPublisherService() *PublisherService {
	return &PublisherService{
		ClaimedObservers: make([]chan Claimed, 0),
		quit:             make(chan struct{}),
	}
}

func (m *PublisherService) RegisterClaimedObserver(observer chan Claimed) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ClaimedObservers = append(m.ClaimedObservers, observer)
}

// NotifyClaimed never blocks the caller. An event for a full observer is
// delivered from a goroutine and may overtake earlier ones; it is dropped
// if the publisher is closed first.
func (m *PublisherService) NotifyClaimed(ev Claimed) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}

	for _, observer := range m.ClaimedObservers {
		select {
		case observer <- ev:
		default:
			// Handle the case where the observer's channel is full
			m.pending.Add(1)
			go func(obs chan Claimed) {
				defer m.pending.Done()
				select {
				case obs <- ev:
				case <-m.quit:
				}
			}(observer)
		}
	}
}

// Close stops delivery and waits for pending deliveries to give up.
// Call it once the observers stopped reading.
func (m *PublisherService) Close() {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		close(m.quit)
	}
	m.mu.Unlock()

	m.pending.Wait()
}
