package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// Event is one committed mutation, delivered to every subscriber of its
// channel. Delivery is best-effort: publishers never wait on consumers.
type Event struct {
	Channel string      `json:"channel"`
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

const subscriptionBuffer = 32

// Hub fans committed change events out to subscribed consumers, keyed by
// channel. Mutation and delivery stay two separate concerns: handlers call
// Publish after the storage write, nothing more.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*Subscription]struct{}
}

type Subscription struct {
	hub      *Hub
	events   chan Event
	mu       sync.Mutex
	channels map[string]struct{}
	closed   bool
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]map[*Subscription]struct{})}
}

func (h *Hub) NewSubscription() *Subscription {
	return &Subscription{
		hub:      h,
		events:   make(chan Event, subscriptionBuffer),
		channels: make(map[string]struct{}),
	}
}

// Publish delivers the event to current subscribers of the channel. A
// subscriber whose buffer is full loses the event rather than stalling the
// publisher.
func (h *Hub) Publish(channel, event string, payload interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subscribers[channel] {
		select {
		case sub.events <- Event{Channel: channel, Event: event, Payload: payload}:
		default:
		}
	}
}

func (s *Subscription) Events() <-chan Event {
	return s.events
}

func (s *Subscription) Subscribe(channel string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.channels[channel] = struct{}{}
	s.mu.Unlock()

	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	if s.hub.subscribers[channel] == nil {
		s.hub.subscribers[channel] = make(map[*Subscription]struct{})
	}
	s.hub.subscribers[channel][s] = struct{}{}
}

func (s *Subscription) Unsubscribe(channel string) {
	s.mu.Lock()
	delete(s.channels, channel)
	s.mu.Unlock()

	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	s.detachLocked(channel)
}

// Close detaches the subscription from every channel and closes the event
// stream.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	channels := make([]string, 0, len(s.channels))
	for channel := range s.channels {
		channels = append(channels, channel)
	}
	s.channels = map[string]struct{}{}
	s.mu.Unlock()

	s.hub.mu.Lock()
	for _, channel := range channels {
		s.detachLocked(channel)
	}
	s.hub.mu.Unlock()

	close(s.events)
}

func (s *Subscription) detachLocked(channel string) {
	subs := s.hub.subscribers[channel]
	if subs == nil {
		return
	}
	delete(subs, s)
	if len(subs) == 0 {
		delete(s.hub.subscribers, channel)
	}
}

func GroupChannel(groupID uuid.UUID) string {
	return "group:" + groupID.String()
}

func NoteChannel(noteID uuid.UUID) string {
	return "note:" + noteID.String()
}

func UserChannel(userID uuid.UUID) string {
	return "user:" + userID.String()
}
