package testutil

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"
)

// PublishedEvent is one event captured by MockPublisher
type PublishedEvent struct {
	RoutingKey string
	EventData  interface{}
	Timestamp  time.Time
	RawJSON    []byte
}

// MockPublisher records published events in memory. FailWith makes every
// later Publish return an error without recording anything.
type MockPublisher struct {
	mu      sync.RWMutex
	events  []PublishedEvent
	failErr error
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// Publish stores an event in memory
func (m *MockPublisher) Publish(ctx context.Context, routingKey string, eventData interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failErr != nil {
		return m.failErr
	}

	jsonData, err := json.Marshal(eventData)
	if err != nil {
		return err
	}

	m.events = append(m.events, PublishedEvent{
		RoutingKey: routingKey,
		EventData:  eventData,
		Timestamp:  time.Now(),
		RawJSON:    jsonData,
	})
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

// FailWith makes subsequent publishes return err. Pass nil to recover.
func (m *MockPublisher) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failErr = err
}

// DecodeLastEvent unmarshals the raw JSON of the newest event with routingKey
// into target, failing the test when there is none.
func (m *MockPublisher) DecodeLastEvent(t *testing.T, routingKey string, target interface{}) {
	t.Helper()

	event := m.GetLastEventByKey(routingKey)
	if event == nil {
		t.Fatalf("Expected event with routing key '%s', found none", routingKey)
	}
	if err := json.Unmarshal(event.RawJSON, target); err != nil {
		t.Fatalf("Failed to decode %s event: %v", routingKey, err)
	}
}

// GetEventCount returns the total number of recorded events
func (m *MockPublisher) GetEventCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.events)
}

// eventsWithKey returns copies of the recorded events for routingKey, oldest first.
func (m *MockPublisher) eventsWithKey(routingKey string) []PublishedEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]PublishedEvent, 0, len(m.events))
	for _, e := range m.events {
		if e.RoutingKey == routingKey {
			matched = append(matched, e)
		}
	}
	return matched
}

// GetEventCountByKey counts recorded events for routingKey
func (m *MockPublisher) GetEventCountByKey(routingKey string) int {
	return len(m.eventsWithKey(routingKey))
}

// GetLastEventByKey returns the newest event for routingKey, or nil
func (m *MockPublisher) GetLastEventByKey(routingKey string) *PublishedEvent {
	matched := m.eventsWithKey(routingKey)
	if len(matched) == 0 {
		return nil
	}
	return &matched[len(matched)-1]
}

func (m *MockPublisher) AssertEventPublished(t *testing.T, routingKey string) {
	t.Helper()

	if m.GetEventCountByKey(routingKey) == 0 {
		t.Errorf("Expected a %s event, none were published", routingKey)
	}
}

func (m *MockPublisher) AssertEventNotPublished(t *testing.T, routingKey string) {
	t.Helper()

	if n := m.GetEventCountByKey(routingKey); n > 0 {
		t.Errorf("Expected no %s events, got %d", routingKey, n)
	}
}

// AssertEventCount fails unless exactly expected events carry routingKey
func (m *MockPublisher) AssertEventCount(t *testing.T, routingKey string, expected int) {
	t.Helper()

	if n := m.GetEventCountByKey(routingKey); n != expected {
		t.Errorf("Expected %d %s events, got %d", expected, routingKey, n)
	}
}
