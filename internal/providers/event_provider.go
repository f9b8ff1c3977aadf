package providers

import (
	"sync"
	"tsd/internal/services"

	json "github.com/goccy/go-json"
	"go.uber.org/atomic"
)

// Event is a single ledger event: topic, the principal or id it concerns,
// and an operation-specific payload.
type Event struct {
	Topic   string
	Key     string
	Payload any
}

type EventProviderInterface interface {
	Emit(topic, key string, payload any)
	Subscribe(fn func(Event))
	Count(topic string) uint64
}

// EventProvider logs every event, keeps per-topic lifetime counters, and
// fans events out to in-process subscribers.
type EventProvider struct {
	logger Logger

	mu     sync.RWMutex
	subs   []func(Event)
	counts map[string]*atomic.Uint64
}

// EventTopics lists every topic the ledger emits.
var EventTopics = []string{
	services.TopicCreate, services.TopicWithdraw, services.TopicCancel,
	services.TopicTransfer, services.TopicMigrate, services.TopicMigrateStream,
}

func NewEventProvider(logger Logger) *EventProvider {
	counts := make(map[string]*atomic.Uint64)
	for _, topic := range EventTopics {
		counts[topic] = atomic.NewUint64(0)
	}
	return &EventProvider{logger: logger, counts: counts}
}

func (ep *EventProvider) Emit(topic, key string, payload any) {
	if c, ok := ep.counts[topic]; ok {
		c.Inc()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte("?")
	}
	ep.logger.Infof(TypeApp, "event %s (%s): %s", topic, key, data)

	ep.mu.RLock()
	subs := ep.subs
	ep.mu.RUnlock()
	ev := Event{Topic: topic, Key: key, Payload: payload}
	for _, fn := range subs {
		fn(ev)
	}
}

func (ep *EventProvider) Subscribe(fn func(Event)) {
	ep.mu.Lock()
	defer ep.mu.Unlock()
	ep.subs = append(ep.subs, fn)
}

func (ep *EventProvider) Count(topic string) uint64 {
	if c, ok := ep.counts[topic]; ok {
		return c.Load()
	}
	return 0
}
