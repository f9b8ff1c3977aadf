package providers

import (
	"testing"
	"tsd/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventProvider_CountsPerTopic(t *testing.T) {
	ep := NewEventProvider(&cacheTestLogger{})

	ep.Emit(services.TopicCreate, "alice", uint64(1))
	ep.Emit(services.TopicCreate, "alice", uint64(2))
	ep.Emit(services.TopicWithdraw, "bob", nil)

	assert.Equal(t, uint64(2), ep.Count(services.TopicCreate))
	assert.Equal(t, uint64(1), ep.Count(services.TopicWithdraw))
	assert.Equal(t, uint64(0), ep.Count(services.TopicCancel))
}

func TestEventProvider_UnknownTopic(t *testing.T) {
	ep := NewEventProvider(&cacheTestLogger{})

	// Unknown topics are delivered but not counted.
	ep.Emit("bogus", "k", nil)
	assert.Equal(t, uint64(0), ep.Count("bogus"))
}

func TestEventProvider_SubscriberReceivesEvents(t *testing.T) {
	ep := NewEventProvider(&cacheTestLogger{})

	var got []Event
	ep.Subscribe(func(e Event) { got = append(got, e) })

	ep.Emit(services.TopicCancel, "42", "alice")

	require.Len(t, got, 1)
	assert.Equal(t, services.TopicCancel, got[0].Topic)
	assert.Equal(t, "42", got[0].Key)
	assert.Equal(t, "alice", got[0].Payload)
}

func TestEventProvider_MultipleSubscribers(t *testing.T) {
	ep := NewEventProvider(&cacheTestLogger{})

	first, second := 0, 0
	ep.Subscribe(func(Event) { first++ })
	ep.Subscribe(func(Event) { second++ })

	ep.Emit(services.TopicMigrate, "alice", uint32(2))

	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
}

func TestEventProvider_LogsEveryEmit(t *testing.T) {
	logger := &eventTestRecordingLogger{}
	ep := NewEventProvider(logger)

	ep.Emit(services.TopicCreate, "alice", uint64(1))
	ep.Emit(services.TopicWithdraw, "bob", nil)

	assert.Equal(t, 2, logger.infos)
}

// recording logger used where call counts matter
type eventTestRecordingLogger struct {
	infos int
	warns int
}

func (m *eventTestRecordingLogger) Errorf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *eventTestRecordingLogger) Warnf(_ TypeEnum, _ string, _ ...interface{})  { m.warns++ }
func (m *eventTestRecordingLogger) Debugf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *eventTestRecordingLogger) Infof(_ TypeEnum, _ string, _ ...interface{})  { m.infos++ }
func (m *eventTestRecordingLogger) Fatalf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *eventTestRecordingLogger) Close()                                        {}
