// Package kafkatest provides an in-memory publisher for tests.
package kafkatest

import (
	"context"
	"sync"

	"github.com/Skotchmaster/sport_shop/pkg/mykafka"
)

type Message struct {
	Topic string
	Key   string
	Event any
}

type Recorder struct {
	mu       sync.Mutex
	messages []Message
	Err      error
}

func (r *Recorder) PublishEvent(_ context.Context, topic, key string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.messages = append(r.messages, Message{Topic: topic, Key: key, Event: event})
	return nil
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Types returns the event types published to topic, in order.
func (r *Recorder) Types(topic string) []string {
	var out []string
	for _, m := range r.Messages() {
		if m.Topic != topic {
			continue
		}
		if ev, ok := m.Event.(mykafka.Event); ok {
			out = append(out, ev.Type)
		}
	}
	return out
}
