package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

// Kind is the session transition an event records.
type Kind uint8

const (
	KindLogin Kind = iota
	KindSignup
	KindLogout
	KindRefresh
	KindSessionExpiry

	// KindCount is the number of defined kinds.
	KindCount
)

var kindNames = [KindCount]string{
	KindLogin:         "login",
	KindSignup:        "signup",
	KindLogout:        "logout",
	KindRefresh:       "refresh",
	KindSessionExpiry: "session_expired",
}

// Kinds lists every defined kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, KindCount)
	for k := Kind(0); k < KindCount; k++ {
		out = append(out, k)
	}
	return out
}

// Valid reports whether k is a defined kind.
func (k Kind) Valid() bool { return k < KindCount }

func (k Kind) String() string {
	if !k.Valid() {
		return "unknown"
	}
	return kindNames[k]
}

// Terminal reports whether k ends a session. Terminal events bypass
// drop-if-full so a sink always learns that a session is gone.
func (k Kind) Terminal() bool {
	return k == KindLogout || k == KindSessionExpiry
}

// MarshalText encodes k by name.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("events: invalid kind %d", uint8(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if name == string(b) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("events: unknown kind %q", b)
}

// Event is a session lifecycle record.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	Kind      Kind              `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	Email     string            `json:"email,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Sink receives emitted events.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// NoOpSink drops events.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Event) {}

// ChannelSink writes events into a buffered channel.
type ChannelSink struct {
	events chan Event
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{events: make(chan Event, buffer)}
}

func (s *ChannelSink) Emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{writer: w}
}

func (s *JSONWriterSink) Emit(_ context.Context, event Event) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.writer.Write(data)
}
