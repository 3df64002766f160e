package events

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type gateSink struct {
	gate  chan struct{}
	count atomic.Int64
}

func (s *gateSink) Emit(context.Context, Event) {
	<-s.gate
	s.count.Add(1)
}

func TestDisabledDispatcherIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, NoOpSink{})
	if d != nil {
		t.Fatal("expected nil dispatcher when disabled")
	}
	d.Emit(context.Background(), Event{Kind: KindLogin})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher must report zero drops")
	}
}

func TestDispatcherDeliversToChannelSink(t *testing.T) {
	sink := NewChannelSink(4)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 4}, sink)
	defer d.Close()

	d.Emit(context.Background(), Event{Kind: KindLogin, UserID: "u1", Success: true})

	select {
	case ev := <-sink.Events():
		if ev.Kind != KindLogin || ev.UserID != "u1" || !ev.Success {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestDropIfFullCountsDropsPerKind(t *testing.T) {
	sink := &gateSink{gate: make(chan struct{})}
	var onDrop atomic.Int64
	d := NewDispatcher(Config{
		Enabled:    true,
		BufferSize: 1,
		DropIfFull: true,
		OnDrop: func(k Kind) {
			if k == KindRefresh {
				onDrop.Add(1)
			}
		},
	}, sink)

	// One event may be held by the worker and one buffered; the rest drop.
	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), Event{Kind: KindRefresh})
	}
	st := d.Stats()
	if st.Dropped[KindRefresh] < 8 {
		t.Fatalf("expected at least 8 refresh drops, got %d", st.Dropped[KindRefresh])
	}
	if st.Dropped[KindLogin] != 0 {
		t.Fatalf("login drops should be untouched, got %d", st.Dropped[KindLogin])
	}
	if uint64(onDrop.Load()) != st.Dropped[KindRefresh] {
		t.Fatalf("OnDrop calls %d do not match counter %d", onDrop.Load(), st.Dropped[KindRefresh])
	}
	close(sink.gate)
	d.Close()

	st = d.Stats()
	if got := st.Delivered[KindRefresh] + st.Dropped[KindRefresh]; got != 10 {
		t.Fatalf("delivered+dropped should equal emitted, got %d", got)
	}
	if uint64(sink.count.Load()) != st.Delivered[KindRefresh] {
		t.Fatalf("sink saw %d events, stats say %d", sink.count.Load(), st.Delivered[KindRefresh])
	}
}

func TestTerminalKindsWaitForRoom(t *testing.T) {
	sink := &gateSink{gate: make(chan struct{})}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	d.Emit(context.Background(), Event{Kind: KindLogin})
	time.Sleep(20 * time.Millisecond)
	d.Emit(context.Background(), Event{Kind: KindLogin})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		d.Emit(context.Background(), Event{Kind: KindLogout})
	}()

	time.Sleep(20 * time.Millisecond)
	close(sink.gate)
	wg.Wait()
	d.Close()

	st := d.Stats()
	if st.Dropped[KindLogout] != 0 || st.Delivered[KindLogout] != 1 {
		t.Fatalf("logout must never be dropped on a full buffer: %+v", st)
	}
}

func TestTerminalKindDroppedWhenContextEnds(t *testing.T) {
	sink := &gateSink{gate: make(chan struct{})}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	d.Emit(context.Background(), Event{Kind: KindRefresh})
	// Let the worker take the first event so the second fills the queue.
	time.Sleep(20 * time.Millisecond)
	d.Emit(context.Background(), Event{Kind: KindRefresh})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	d.Emit(ctx, Event{Kind: KindSessionExpiry})

	if got := d.Stats().Dropped[KindSessionExpiry]; got != 1 {
		t.Fatalf("expected the cancelled expiry event to count as dropped, got %d", got)
	}
	close(sink.gate)
	d.Close()
}

func TestInvalidKindIgnored(t *testing.T) {
	sink := NewChannelSink(2)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 2}, sink)
	d.Emit(context.Background(), Event{Kind: KindCount})
	d.Close()

	if len(sink.Events()) != 0 {
		t.Fatal("undefined kinds must not reach the sink")
	}
	if d.Dropped() != 0 {
		t.Fatal("undefined kinds must not count as drops")
	}
}

func TestCloseDrainsAndIgnoresLaterEmits(t *testing.T) {
	sink := NewChannelSink(8)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 8}, sink)
	for i := 0; i < 3; i++ {
		d.Emit(context.Background(), Event{Kind: KindLogout})
	}
	d.Close()
	d.Close()
	d.Emit(context.Background(), Event{Kind: KindLogout})

	if got := len(sink.Events()); got != 3 {
		t.Fatalf("expected 3 drained events, got %d", got)
	}
	if got := d.Stats().Delivered[KindLogout]; got != 3 {
		t.Fatalf("expected 3 delivered logouts, got %d", got)
	}
}

func TestKindTextRoundTrip(t *testing.T) {
	for _, k := range Kinds() {
		b, err := k.MarshalText()
		if err != nil {
			t.Fatalf("marshal %d: %v", k, err)
		}
		var back Kind
		if err := back.UnmarshalText(b); err != nil || back != k {
			t.Fatalf("round trip %q: got %v err=%v", b, back, err)
		}
	}
	if _, err := KindCount.MarshalText(); err == nil {
		t.Fatal("expected error marshalling an undefined kind")
	}
	var k Kind
	if err := k.UnmarshalText([]byte("teleport")); err == nil {
		t.Fatal("expected error for an unknown name")
	}
	if KindSessionExpiry.String() != "session_expired" || Kind(200).String() != "unknown" {
		t.Fatal("unexpected kind names")
	}
}

func TestJSONWriterSinkWritesLines(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)
	sink.Emit(context.Background(), Event{Kind: KindSignup, Email: "a@b.com", Metadata: map[string]string{"confirmation": "pending"}})
	sink.Emit(context.Background(), Event{Kind: KindLogout, Success: true})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	if !strings.Contains(lines[0], `"event_type":"signup"`) {
		t.Fatalf("expected kind encoded by name, got %s", lines[0])
	}
	var ev Event
	if err := json.Unmarshal([]byte(lines[0]), &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Kind != KindSignup || ev.Metadata["confirmation"] != "pending" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}
