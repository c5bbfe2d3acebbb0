package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"school-cafe-api/logger"

	"github.com/rabbitmq/amqp091-go"
)

type fakeSession struct {
	mu     sync.Mutex
	closed bool
	keys   []string
}

func (s *fakeSession) Publish(_ context.Context, _, key string, _ amqp091.Publishing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return amqp091.ErrClosed
	}
	s.keys = append(s.keys, key)
	return nil
}

func (s *fakeSession) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSession) published() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.keys...)
}

// fakeBroker hands out sessions in order and fails dials while down is set.
type fakeBroker struct {
	mu       sync.Mutex
	down     bool
	dials    int
	sessions []*fakeSession
}

func (b *fakeBroker) dial(string, string) (brokerSession, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dials++
	if b.down {
		return nil, errors.New("connection refused")
	}
	s := &fakeSession{}
	b.sessions = append(b.sessions, s)
	return s, nil
}

func (b *fakeBroker) dialCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dials
}

func newTestPublisher(t *testing.T, b *fakeBroker) (*AMQPPublisher, *time.Time) {
	t.Helper()
	p := newAMQPPublisher("amqp://test", "cafe_events", logger.Discard(), b.dial)
	clock := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return clock }
	sess, err := b.dial(p.url, p.exchange)
	if err != nil {
		t.Fatal(err)
	}
	p.sess = sess
	return p, &clock
}

func TestAMQPPublisher_PublishUsesLiveSession(t *testing.T) {
	b := &fakeBroker{}
	p, _ := newTestPublisher(t, b)

	if err := p.Publish(context.Background(), New(OrderCreated, 1, 2, nil)); err != nil {
		t.Fatal(err)
	}
	if err := p.Publish(context.Background(), New(OrderServed, 1, 3, nil)); err != nil {
		t.Fatal(err)
	}
	got := b.sessions[0].published()
	if len(got) != 2 || got[0] != "order.created" || got[1] != "order.served" {
		t.Errorf("routing keys = %v", got)
	}
	if b.dialCount() != 1 {
		t.Errorf("dials = %d, want 1", b.dialCount())
	}
}

func TestAMQPPublisher_RedialsClosedSession(t *testing.T) {
	b := &fakeBroker{}
	p, _ := newTestPublisher(t, b)

	// A channel exception leaves the session closed while the process keeps running.
	b.sessions[0].Close()

	if err := p.Publish(context.Background(), New(OrderCancelled, 4, 2, nil)); err != nil {
		t.Fatal(err)
	}
	if b.dialCount() != 2 {
		t.Fatalf("dials = %d, want 2", b.dialCount())
	}
	if got := b.sessions[1].published(); len(got) != 1 || got[0] != "order.cancelled" {
		t.Errorf("routing keys on new session = %v", got)
	}
}

func TestAMQPPublisher_BacksOffAfterFailedDial(t *testing.T) {
	b := &fakeBroker{}
	p, clock := newTestPublisher(t, b)
	b.sessions[0].Close()
	b.down = true

	err := p.Publish(context.Background(), New(OrderCreated, 1, 2, nil))
	if err == nil || errors.Is(err, ErrNotConnected) {
		t.Fatalf("first publish err = %v, want dial failure", err)
	}
	err = p.Publish(context.Background(), New(OrderCreated, 2, 2, nil))
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("publish during backoff err = %v, want ErrNotConnected", err)
	}
	if b.dialCount() != 2 {
		t.Fatalf("dials = %d, want 2 (no redial during backoff)", b.dialCount())
	}

	b.mu.Lock()
	b.down = false
	b.mu.Unlock()
	*clock = clock.Add(redialInterval)

	if err := p.Publish(context.Background(), New(OrderCreated, 3, 2, nil)); err != nil {
		t.Fatalf("publish after backoff: %v", err)
	}
	if b.dialCount() != 3 {
		t.Errorf("dials = %d, want 3", b.dialCount())
	}
}

func TestAMQPPublisher_OtherPublishersDoNotWaitOnDial(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	p := newAMQPPublisher("amqp://test", "cafe_events", logger.Discard(), func(string, string) (brokerSession, error) {
		close(entered)
		<-release
		return &fakeSession{}, nil
	})

	done := make(chan error, 1)
	go func() {
		done <- p.Publish(context.Background(), New(OrderCreated, 1, 2, nil))
	}()
	<-entered

	err := p.Publish(context.Background(), New(OrderServed, 1, 3, nil))
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("publish while dialing err = %v, want ErrNotConnected", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Errorf("dialing publish: %v", err)
	}
}

func TestAMQPPublisher_Close(t *testing.T) {
	b := &fakeBroker{}
	p, _ := newTestPublisher(t, b)

	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if !b.sessions[0].IsClosed() {
		t.Error("session not closed")
	}
	if err := p.Publish(context.Background(), New(OrderCreated, 1, 2, nil)); !errors.Is(err, ErrNotConnected) {
		t.Errorf("publish after close err = %v", err)
	}
	if b.dialCount() != 1 {
		t.Errorf("closed publisher redialed")
	}
}
