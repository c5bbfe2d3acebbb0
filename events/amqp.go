package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"school-cafe-api/logger"

	"github.com/rabbitmq/amqp091-go"
)

const (
	publishTimeout = 5 * time.Second
	dialTimeout    = 5 * time.Second
	redialInterval = 5 * time.Second
)

// ErrNotConnected is returned while the broker is down and a redial is in flight or
// backing off.
var ErrNotConnected = errors.New("not connected to message broker")

// brokerSession is one connection plus its channel.
type brokerSession interface {
	Publish(ctx context.Context, exchange, key string, msg amqp091.Publishing) error
	IsClosed() bool
	Close() error
}

type dialFunc func(url, exchange string) (brokerSession, error)

// AMQPPublisher sends events to a durable topic exchange, routing key = event type.
type AMQPPublisher struct {
	url      string
	exchange string
	log      *slog.Logger
	dial     dialFunc
	now      func() time.Time

	mu       sync.Mutex
	sess     brokerSession
	dialing  bool
	nextDial time.Time
	closed   bool
}

// DialAMQP connects and declares the exchange.
func DialAMQP(url, exchange string, log *slog.Logger) (*AMQPPublisher, error) {
	p := newAMQPPublisher(url, exchange, log, dialSession)
	sess, err := p.dial(url, exchange)
	if err != nil {
		return nil, err
	}
	p.sess = sess
	p.log.Info("Connected to message broker", "exchange", exchange)
	return p, nil
}

func newAMQPPublisher(url, exchange string, log *slog.Logger, dial dialFunc) *AMQPPublisher {
	return &AMQPPublisher{
		url:      url,
		exchange: exchange,
		log:      logger.WithComponent(log, "events"),
		dial:     dial,
		now:      time.Now,
	}
}

// current returns a live session, redialing if the last one closed. Only one caller
// dials at a time and at most once per redialInterval; the rest get ErrNotConnected
// without waiting.
func (p *AMQPPublisher) current() (brokerSession, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrNotConnected
	}
	if p.sess != nil && !p.sess.IsClosed() {
		sess := p.sess
		p.mu.Unlock()
		return sess, nil
	}
	if p.dialing || p.now().Before(p.nextDial) {
		p.mu.Unlock()
		return nil, ErrNotConnected
	}
	p.dialing = true
	stale := p.sess
	p.sess = nil
	p.mu.Unlock()

	if stale != nil {
		stale.Close()
	}
	p.log.Warn("Broker connection lost, reconnecting")
	sess, err := p.dial(p.url, p.exchange)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.dialing = false
	if err != nil {
		p.nextDial = p.now().Add(redialInterval)
		return nil, fmt.Errorf("failed to reconnect: %w", err)
	}
	if p.closed {
		sess.Close()
		return nil, ErrNotConnected
	}
	p.sess = sess
	p.log.Info("Reconnected to message broker", "exchange", p.exchange)
	return sess, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	sess, err := p.current()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = sess.Publish(ctx, p.exchange, string(e.Type), amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    e.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", e.Type, err)
	}

	p.log.Debug("Event published", "type", e.Type, "entity_id", e.EntityID, "size", len(body))
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	p.closed = true
	sess := p.sess
	p.sess = nil
	p.mu.Unlock()

	if sess == nil || sess.IsClosed() {
		return nil
	}
	return sess.Close()
}

type amqpSession struct {
	conn *amqp091.Connection
	ch   *amqp091.Channel
}

func dialSession(url, exchange string) (brokerSession, error) {
	conn, err := amqp091.DialConfig(url, amqp091.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp091.DefaultDial(dialTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s exchange: %w", exchange, err)
	}
	return &amqpSession{conn: conn, ch: ch}, nil
}

func (s *amqpSession) Publish(ctx context.Context, exchange, key string, msg amqp091.Publishing) error {
	return s.ch.PublishWithContext(ctx,
		exchange, // exchange
		key,      // routing key
		false,    // mandatory
		false,    // immediate
		msg,
	)
}

// IsClosed reports a closed connection or a channel closed by a channel exception.
func (s *amqpSession) IsClosed() bool {
	return s.conn.IsClosed() || s.ch.IsClosed()
}

func (s *amqpSession) Close() error {
	s.ch.Close()
	return s.conn.Close()
}
