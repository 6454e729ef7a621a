// Package statusqueue carries device status events over a durable JetStream
// stream. Devices publish one event per completed action; the broker side
// consumes them one at a time with explicit acknowledgement.
//
// Subjects follow status.{platform}.{chat_id}.status_update so a future
// per-platform consumer can bind a wildcard filter without a stream change.
package statusqueue

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/anicoll/chatbridge/internal/pkg/model"
)

const (
	StreamName   = "STATUS"
	ConsumerName = "chatbridge-notifier"

	subjectPrefix = "status"
	subjectSuffix = "status_update"
)

var ErrNotConnected = errors.New("not connected to status queue")

// Handler consumes one decoded status event. A returned error drops the
// event permanently; it is never requeued.
type Handler func(ctx context.Context, event model.StatusEvent) error

type service struct {
	url             string
	backoff         time.Duration
	clientReconnect bool
	logger          *zap.Logger

	nc     *nats.Conn
	js     jetstream.JetStream
	lostCh chan error
}

type Option func(*service)

// WithBackoff overrides the fixed reconnect backoff (default 5s).
func WithBackoff(d time.Duration) Option {
	return func(s *service) {
		s.backoff = d
	}
}

// WithClientReconnect hands reconnection to the NATS client itself, retrying
// forever with the configured backoff. Publish-only processes need this; they
// have no consume loop to re-establish a dropped connection.
func WithClientReconnect() Option {
	return func(s *service) {
		s.clientReconnect = true
	}
}

func New(url string, opts ...Option) *service {
	s := &service{
		url:     url,
		backoff: time.Second * 5,
		logger:  zap.L(),
		lostCh:  make(chan error, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect establishes the initial connection and ensures the stream exists.
// Callers treat a failure here as fatal; after a successful start the Run loop
// (or, with WithClientReconnect, the client itself) handles reconnects.
func (s *service) Connect(ctx context.Context) error {
	return s.connect(ctx)
}

func (s *service) connect(ctx context.Context) error {
	// discard any close notification left over from a previous connection so
	// it cannot tear down the consumer we are about to start
	select {
	case <-s.lostCh:
	default:
	}

	nc, err := nats.Connect(s.url, s.connectOptions()...)
	if err != nil {
		return err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return err
	}

	if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{subjectPrefix + ".>"},
		Storage:  jetstream.FileStorage,
	}); err != nil {
		nc.Close()
		return err
	}

	s.nc = nc
	s.js = js
	s.logger.Info("connected to status queue", zap.String("url", s.url))
	return nil
}

func (s *service) connectOptions() []nats.Option {
	opts := []nats.Option{
		nats.Name("chatbridge"),
		nats.ClosedHandler(func(c *nats.Conn) {
			select {
			case s.lostCh <- c.LastError():
			default:
			}
		}),
	}
	if s.clientReconnect {
		return append(opts,
			nats.MaxReconnects(-1),
			nats.RetryOnFailedConnect(true),
			nats.ReconnectWait(s.backoff),
		)
	}
	// reconnects are owned by the Run loop
	return append(opts, nats.NoReconnect())
}

// Publish appends one status event to the stream.
func (s *service) Publish(ctx context.Context, event model.StatusEvent) error {
	if s.js == nil {
		return ErrNotConnected
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := s.js.Publish(ctx, Subject(event), payload); err != nil {
		return err
	}
	return nil
}

// Subject derives the routing subject of an event.
func Subject(event model.StatusEvent) string {
	return strings.Join([]string{
		subjectPrefix,
		token(event.Platform.String()),
		token(event.ChatID),
		subjectSuffix,
	}, ".")
}

// token keeps chat ids from injecting subject hierarchy separators.
func token(v string) string {
	v = strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_").Replace(v)
	if v == "" {
		return "unknown"
	}
	return v
}

func (s *service) Close() {
	if s.nc != nil {
		s.nc.Close()
	}
}
