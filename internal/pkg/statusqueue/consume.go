package statusqueue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/anicoll/chatbridge/internal/pkg/model"
)

var errConnectionLost = errors.New("status queue connection lost")

// Run consumes the stream until ctx is cancelled. Connection loss after a
// successful start is recovered with a fixed backoff and unbounded retries;
// giving up would silently stop every device status notification.
func (s *service) Run(ctx context.Context, handler Handler) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.nc == nil || !s.nc.IsConnected() {
			if err := s.connect(ctx); err != nil {
				s.logger.Error("status queue reconnect failed", zap.Error(err), zap.Duration("backoff", s.backoff))
				if !sleepCtx(ctx, s.backoff) {
					return ctx.Err()
				}
				continue
			}
		}

		err := s.consume(ctx, handler)
		if err == nil {
			return ctx.Err()
		}
		s.logger.Warn("status queue consumer stopped", zap.Error(err), zap.Duration("backoff", s.backoff))
		if !sleepCtx(ctx, s.backoff) {
			return ctx.Err()
		}
	}
}

func (s *service) consume(ctx context.Context, handler Handler) error {
	cons, err := s.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:       ConsumerName,
		FilterSubject: subjectPrefix + ".>",
		AckPolicy:     jetstream.AckExplicitPolicy,
		// one in-flight message preserves delivery order through the fan-out
		MaxAckPending: 1,
	})
	if err != nil {
		return err
	}

	cc, err := cons.Consume(func(msg jetstream.Msg) {
		s.handleMsg(ctx, msg, handler)
	})
	if err != nil {
		return err
	}
	defer cc.Stop()

	select {
	case <-ctx.Done():
		return nil
	case err := <-s.lostCh:
		if err == nil {
			err = errConnectionLost
		}
		return err
	}
}

func (s *service) handleMsg(ctx context.Context, msg jetstream.Msg, handler Handler) {
	event, err := Decode(msg.Data())
	if err != nil {
		// poison message: drop permanently so it cannot block the queue
		s.logger.Error("dropping malformed status event",
			zap.ByteString("payload", msg.Data()), zap.Error(err))
		_ = msg.Term()
		return
	}

	if err := handler(ctx, event); err != nil {
		// no requeue: a second delivery would repeat the whole fan-out
		s.logger.Error("dropping status event after handler failure",
			zap.String("device_id", event.DeviceID), zap.Error(err))
		_ = msg.Term()
		return
	}

	if err := msg.Ack(); err != nil {
		s.logger.Error("failed to ack status event", zap.Error(err))
	}
}

// Decode parses and validates one queue payload.
func Decode(data []byte) (model.StatusEvent, error) {
	var event model.StatusEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return model.StatusEvent{}, err
	}
	if event.State == "" {
		return model.StatusEvent{}, errors.New("status event missing device_status")
	}
	if event.ChatID == "" {
		return model.StatusEvent{}, errors.New("status event missing chat_id")
	}
	if !event.Platform.Valid() {
		return model.StatusEvent{}, errors.New("status event has unsupported platform: " + event.Platform.String())
	}
	return event, nil
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
