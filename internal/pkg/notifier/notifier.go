// Package notifier fans one delivered status event out to every interested
// subscriber: the originator first, then the device's bound subscribers.
// Delivery is best effort per recipient; one slow or failing chat never
// blocks the rest.
package notifier

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/anicoll/chatbridge/internal/pkg/model"
	"github.com/anicoll/chatbridge/internal/pkg/sink"
)

const sendTimeout = time.Second * 5

type bindingRegistry interface {
	SubscribersOf(deviceID string) []model.Subscriber
	FirstContact(sub model.Subscriber) bool
}

type eventStore interface {
	WriteEvent(ctx context.Context, event model.StatusEvent) error
}

type service struct {
	registry bindingRegistry
	sinks    *sink.Registry
	store    eventStore // optional
	logger   *zap.Logger
}

func New(registry bindingRegistry, sinks *sink.Registry, store eventStore) *service {
	return &service{
		registry: registry,
		sinks:    sinks,
		store:    store,
		logger:   zap.L(),
	}
}

// OnStatusEvent delivers one event. It only returns an error when the event
// itself is unusable; individual recipient failures are logged and swallowed
// so the consumer still acknowledges the message.
func (s *service) OnStatusEvent(ctx context.Context, event model.StatusEvent) error {
	originator := event.Originator()
	username := displayName(originator)

	greeting := ""
	if s.registry.FirstContact(originator) {
		greeting = fmt.Sprintf("Hi, %s\n", username)
	}
	s.send(ctx, originator, fmt.Sprintf("%sDevice %s is now %s, operated by %s",
		greeting, event.DeviceID, event.State, username))

	notified := map[string]struct{}{originator.Key(): {}}
	otherText := fmt.Sprintf("Device %s has been set to %s by %s", event.DeviceID, event.State, username)
	for _, bound := range s.registry.SubscribersOf(event.DeviceID) {
		if _, done := notified[bound.Key()]; done {
			continue
		}
		notified[bound.Key()] = struct{}{}
		s.send(ctx, bound, otherText)
	}

	if s.store != nil {
		if err := s.store.WriteEvent(ctx, event); err != nil {
			s.logger.Warn("failed to record status event", zap.String("device_id", event.DeviceID), zap.Error(err))
		}
	}
	return nil
}

func (s *service) send(ctx context.Context, sub model.Subscriber, text string) {
	snk, err := s.sinks.Get(sub.Platform)
	if err != nil {
		s.logger.Error("cannot notify subscriber", zap.String("platform", sub.Platform.String()),
			zap.String("chat_id", sub.ChatID), zap.Error(err))
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if err := snk.SendText(sendCtx, sub, text); err != nil {
		s.logger.Error("failed to notify subscriber", zap.String("platform", sub.Platform.String()),
			zap.String("chat_id", sub.ChatID), zap.Error(err))
	}
}

func displayName(sub model.Subscriber) string {
	if sub.DisplayName != "" {
		return sub.DisplayName
	}
	return sub.ChatID
}
