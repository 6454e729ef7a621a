// Package device runs a simulated IoT device: it consumes its family's
// command topic, executes on/off/get_status against an in-memory state and
// reports every completed action back through the status queue plus the
// retained MQTT status topic.
package device

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/anicoll/chatbridge/internal/pkg/model"
)

type commandBridge interface {
	SubscribeCommands(manufacturer model.Manufacturer, deviceType model.DeviceType, handler func(model.CommandMessage)) error
	PublishStatus(device model.Device, state model.DeviceState) error
}

type statusPublisher interface {
	Publish(ctx context.Context, event model.StatusEvent) error
}

type runtime struct {
	device model.Device
	bridge commandBridge
	queue  statusPublisher
	logger *zap.Logger

	mu    sync.Mutex
	state model.DeviceState
}

func New(device model.Device, bridge commandBridge, queue statusPublisher) *runtime {
	return &runtime{
		device: device,
		bridge: bridge,
		queue:  queue,
		logger: zap.L(),
		state:  model.StateOff,
	}
}

// Start subscribes the device to its family command topic. Commands addressed
// to other devices of the same family are filtered out here, since the whole
// family shares one wildcard subscription.
func (r *runtime) Start(ctx context.Context) error {
	return r.bridge.SubscribeCommands(r.device.Manufacturer, r.device.Type, func(msg model.CommandMessage) {
		if msg.DeviceID != "" && msg.DeviceID != r.device.ID {
			r.logger.Debug("ignoring command for sibling device",
				zap.String("device_id", r.device.ID), zap.String("target", msg.DeviceID))
			return
		}
		r.handle(ctx, msg)
	})
}

func (r *runtime) handle(ctx context.Context, msg model.CommandMessage) {
	var state model.DeviceState
	switch msg.Command {
	case string(model.StateOn):
		state = r.setState(model.StateOn)
	case string(model.StateOff):
		state = r.setState(model.StateOff)
	case "get_status":
		state = r.State()
	default:
		r.logger.Warn("unsupported command",
			zap.String("device_id", r.device.ID), zap.String("command", msg.Command))
		return
	}
	r.logger.Info("executed command",
		zap.String("device_id", r.device.ID),
		zap.String("command", msg.Command),
		zap.String("state", state.String()))

	r.notify(ctx, state, msg)
}

func (r *runtime) notify(ctx context.Context, state model.DeviceState, msg model.CommandMessage) {
	event := model.StatusEvent{
		DeviceID:   r.device.ID,
		State:      state,
		ChatID:     msg.ChatID,
		Platform:   msg.Platform,
		Username:   msg.Username,
		OccurredAt: time.Now().UTC(),
	}
	if err := r.queue.Publish(ctx, event); err != nil {
		r.logger.Error("failed to publish status event",
			zap.String("device_id", r.device.ID), zap.Error(err))
	}
	if err := r.bridge.PublishStatus(r.device, state); err != nil {
		r.logger.Error("failed to publish retained status",
			zap.String("device_id", r.device.ID), zap.Error(err))
	}
}

func (r *runtime) setState(state model.DeviceState) model.DeviceState {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = state
	return r.state
}

func (r *runtime) State() model.DeviceState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}
