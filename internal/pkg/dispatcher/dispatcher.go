// Package dispatcher orchestrates one inbound chat message: parse, validate
// against the device catalog, mutate bindings, forward to the device
// transport. Dispatch is fire-and-forget with respect to device execution;
// the eventual status notification arrives through the status queue.
package dispatcher

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/anicoll/chatbridge/internal/pkg/model"
	"github.com/anicoll/chatbridge/internal/pkg/parser"
)

var (
	ErrUnknownDevice  = errors.New("device not in catalog")
	ErrUnknownCommand = errors.New("unrecognized command")
)

const HelpText = `I control your devices. Commands:
/enable [device]    - turn a device on ("turn on" works too)
/disable [device]   - turn a device off ("turn off" works too)
/setstatus on|off [device]
/getstatus [device] - ask the device for its current state
/bind <device>      - get notified when the device changes state
Without a device id the default device is used.`

type bindingRegistry interface {
	Bind(deviceID string, sub model.Subscriber)
}

type deviceBridge interface {
	PublishCommand(device model.Device, verb string, sub model.Subscriber) error
}

type service struct {
	catalog       model.Catalog
	defaultDevice string
	registry      bindingRegistry
	bridge        deviceBridge
	logger        *zap.Logger
}

func New(catalog model.Catalog, defaultDevice string, registry bindingRegistry, bridge deviceBridge) *service {
	return &service{
		catalog:       catalog,
		defaultDevice: defaultDevice,
		registry:      registry,
		bridge:        bridge,
		logger:        zap.L(),
	}
}

// Dispatch handles one message from sub. The returned reply is always safe to
// send back to the originating chat; a non-nil error classifies the failure
// for the caller's logs.
func (s *service) Dispatch(ctx context.Context, sub model.Subscriber, text string) (string, error) {
	cmd := parser.Parse(text)

	switch cmd.Action {
	case model.ActionUnknown:
		return "Sorry, I don't understand that message.", ErrUnknownCommand
	case model.ActionHelp:
		return HelpText, nil
	case model.ActionBind:
		return s.bind(cmd.DeviceID, sub)
	}

	// catalog validation precedes any transport side effect
	device, reply, err := s.resolveDevice(cmd.DeviceID)
	if err != nil {
		return reply, err
	}

	verb, ok := cmd.MQTTVerb()
	if !ok {
		return "Sorry, I don't understand that message.", ErrUnknownCommand
	}

	if err := s.bridge.PublishCommand(device, verb, sub); err != nil {
		s.logger.Error("failed to publish command",
			zap.String("device_id", device.ID),
			zap.String("command", verb),
			zap.String("chat_id", sub.ChatID),
			zap.Error(err))
		return fmt.Sprintf("Failed to reach device %s, please try again.", device.ID), err
	}

	return ackText(cmd, device), nil
}

func (s *service) bind(deviceID string, sub model.Subscriber) (string, error) {
	if !s.catalog.Has(deviceID) {
		return fmt.Sprintf("Unknown device %q. Use /help to list commands.", deviceID), ErrUnknownDevice
	}
	s.registry.Bind(deviceID, sub)
	return fmt.Sprintf("You are now bound to device %s and will be notified of its status changes.", deviceID), nil
}

func (s *service) resolveDevice(deviceID string) (model.Device, string, error) {
	if deviceID == "" {
		deviceID = s.defaultDevice
	}
	device, ok := s.catalog.Get(deviceID)
	if !ok {
		return model.Device{}, fmt.Sprintf("Unknown device %q. Use /help to list commands.", deviceID), ErrUnknownDevice
	}
	return device, "", nil
}

// ackText confirms the command was accepted for transport, not that the
// device executed it.
func ackText(cmd model.Command, device model.Device) string {
	switch cmd.Action {
	case model.ActionEnable:
		return fmt.Sprintf("Turning on %s!", device.ID)
	case model.ActionDisable:
		return fmt.Sprintf("Turning off %s~", device.ID)
	case model.ActionSetStatus:
		return fmt.Sprintf("Setting %s to %s!", device.ID, cmd.State)
	case model.ActionGetStatus:
		return fmt.Sprintf("Asking %s for its status...", device.ID)
	}
	return "Command accepted."
}
