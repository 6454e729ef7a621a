package mqtt

import (
	"encoding/json"
	"strings"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/anicoll/chatbridge/internal/pkg/model"
)

// PublishCommand encodes the command plus originator metadata and publishes it
// on the device's command topic. A failed or unconfirmed publish is returned
// to the caller, never dropped.
func (s *service) PublishCommand(device model.Device, verb string, sub model.Subscriber) error {
	payload, err := json.Marshal(model.CommandMessage{
		Command:  verb,
		DeviceID: device.ID,
		ChatID:   sub.ChatID,
		Platform: sub.Platform,
		Username: sub.DisplayName,
	})
	if err != nil {
		return err
	}

	topic := CommandTopic(device)
	token := s.client.Publish(topic, 1, false, payload)
	if res := token.WaitTimeout(tokenTimeout); !res {
		return ErrPublishTimeout
	}
	if err := token.Error(); err != nil {
		return err
	}
	zap.L().Debug("published command", zap.String("topic", topic), zap.String("command", verb))
	return nil
}

// PublishStatus publishes the retained last-known state of a device so late
// subscribers see it immediately.
func (s *service) PublishStatus(device model.Device, state model.DeviceState) error {
	payload, err := json.Marshal(model.StatusMessage{Status: state})
	if err != nil {
		return err
	}
	token := s.client.Publish(StatusTopic(device), 0, true, payload)
	if res := token.WaitTimeout(tokenTimeout); !res {
		return ErrPublishTimeout
	}
	return token.Error()
}

// SubscribeCommands registers handler for every command published to the
// device family. Payloads that do not decode as a command message are logged
// and skipped; the subscription stays up.
func (s *service) SubscribeCommands(manufacturer model.Manufacturer, deviceType model.DeviceType, handler func(model.CommandMessage)) error {
	topic := FamilyWildcard(manufacturer, deviceType)
	token := s.client.Subscribe(topic, 1, func(_ paho_mqtt.Client, msg paho_mqtt.Message) {
		if !strings.HasSuffix(msg.Topic(), "/command") {
			return
		}
		var cmd model.CommandMessage
		if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
			zap.L().Warn("discarding undecodable command payload",
				zap.String("topic", msg.Topic()), zap.Error(err))
			return
		}
		handler(cmd)
	})
	if res := token.WaitTimeout(tokenTimeout); !res {
		return ErrConnectTimeout
	}
	if err := token.Error(); err != nil {
		return err
	}
	zap.L().Info("subscribed to command topic", zap.String("topic", topic))
	return nil
}
