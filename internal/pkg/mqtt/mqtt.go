// Package mqtt bridges typed device commands onto the MQTT device transport
// and hands raw command payloads to device-side handlers.
//
// Topic scheme, stable per device family:
//
//	{manufacturer}/{device_type}/{device_id}/command  broker -> device, JSON model.CommandMessage
//	{manufacturer}/{device_type}/{device_id}/status   device -> observers, retained JSON model.StatusMessage
//
// Devices subscribe to {manufacturer}/{device_type}/# and must filter on the
// device_id carried in the payload, since devices of one family share the
// subscription.
package mqtt

import (
	"errors"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
)

// tokenTimeout bounds every wait on a paho token: connect, publish, subscribe.
const tokenTimeout = time.Second * 5

var (
	ErrConnectTimeout = errors.New("unable to connect in time")
	ErrPublishTimeout = errors.New("publish not confirmed in time")
)

type service struct {
	client paho_mqtt.Client
}

func New(client paho_mqtt.Client) *service {
	return &service{
		client: client,
	}
}

func (s *service) Connect() error {
	token := s.client.Connect()
	res := token.WaitTimeout(tokenTimeout)
	if res {
		return nil
	}
	if err := token.Error(); err != nil {
		return err
	}
	return ErrConnectTimeout
}

func (s *service) Disconnect() {
	s.client.Disconnect(250)
}
