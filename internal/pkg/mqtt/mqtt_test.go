package mqtt

import (
	"testing"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anicoll/chatbridge/internal/pkg/model"
)

type fakeToken struct {
	waited time.Duration
}

func (t *fakeToken) Wait() bool { return true }

func (t *fakeToken) WaitTimeout(d time.Duration) bool {
	t.waited = d
	return true
}

func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func (t *fakeToken) Error() error { return nil }

type fakeClient struct {
	tokens   []*fakeToken
	qos      byte
	retained bool
}

func (c *fakeClient) newToken() paho_mqtt.Token {
	token := &fakeToken{}
	c.tokens = append(c.tokens, token)
	return token
}

func (c *fakeClient) IsConnected() bool       { return true }
func (c *fakeClient) IsConnectionOpen() bool  { return true }
func (c *fakeClient) Connect() paho_mqtt.Token { return c.newToken() }
func (c *fakeClient) Disconnect(quiesce uint) {}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho_mqtt.Token {
	c.qos = qos
	c.retained = retained
	return c.newToken()
}

func (c *fakeClient) Subscribe(topic string, qos byte, callback paho_mqtt.MessageHandler) paho_mqtt.Token {
	return c.newToken()
}

func (c *fakeClient) SubscribeMultiple(filters map[string]byte, callback paho_mqtt.MessageHandler) paho_mqtt.Token {
	return c.newToken()
}

func (c *fakeClient) Unsubscribe(topics ...string) paho_mqtt.Token { return c.newToken() }

func (c *fakeClient) AddRoute(topic string, callback paho_mqtt.MessageHandler) {}

func (c *fakeClient) OptionsReader() paho_mqtt.ClientOptionsReader {
	return paho_mqtt.ClientOptionsReader{}
}

func lightDevice() model.Device {
	return model.Device{ID: "esp32_light_001", Manufacturer: model.ManufacturerEsp32, Type: model.DeviceTypeLight}
}

func TestTokenWaitsShareOneTimeout(t *testing.T) {
	client := &fakeClient{}
	s := New(client)
	sub := model.Subscriber{Platform: model.PlatformTelegram, ChatID: "100", DisplayName: "alice"}

	require.NoError(t, s.Connect())
	require.NoError(t, s.PublishCommand(lightDevice(), "on", sub))
	require.NoError(t, s.PublishStatus(lightDevice(), model.StateOn))
	require.NoError(t, s.SubscribeCommands(model.ManufacturerEsp32, model.DeviceTypeLight, func(model.CommandMessage) {}))

	require.Len(t, client.tokens, 4)
	for _, token := range client.tokens {
		assert.Equal(t, tokenTimeout, token.waited)
	}
}

func TestPublishCommandQoSOne(t *testing.T) {
	client := &fakeClient{}
	s := New(client)

	require.NoError(t, s.PublishCommand(lightDevice(), "on", model.Subscriber{Platform: model.PlatformTelegram, ChatID: "100"}))

	assert.Equal(t, byte(1), client.qos)
	assert.False(t, client.retained, "commands must not be retained")
}

func TestPublishStatusRetained(t *testing.T) {
	client := &fakeClient{}
	s := New(client)

	require.NoError(t, s.PublishStatus(lightDevice(), model.StateOff))

	assert.True(t, client.retained, "late subscribers rely on the retained last state")
}
