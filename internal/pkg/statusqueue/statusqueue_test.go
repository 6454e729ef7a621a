package statusqueue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anicoll/chatbridge/internal/pkg/model"
)

func TestDecode(t *testing.T) {
	tests := map[string]struct {
		payload string
		wantErr bool
		want    model.StatusEvent
	}{
		"valid event": {
			payload: `{"device_id":"esp32_light_001","device_status":"on","chat_id":"100","platform":"telegram","username":"alice"}`,
			want: model.StatusEvent{
				DeviceID: "esp32_light_001",
				State:    model.StateOn,
				ChatID:   "100",
				Platform: model.PlatformTelegram,
				Username: "alice",
			},
		},
		"not json": {
			payload: "not json at all",
			wantErr: true,
		},
		"missing status": {
			payload: `{"device_id":"esp32_light_001","chat_id":"100","platform":"telegram"}`,
			wantErr: true,
		},
		"missing chat id": {
			payload: `{"device_id":"esp32_light_001","device_status":"on","platform":"telegram"}`,
			wantErr: true,
		},
		"unsupported platform": {
			payload: `{"device_id":"esp32_light_001","device_status":"on","chat_id":"100","platform":"carrierpigeon"}`,
			wantErr: true,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := Decode([]byte(tt.payload))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubject(t *testing.T) {
	tests := map[string]struct {
		event model.StatusEvent
		want  string
	}{
		"telegram": {
			event: model.StatusEvent{Platform: model.PlatformTelegram, ChatID: "100"},
			want:  "status.telegram.100.status_update",
		},
		"line": {
			event: model.StatusEvent{Platform: model.PlatformLine, ChatID: "U4af4980629"},
			want:  "status.line.U4af4980629.status_update",
		},
		"chat id with separators": {
			event: model.StatusEvent{Platform: model.PlatformTelegram, ChatID: "a.b c*d"},
			want:  "status.telegram.a_b_c_d.status_update",
		},
		"empty chat id": {
			event: model.StatusEvent{Platform: model.PlatformTelegram},
			want:  "status.telegram.unknown.status_update",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, Subject(tt.event))
		})
	}
}

func applyOptions(t *testing.T, s *service) nats.Options {
	t.Helper()
	opts := nats.GetDefaultOptions()
	for _, opt := range s.connectOptions() {
		require.NoError(t, opt(&opts))
	}
	return opts
}

func TestConnectOptionsConsumerLeavesReconnectToRunLoop(t *testing.T) {
	opts := applyOptions(t, New("nats://ignored"))

	assert.False(t, opts.AllowReconnect, "the Run loop owns consumer reconnects")
}

func TestConnectOptionsClientReconnectRetriesForever(t *testing.T) {
	opts := applyOptions(t, New("nats://ignored", WithClientReconnect(), WithBackoff(250*time.Millisecond)))

	assert.True(t, opts.AllowReconnect)
	assert.Equal(t, -1, opts.MaxReconnect, "publish-only processes must never give up reconnecting")
	assert.True(t, opts.RetryOnFailedConnect)
	assert.Equal(t, 250*time.Millisecond, opts.ReconnectWait)
}

func TestConnectDrainsStaleCloseNotification(t *testing.T) {
	s := New("nats://127.0.0.1:1")
	s.lostCh <- errors.New("close event from a torn-down connection attempt")

	_ = s.Connect(context.Background()) // no server listening, fails fast

	select {
	case err := <-s.lostCh:
		t.Fatalf("stale close notification survived connect: %v", err)
	default:
	}
}

// fakeMsg implements just enough of jetstream.Msg to observe ack decisions.
type fakeMsg struct {
	jetstream.Msg
	data   []byte
	acked  bool
	termed bool
	naked  bool
}

func (m *fakeMsg) Data() []byte {
	return m.data
}

func (m *fakeMsg) Ack() error {
	m.acked = true
	return nil
}

func (m *fakeMsg) Term() error {
	m.termed = true
	return nil
}

func (m *fakeMsg) Nak() error {
	m.naked = true
	return nil
}

func TestHandleMsgMalformedPayloadTerminatedNotRequeued(t *testing.T) {
	s := New("nats://ignored")
	msg := &fakeMsg{data: []byte("not json")}

	called := false
	s.handleMsg(context.Background(), msg, func(context.Context, model.StatusEvent) error {
		called = true
		return nil
	})

	assert.False(t, called, "handler must not see poison messages")
	assert.True(t, msg.termed)
	assert.False(t, msg.acked)
	assert.False(t, msg.naked, "poison messages must not be requeued")
}

func TestHandleMsgHandlerFailureTerminatedNotRequeued(t *testing.T) {
	s := New("nats://ignored")
	msg := &fakeMsg{data: []byte(`{"device_id":"d1","device_status":"on","chat_id":"100","platform":"telegram"}`)}

	s.handleMsg(context.Background(), msg, func(context.Context, model.StatusEvent) error {
		return errors.New("fan-out exploded")
	})

	assert.True(t, msg.termed)
	assert.False(t, msg.acked)
	assert.False(t, msg.naked, "a retry would duplicate the whole fan-out")
}

func TestHandleMsgAcksAfterHandlerSuccess(t *testing.T) {
	s := New("nats://ignored")
	msg := &fakeMsg{data: []byte(`{"device_id":"d1","device_status":"on","chat_id":"100","platform":"telegram"}`)}

	var got model.StatusEvent
	s.handleMsg(context.Background(), msg, func(_ context.Context, ev model.StatusEvent) error {
		got = ev
		return nil
	})

	assert.True(t, msg.acked)
	assert.False(t, msg.termed)
	assert.Equal(t, "d1", got.DeviceID)
	assert.Equal(t, model.StateOn, got.State)
}
