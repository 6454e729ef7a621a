package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/anicoll/chatbridge/internal/pkg/model"
)

const linePushPath = "/v2/bot/message/push"

// lineSink pushes messages through the LINE Messaging API. The push endpoint
// addresses users, groups and rooms through the same "to" field.
type lineSink struct {
	apiURL string
	token  string
	client *http.Client
}

func NewLine(apiURL, accessToken string) *lineSink {
	return &lineSink{
		apiURL: apiURL,
		token:  accessToken,
		client: &http.Client{Timeout: time.Second * 5},
	}
}

func (s *lineSink) Platform() model.Platform {
	return model.PlatformLine
}

type linePushRequest struct {
	To       string            `json:"to"`
	Messages []lineTextMessage `json:"messages"`
}

type lineTextMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (s *lineSink) SendText(ctx context.Context, sub model.Subscriber, text string) error {
	payload, err := json.Marshal(linePushRequest{
		To:       sub.ChatID,
		Messages: []lineTextMessage{{Type: "text", Text: text}},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+linePushPath, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("line push returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
