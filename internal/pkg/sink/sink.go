// Package sink abstracts the per-platform "send text to a chat" primitive.
// One implementation is registered per platform; callers look sinks up by the
// subscriber's platform instead of branching on platform strings.
package sink

import (
	"context"
	"errors"
	"sync"

	"github.com/anicoll/chatbridge/internal/pkg/model"
)

var (
	ErrAlreadyRegistered = errors.New("sink already registered")
	ErrNoSink            = errors.New("no sink registered for platform")
)

type MessageSink interface {
	Platform() model.Platform
	// SendText delivers text to the subscriber's chat. Implementations must
	// support both 1:1 and group chat ids transparently.
	SendText(ctx context.Context, sub model.Subscriber, text string) error
}

type Registry struct {
	mu    sync.RWMutex
	sinks map[model.Platform]MessageSink
}

func NewRegistry() *Registry {
	return &Registry{
		sinks: make(map[model.Platform]MessageSink),
	}
}

func (r *Registry) Register(s MessageSink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sinks[s.Platform()]; ok {
		return ErrAlreadyRegistered
	}
	r.sinks[s.Platform()] = s
	return nil
}

func (r *Registry) Get(platform model.Platform) (MessageSink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sinks[platform]
	if !ok {
		return nil, ErrNoSink
	}
	return s, nil
}
