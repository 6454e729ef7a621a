package cmd

import (
	"context"

	"github.com/anicoll/chatbridge/internal/pkg/statusqueue"
)

// mockConsumer is a hand-rolled mock of statusConsumer for cmd tests.
type mockConsumer struct {
	RunFunc func(ctx context.Context, handler statusqueue.Handler) error
}

func (m *mockConsumer) Run(ctx context.Context, handler statusqueue.Handler) error {
	if m.RunFunc != nil {
		return m.RunFunc(ctx, handler)
	}
	<-ctx.Done()
	return ctx.Err()
}

// mockListener is a hand-rolled mock of chatListener for cmd tests.
type mockListener struct {
	RunFunc func(ctx context.Context) error
}

func (m *mockListener) Run(ctx context.Context) error {
	if m.RunFunc != nil {
		return m.RunFunc(ctx)
	}
	<-ctx.Done()
	return ctx.Err()
}
