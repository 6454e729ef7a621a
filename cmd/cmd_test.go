package cmd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/anicoll/chatbridge/internal/pkg/model"
	"github.com/anicoll/chatbridge/internal/pkg/statusqueue"
)

func TestRunReturnsConsumerError(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wantErr := errors.New("stream gone")
	queue := &mockConsumer{RunFunc: func(context.Context, statusqueue.Handler) error {
		return wantErr
	}}
	chat := &mockListener{RunFunc: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}

	err := run(ctx, queue, chat, noopHandler, nil)
	assert.ErrorIs(t, err, wantErr)
}

func TestRunReturnsListenerError(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wantErr := errors.New("polling failed")
	queue := &mockConsumer{RunFunc: func(ctx context.Context, _ statusqueue.Handler) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	chat := &mockListener{RunFunc: func(context.Context) error {
		return wantErr
	}}

	err := run(ctx, queue, chat, noopHandler, nil)
	assert.ErrorIs(t, err, wantErr)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())

	queue := &mockConsumer{RunFunc: func(ctx context.Context, _ statusqueue.Handler) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	chat := &mockListener{RunFunc: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}

	done := make(chan error, 1)
	go func() {
		done <- run(ctx, queue, chat, noopHandler, nil)
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop after context cancellation")
	}
}

func noopHandler(context.Context, model.StatusEvent) error {
	return nil
}
