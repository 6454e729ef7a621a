package cmd

import (
	"context"

	"github.com/anicoll/chatbridge/internal/pkg/statusqueue"
)

// statusConsumer is what run expects from the status queue consumer side.
type statusConsumer interface {
	Run(ctx context.Context, handler statusqueue.Handler) error
}

// chatListener is one long-running inbound platform listener.
type chatListener interface {
	Run(ctx context.Context) error
}
