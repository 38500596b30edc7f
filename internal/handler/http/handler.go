// Package http implements the HTTP transport layer of the sync server. It
// provides middleware, route handlers, and request/response utilities for
// the Replicache pull, push, and poke endpoints. Authentication, logging,
// and tracing concerns are all handled at this layer before requests are
// forwarded to the sync engine.
package http

import (
	"context"
	"net/http"

	"github.com/declanlscott/printdesk-sub002/internal/config"
	"github.com/declanlscott/printdesk-sub002/internal/logger"
	"github.com/declanlscott/printdesk-sub002/internal/sync"
	"github.com/declanlscott/printdesk-sub002/models"
)

// Puller is the pull half of the sync engine as the transport sees it.
type Puller interface {
	Pull(ctx context.Context, principal models.Principal, req models.PullRequest) (sync.PullResult, error)
}

// Pusher is the push half of the sync engine as the transport sees it.
type Pusher interface {
	Push(ctx context.Context, principal models.Principal, req models.PushRequest) (sync.PushResult, error)
}

// Subscriber registers a websocket subscriber for poke messages.
type Subscriber interface {
	Subscribe(w http.ResponseWriter, r *http.Request, tenantID string) error
}

type Handler struct {
	puller     Puller
	pusher     Pusher
	subscriber Subscriber
	app        config.App

	logger *logger.Logger
}

func NewHandler(puller Puller, pusher Pusher, subscriber Subscriber, app config.App, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		puller:     puller,
		pusher:     pusher,
		subscriber: subscriber,
		app:        app,
		logger:     logger,
	}
}
