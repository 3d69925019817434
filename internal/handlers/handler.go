package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/bertostore/internal/auth"
	"github.com/monocle-dev/bertostore/internal/models"
	"github.com/monocle-dev/bertostore/internal/store"
	"github.com/monocle-dev/bertostore/internal/types"
	"github.com/monocle-dev/bertostore/internal/utils"
	log "github.com/sirupsen/logrus"
)

type OrderNotifier interface {
	OrderPlaced(ctx context.Context, order models.Order) error
}

// StatusReporter describes a background job for the health endpoint.
type StatusReporter interface {
	GetStatus() map[string]interface{}
}

type CookieConfig struct {
	Domain string
	Secure bool
}

type Options struct {
	Store     store.Store
	Codec     *auth.Codec
	Hub       *Hub
	Notifier  OrderNotifier
	Scheduler StatusReporter
	Cookie    CookieConfig
	Logger    log.FieldLogger
}

// Handler serves the JSON API. Hub, Notifier and Scheduler are optional.
type Handler struct {
	store     store.Store
	codec     *auth.Codec
	hub       *Hub
	notifier  OrderNotifier
	scheduler StatusReporter
	cookie    CookieConfig
	logger    log.FieldLogger
}

func New(opts Options) *Handler {
	logger := opts.Logger

	if logger == nil {
		logger = log.StandardLogger()
	}

	return &Handler{
		store:     opts.Store,
		codec:     opts.Codec,
		hub:       opts.Hub,
		notifier:  opts.Notifier,
		scheduler: opts.Scheduler,
		cookie:    opts.Cookie,
		logger:    logger,
	}
}

func (h *Handler) Codec() *auth.Codec {
	return h.codec
}

func (h *Handler) Hub() *Hub {
	return h.hub
}

func (h *Handler) requestLogger(ctx *gin.Context) log.FieldLogger {
	return h.logger.WithField("request_id", utils.GetRequestID(ctx))
}

func (h *Handler) internalError(ctx *gin.Context, err error, message string) {
	h.requestLogger(ctx).WithError(err).Error(message)
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func (h *Handler) refresh(resource, id string) {
	h.hub.Broadcast(types.FeedEvent{Type: types.FeedRefresh, Resource: resource, ID: id})
}
