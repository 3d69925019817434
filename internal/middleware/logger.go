package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/monocle-dev/bertostore/internal/types"
	log "github.com/sirupsen/logrus"
)

func RequestLogger(logger log.FieldLogger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		requestID := ctx.GetHeader(types.RequestIDHeader)

		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx.Set(types.ContextRequestIDKey, requestID)
		ctx.Header(types.RequestIDHeader, requestID)

		ctx.Next()

		fields := log.Fields{
			"request_id": requestID,
			"method":     ctx.Request.Method,
			"path":       ctx.Request.URL.Path,
			"status":     ctx.Writer.Status(),
			"latency":    time.Since(start).String(),
			"remoteAddr": ctx.ClientIP(),
		}

		entry := logger.WithFields(fields)

		switch {
		case ctx.Writer.Status() >= 500:
			entry.Error("request failed")
		case ctx.Writer.Status() >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request served")
		}
	}
}
