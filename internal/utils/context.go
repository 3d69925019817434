package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/bertostore/internal/auth"
	"github.com/monocle-dev/bertostore/internal/types"
)

// GetIdentity returns the verified session of the caller, or nil for an
// anonymous request.
func GetIdentity(ctx *gin.Context) *auth.Identity {
	value, exists := ctx.Get(types.ContextIdentityKey)

	if !exists {
		return nil
	}

	identity, ok := value.(*auth.Identity)

	if !ok {
		return nil
	}

	return identity
}

func SetIdentity(ctx *gin.Context, identity *auth.Identity) {
	ctx.Set(types.ContextIdentityKey, identity)
}

func GetRequestID(ctx *gin.Context) string {
	return ctx.GetString(types.ContextRequestIDKey)
}
