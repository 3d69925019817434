package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/bertostore/internal/auth"
	"github.com/monocle-dev/bertostore/internal/utils"
)

// Session attaches the caller's identity from the session cookie or, when
// the cookie is missing or fails verification, an Authorization bearer
// header. Requests without a valid token continue anonymously.
func Session(codec *auth.Codec) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if identity := sessionIdentity(ctx, codec); identity != nil {
			utils.SetIdentity(ctx, identity)
		}

		ctx.Next()
	}
}

func sessionIdentity(ctx *gin.Context, codec *auth.Codec) *auth.Identity {
	if token, err := ctx.Cookie(auth.SessionCookie); err == nil && token != "" {
		if identity, err := codec.Verify(token); err == nil {
			return identity
		}
	}

	if token := utils.BearerToken(ctx.GetHeader("Authorization")); token != "" {
		if identity, err := codec.Verify(token); err == nil {
			return identity
		}
	}

	return nil
}

// Authorize rejects callers the policy does not allow: 401 when nobody is
// signed in, 403 when the signed-in user lacks the permission.
func Authorize(resource auth.Resource, action auth.Action) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		identity := utils.GetIdentity(ctx)

		if auth.Allow(identity, resource, action) {
			ctx.Next()
			return
		}

		if identity == nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized."})
			return
		}

		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden."})
	}
}
