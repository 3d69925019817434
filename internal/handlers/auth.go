package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/bertostore/internal/auth"
	"github.com/monocle-dev/bertostore/internal/models"
	"github.com/monocle-dev/bertostore/internal/store"
	"github.com/monocle-dev/bertostore/internal/utils"
	"github.com/monocle-dev/bertostore/internal/validate"
)

func (h *Handler) setSessionCookie(ctx *gin.Context, token string, maxAge int) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		Domain:   h.cookie.Domain,
		MaxAge:   maxAge,
		Secure:   h.cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) startSession(ctx *gin.Context, user *models.User) bool {
	token, err := h.codec.Issue(auth.IdentityOf(*user))

	if err != nil {
		h.internalError(ctx, err, "Failed to issue session token")
		return false
	}

	h.setSessionCookie(ctx, token, int(h.codec.TTL().Seconds()))

	return true
}

func (h *Handler) Register(ctx *gin.Context) {
	var payload map[string]interface{}

	if err := ctx.ShouldBindJSON(&payload); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validate.ErrInvalidBody.Message})
		return
	}

	registration, err := validate.ParseRegistration(payload)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.store.CreateUser(ctx.Request.Context(), models.NewUser{
		Name:     registration.Name,
		Email:    registration.Email,
		Password: registration.Password,
		Role:     models.RoleCustomer,
	})

	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			ctx.JSON(http.StatusConflict, gin.H{"error": store.ErrEmailTaken.Error()})
			return
		}
		h.internalError(ctx, err, "Failed to create user")
		return
	}

	if !h.startSession(ctx, user) {
		return
	}

	h.requestLogger(ctx).WithField("user_id", user.ID).Info("Registered customer")

	ctx.JSON(http.StatusCreated, gin.H{"user": user.Public()})
}

func (h *Handler) Login(ctx *gin.Context) {
	var payload map[string]interface{}

	if err := ctx.ShouldBindJSON(&payload); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validate.ErrInvalidBody.Message})
		return
	}

	credentials, err := validate.ParseLogin(payload)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.store.FindUserByEmail(ctx.Request.Context(), credentials.Email)

	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.internalError(ctx, err, "Failed to look up user")
		return
	}

	if user == nil || !auth.VerifyPassword(credentials.Password, user.PasswordHash) {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password."})
		return
	}

	if !h.startSession(ctx, user) {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": user.Public()})
}

func (h *Handler) Logout(ctx *gin.Context) {
	h.setSessionCookie(ctx, "", -1)

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// Me reports the signed-in user, or null for anonymous callers and for
// sessions whose user no longer exists.
func (h *Handler) Me(ctx *gin.Context) {
	identity := utils.GetIdentity(ctx)

	if identity == nil {
		ctx.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}

	user, err := h.store.FindUserByID(ctx.Request.Context(), identity.ID)

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusOK, gin.H{"user": nil})
			return
		}
		h.internalError(ctx, err, "Failed to load current user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": user.Public()})
}
