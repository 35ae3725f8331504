package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type UsersReloader interface {
	Reload(ctx context.Context) (int, error)
	Invalidate()
}

// AdminUsersHandler lets an admin pick up edits to users.json without a restart.
type AdminUsersHandler struct {
	users UsersReloader
	log   *slog.Logger
}

func NewAdminUsersHandler(users UsersReloader, log *slog.Logger) *AdminUsersHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AdminUsersHandler{users: users, log: log}
}

// ReloadUsers re-reads users.json now. With ?lazy=true it only drops the
// cached snapshot and the next authenticated request loads the file.
func (h *AdminUsersHandler) ReloadUsers(ctx *gin.Context) {
	if lazy, _ := strconv.ParseBool(ctx.Query("lazy")); lazy {
		h.users.Invalidate()
		h.log.InfoContext(ctx.Request.Context(), "users_cache_invalidated")

		ctx.JSON(http.StatusAccepted, gin.H{"message": "Users cache invalidated"})
		return
	}

	n, err := h.users.Reload(ctx.Request.Context())
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "users reload failed", "err", err)
		RespondInternal(ctx, "Could not reload users")
		return
	}

	h.log.InfoContext(ctx.Request.Context(), "users_reloaded", "count", n)

	ctx.JSON(http.StatusOK, gin.H{"message": "Users reloaded", "count": n})
}
