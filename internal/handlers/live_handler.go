package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetly/internal/logger"
)

// LiveServer upgrades a request into a live event stream for one user.
type LiveServer interface {
	Serve(w http.ResponseWriter, r *http.Request, userID uint) error
}

// LiveHandler streams the user's budget and expense events over WebSocket.
type LiveHandler struct {
	live LiveServer
}

// NewLiveHandler creates a new LiveHandler.
func NewLiveHandler(live LiveServer) *LiveHandler {
	return &LiveHandler{live: live}
}

// Stream upgrades the connection.
// @Summary     Live events
// @Description WebSocket stream of the user's budget and expense events
// @Tags        live
// @Security    CookieAuth
// @Success     101 "Switching protocols"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /ws [get]
func (h *LiveHandler) Stream(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	// The upgrader has already answered the client when this fails.
	if err := h.live.Serve(c.Writer, c.Request, userID); err != nil {
		logger.Get().Debugw("websocket session ended", "user_id", userID, "error", err)
	}
}
