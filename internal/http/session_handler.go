package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"persona-engine/internal/domain"
	"persona-engine/internal/store"
)

// SessionHandler exposes the single in-progress assessment snapshot.
type SessionHandler struct {
	logger  *zap.Logger
	history *store.HistoryStore
}

func NewSessionHandler(logger *zap.Logger, history *store.HistoryStore) *SessionHandler {
	return &SessionHandler{logger: logger, history: history}
}

// GetSession handles GET /session.
func (h *SessionHandler) GetSession(c *gin.Context) {
	session, ok, err := h.history.LoadSession(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load session"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no session in progress"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// PutSession handles PUT /session: stores the in-progress snapshot, keeping
// the original start time when one already exists.
func (h *SessionHandler) PutSession(c *gin.Context) {
	var req struct {
		UserName             string           `json:"userName" binding:"required"`
		CurrentQuestionIndex int              `json:"currentQuestionIndex"`
		Answers              domain.AnswerSet `json:"answers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid session request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	now := time.Now().UTC()
	session := domain.SessionSnapshot{
		UserName:             req.UserName,
		CurrentQuestionIndex: req.CurrentQuestionIndex,
		Answers:              req.Answers,
		StartedAt:            now,
		LastUpdated:          now,
	}
	if existing, ok, err := h.history.LoadSession(c.Request.Context()); err == nil && ok {
		session.StartedAt = existing.StartedAt
	}

	if err := h.history.SaveSession(c.Request.Context(), session); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// DeleteSession handles DELETE /session.
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	if err := h.history.ClearSession(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not clear session"})
		return
	}
	c.Status(http.StatusNoContent)
}
