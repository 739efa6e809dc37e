package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"persona-engine/internal/catalog"
	"persona-engine/internal/domain"
	"persona-engine/internal/service"
	"persona-engine/internal/store"
)

// AssessmentHandler holds the dependencies for the assessment endpoints.
type AssessmentHandler struct {
	logger    *zap.Logger
	engine    *service.Engine
	migrator  *service.Migrator
	recoverer *service.Recoverer
	history   *store.HistoryStore
	cat       *catalog.Catalog
}

func NewAssessmentHandler(
	logger *zap.Logger,
	engine *service.Engine,
	migrator *service.Migrator,
	recoverer *service.Recoverer,
	history *store.HistoryStore,
	cat *catalog.Catalog,
) *AssessmentHandler {
	return &AssessmentHandler{
		logger:    logger,
		engine:    engine,
		migrator:  migrator,
		recoverer: recoverer,
		history:   history,
		cat:       cat,
	}
}

// CreateAssessment handles POST /assessments: computes the full profile from
// a completed answer set and appends it to the bounded history.
func (h *AssessmentHandler) CreateAssessment(c *gin.Context) {
	var req struct {
		UserName string           `json:"userName" binding:"required"`
		Answers  domain.AnswerSet `json:"answers" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create assessment request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if len(req.Answers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "answers are required"})
		return
	}

	rec, err := h.engine.BuildRecord(req.UserName, req.Answers)
	if err != nil {
		h.logger.Error("build assessment record failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute profile"})
		return
	}

	if err := h.history.Append(c.Request.Context(), rec); err != nil {
		h.logger.Error("persist assessment failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not persist assessment"})
		return
	}
	// A completed assessment supersedes any in-progress snapshot.
	if err := h.history.ClearSession(c.Request.Context()); err != nil {
		h.logger.Warn("clear session after completion failed", zap.Error(err))
	}

	c.JSON(http.StatusCreated, gin.H{"record": rec})
}

// ListAssessments handles GET /assessments.
func (h *AssessmentHandler) ListAssessments(c *gin.Context) {
	records, err := h.history.Load(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// MigrateAssessments handles POST /assessments/migrate: rewrites stored
// legacy-shape records into the current shape.
func (h *AssessmentHandler) MigrateAssessments(c *gin.Context) {
	records, err := h.history.Load(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load history"})
		return
	}

	migrated, stats := h.migrator.MigrateRecords(records)
	if stats.Migrated > 0 {
		if err := h.history.Save(c.Request.Context(), migrated); err != nil {
			h.logger.Error("persist migrated history failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not persist migrated records"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"migratedRecords": migrated, "stats": stats})
}

// UpgradeAssessment handles POST /assessments/:id/upgrade: one-time blend of
// a legacy record with the supplemental answer set.
func (h *AssessmentHandler) UpgradeAssessment(c *gin.Context) {
	var req struct {
		Answers domain.AnswerSet `json:"answers" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	records, err := h.history.Load(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load history"})
		return
	}

	id := c.Param("id")
	idx := -1
	for i, rec := range records {
		if rec.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		c.JSON(http.StatusNotFound, gin.H{"error": "assessment not found"})
		return
	}

	upgraded, err := h.migrator.UpgradeRecord(records[idx], req.Answers, h.cat.UpgradeQuestions())
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "record is not upgradeable"})
		return
	}

	records[idx] = upgraded
	if err := h.history.Save(c.Request.Context(), records); err != nil {
		h.logger.Error("persist upgraded record failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not persist upgraded record"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": upgraded})
}

// RecoverAssessments handles POST /assessments/recover: runs the repair loop
// over the stored history and re-persists anything that changed.
func (h *AssessmentHandler) RecoverAssessments(c *gin.Context) {
	records, stats, err := h.recoverer.RunStartupRecovery(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "stats": stats})
}

// ListQuestions handles GET /catalog/questions.
func (h *AssessmentHandler) ListQuestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"questions": h.cat.Questions})
}
