package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"persona-engine/internal/domain"
)

// Logical keys inside the Store.
const (
	historyKey = "assessment:history"
	sessionKey = "assessment:session"
)

// HistoryStore layers the bounded assessment history and the single
// in-progress session snapshot on any Store. Writes are plain
// read-modify-write sequences; only one session is ever active, so there is
// no optimistic-concurrency protection.
type HistoryStore struct {
	store  Store
	logger *zap.Logger
}

func NewHistoryStore(store Store, logger *zap.Logger) *HistoryStore {
	return &HistoryStore{store: store, logger: logger}
}

// Load returns the persisted history, most-recent-first. A missing key is an
// empty history; a corrupted payload is logged and also treated as empty so
// the caller can keep running instead of crashing on old data.
func (h *HistoryStore) Load(ctx context.Context) ([]domain.AssessmentRecord, error) {
	raw, err := h.store.Get(ctx, historyKey)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		h.logFailure("get", historyKey, err)
		return nil, fmt.Errorf("load history: %w", err)
	}

	var records []domain.AssessmentRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		h.logger.Error("history payload is corrupted, treating as empty",
			zap.String("key", historyKey), zap.Error(err))
		return nil, nil
	}
	return records, nil
}

// Save persists the full history, trimmed to the most recent records.
func (h *HistoryStore) Save(ctx context.Context, records []domain.AssessmentRecord) error {
	if len(records) > domain.HistoryLimit {
		records = records[:domain.HistoryLimit]
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := h.store.Set(ctx, historyKey, string(raw)); err != nil {
		h.logFailure("set", historyKey, err)
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// Append prepends a completed record and persists the trimmed history.
func (h *HistoryStore) Append(ctx context.Context, rec domain.AssessmentRecord) error {
	records, err := h.Load(ctx)
	if err != nil {
		return err
	}
	return h.Save(ctx, append([]domain.AssessmentRecord{rec}, records...))
}

// SaveSession stores the at-most-one in-progress session snapshot.
func (h *HistoryStore) SaveSession(ctx context.Context, s domain.SessionSnapshot) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := h.store.Set(ctx, sessionKey, string(raw)); err != nil {
		h.logFailure("set", sessionKey, err)
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// LoadSession returns the in-progress snapshot; the second return is false
// when none exists.
func (h *HistoryStore) LoadSession(ctx context.Context) (domain.SessionSnapshot, bool, error) {
	raw, err := h.store.Get(ctx, sessionKey)
	if errors.Is(err, ErrNotFound) {
		return domain.SessionSnapshot{}, false, nil
	}
	if err != nil {
		h.logFailure("get", sessionKey, err)
		return domain.SessionSnapshot{}, false, fmt.Errorf("load session: %w", err)
	}

	var s domain.SessionSnapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		h.logger.Error("session payload is corrupted, discarding",
			zap.String("key", sessionKey), zap.Error(err))
		return domain.SessionSnapshot{}, false, nil
	}
	return s, true, nil
}

// ClearSession removes the in-progress snapshot.
func (h *HistoryStore) ClearSession(ctx context.Context) error {
	if err := h.store.Remove(ctx, sessionKey); err != nil {
		h.logFailure("remove", sessionKey, err)
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (h *HistoryStore) logFailure(op, key string, err error) {
	h.logger.Error("store operation failed",
		zap.String("op", op),
		zap.String("key", key),
		zap.Bool("quota_related", isQuotaError(err)),
		zap.Error(err))
}

// isQuotaError flags storage-exhaustion failures so they can be distinguished
// from plain unavailability in the logs.
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "quota") ||
		strings.Contains(msg, "oom") ||
		strings.Contains(msg, "no space") ||
		strings.Contains(msg, "maxmemory")
}
