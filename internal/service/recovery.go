package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"persona-engine/internal/domain"
)

// HistoryRepository is the slice of the persistence capability recovery needs.
type HistoryRepository interface {
	Load(ctx context.Context) ([]domain.AssessmentRecord, error)
	Save(ctx context.Context, records []domain.AssessmentRecord) error
}

// RecoveryStats summarizes one recovery pass over a history sequence.
type RecoveryStats struct {
	Total          int   `json:"total"`
	AlreadyValid   int   `json:"alreadyValid"`
	Recalculated   int   `json:"recalculated"`
	Patched        int   `json:"patched"`
	Failed         int   `json:"failed"`
	DurationMillis int64 `json:"durationMillis"`
}

// Recoverer diagnoses and repairs persisted records whose score data is
// missing, partial, or structurally invalid. Repair is attempted in order:
// full recomputation from retained raw answers, then best-effort patching of
// the strongest existing score source, then giving up and leaving the record
// unchanged for the UI to surface.
type Recoverer struct {
	engine  *Engine
	history HistoryRepository
	logger  *zap.Logger
}

func NewRecoverer(engine *Engine, history HistoryRepository, logger *zap.Logger) *Recoverer {
	return &Recoverer{engine: engine, history: history, logger: logger}
}

// RunStartupRecovery loads the persisted history, repairs what it can, and
// re-persists the whole bounded list when anything changed.
func (r *Recoverer) RunStartupRecovery(ctx context.Context) ([]domain.AssessmentRecord, RecoveryStats, error) {
	records, err := r.history.Load(ctx)
	if err != nil {
		return nil, RecoveryStats{}, err
	}

	repaired, stats, changed := r.RecoverRecords(records)
	if changed {
		if err := r.history.Save(ctx, repaired); err != nil {
			// The repaired records are still usable in memory; persistence
			// failure is reported, not fatal.
			r.logger.Error("persisting recovered history failed", zap.Error(err))
		}
	}
	return repaired, stats, nil
}

// RecoverRecords runs the repair loop over a history sequence. The loop is
// synchronous; only its duration is instrumented.
func (r *Recoverer) RecoverRecords(records []domain.AssessmentRecord) ([]domain.AssessmentRecord, RecoveryStats, bool) {
	start := time.Now()
	stats := RecoveryStats{Total: len(records)}
	out := make([]domain.AssessmentRecord, 0, len(records))
	changed := false

	for _, rec := range records {
		diag := DiagnoseScoreMap(asMap(rec.Results[domain.ResultScores]), rec.Version)
		// A record that was already best-effort patched stays as-is; only a
		// structurally broken score map re-enters the repair loop.
		if diag.Valid && (!missingModelFields(rec) || rec.ScoresRecoveredAt != nil) {
			stats.AlreadyValid++
			out = append(out, rec)
			continue
		}

		if repaired, ok := r.recalculate(rec); ok {
			stats.Recalculated++
			changed = true
			out = append(out, repaired)
			continue
		}
		if repaired, ok := r.patch(rec, diag); ok {
			stats.Patched++
			changed = true
			out = append(out, repaired)
			continue
		}

		stats.Failed++
		r.logger.Error("record unrecoverable, leaving unchanged",
			zap.String("record_id", rec.ID),
			zap.Strings("missing_dimensions", diag.MissingDimensions),
			zap.Bool("looks_legacy", diag.LooksLegacy))
		out = append(out, rec)
	}

	stats.DurationMillis = time.Since(start).Milliseconds()
	r.logger.Info("recovery pass finished",
		zap.Int("total", stats.Total),
		zap.Int("recalculated", stats.Recalculated),
		zap.Int("patched", stats.Patched),
		zap.Int("failed", stats.Failed),
		zap.Int64("duration_ms", stats.DurationMillis))
	return out, stats, changed
}

// recalculate reruns the full pipeline from a retained raw answer set, if the
// record kept one under any of the historical field names.
func (r *Recoverer) recalculate(rec domain.AssessmentRecord) (domain.AssessmentRecord, bool) {
	answers := retainedAnswers(rec)
	if len(answers) == 0 {
		return domain.AssessmentRecord{}, false
	}

	results, err := domain.ResultsMap(r.engine.ComputeProfile(answers))
	if err != nil {
		r.logger.Error("recomputed profile could not be encoded",
			zap.String("record_id", rec.ID), zap.Error(err))
		return domain.AssessmentRecord{}, false
	}
	if !ValidateScoreMap(asMap(results[domain.ResultScores]), domain.SchemaVersion) {
		return domain.AssessmentRecord{}, false
	}

	repaired := rec
	repaired.Results = results
	repaired.Version = domain.SchemaVersion
	repaired.RawAnswers = answers
	stampRecovered(&repaired)
	r.logger.Info("record recovered by recomputation", zap.String("record_id", rec.ID))
	return repaired, true
}

// patch salvages the strongest existing score source on the record and
// hydrates it with whatever sibling model fields survive elsewhere.
func (r *Recoverer) patch(rec domain.AssessmentRecord, _ ScoreDiagnosis) (domain.AssessmentRecord, bool) {
	type candidate struct {
		name string
		m    map[string]any
	}
	candidates := []candidate{
		{"results.dimensions", asMap(rec.Results[domain.ResultDimensions])},
		{"results.scores", asMap(rec.Results[domain.ResultScores])},
		{"dimensionScores", rec.LegacyDimensionScores},
		{"scores", rec.LegacyScores},
	}

	bestRank := -1
	var best candidate
	for _, c := range candidates {
		if c.m == nil {
			continue
		}
		d := DiagnoseScoreMap(c.m, rec.Version)
		if len(d.PresentDimensions) == 0 {
			continue
		}
		if rank := rankScoreCandidate(d); rank > bestRank {
			bestRank = rank
			best = c
		}
	}
	if bestRank < 0 {
		return domain.AssessmentRecord{}, false
	}

	repaired := rec
	results := copyMap(rec.Results)
	results[domain.ResultScores] = SanitizeScores(best.m, r.logger)

	for _, field := range siblingResultFields() {
		if _, ok := results[field]; ok {
			continue
		}
		for _, c := range candidates {
			if v, ok := c.m[field]; ok && !isPrimitive(v) {
				results[field] = v
				break
			}
		}
	}

	repaired.Results = results
	stampRecovered(&repaired)
	r.logger.Info("record recovered by patching",
		zap.String("record_id", rec.ID), zap.String("source", best.name))
	return repaired, true
}

func stampRecovered(rec *domain.AssessmentRecord) {
	now := time.Now().UTC()
	rec.ScoresRecoveredAt = &now
	rec.ScoresRecoveredByVersion = domain.SchemaVersion
}

// siblingResultFields lists the model fields the patch path tries to carry
// over next to the salvaged score mapping.
func siblingResultFields() []string {
	return []string{
		domain.ResultValuesProfile,
		domain.ResultWorkStyleProfile,
		domain.ResultArchetype,
		domain.ResultMBTI,
		domain.ResultBirkmanColor,
		domain.ResultComponents,
		domain.ResultInternalStates,
	}
}

// missingModelFields reports whether a current-schema record lost any of the
// derived-model fields the schema requires (legacy records are exempt; they
// never had them).
func missingModelFields(rec domain.AssessmentRecord) bool {
	if rec.IsLegacyVersion() {
		return false
	}
	for _, field := range []string{domain.ResultBirkmanColor, domain.ResultComponents, domain.ResultInternalStates} {
		if v, ok := rec.Results[field]; !ok || v == nil {
			return true
		}
	}
	return false
}

// retainedAnswers finds a frozen raw answer set under any of the field names
// historical writers used, typed or loosely shaped.
func retainedAnswers(rec domain.AssessmentRecord) domain.AnswerSet {
	if len(rec.RawAnswers) > 0 {
		return rec.RawAnswers.Clone()
	}
	if len(rec.LegacyAnswers) > 0 {
		return rec.LegacyAnswers.Clone()
	}
	for _, key := range []string{domain.ResultRawAnswers, domain.ResultLegacyAnswers} {
		if a := answersFromAny(rec.Results[key]); len(a) > 0 {
			return a
		}
	}
	return nil
}
