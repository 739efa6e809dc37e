package service

import (
	"errors"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"persona-engine/internal/domain"
)

var (
	// ErrNotUpgradeable marks a record that is not legacy or was already
	// upgraded once; the upgrade is a one-way, one-time operation.
	ErrNotUpgradeable = errors.New("record is not upgradeable")
)

// MigrationStats summarizes one migration pass over a history sequence.
type MigrationStats struct {
	Total          int `json:"total"`
	Migrated       int `json:"migrated"`
	Failed         int `json:"failed"`
	AlreadyCurrent int `json:"alreadyCurrent"`
}

// Migrator rewrites persisted records between schema shapes: the in-place
// legacy-shape migration and the 2.x -> 3.x upgrade blend.
type Migrator struct {
	models *ModelCalculator
	logger *zap.Logger
}

func NewMigrator(models *ModelCalculator, logger *zap.Logger) *Migrator {
	return &Migrator{models: models, logger: logger}
}

// Fields hoisted out of the score mapping by the legacy-shape migration.
var hoistedResultFields = []string{domain.ResultValuesProfile, domain.ResultWorkStyleProfile}

// HasLegacyData reports whether the record's score mapping still nests
// sub-profiles that current-schema records keep as top-level result fields.
func HasLegacyData(rec domain.AssessmentRecord) bool {
	scores := asMap(rec.Results[domain.ResultScores])
	if scores == nil {
		return false
	}
	for _, key := range hoistedResultFields {
		if v, ok := scores[key]; ok && !isPrimitive(v) {
			return true
		}
	}
	return false
}

// MigrateRecords rewrites every record that still carries the legacy shape.
// Records that fail post-migration validation are kept unchanged and counted
// as failed; already-current records pass through untouched, which makes the
// operation idempotent.
func (m *Migrator) MigrateRecords(records []domain.AssessmentRecord) ([]domain.AssessmentRecord, MigrationStats) {
	stats := MigrationStats{Total: len(records)}
	out := make([]domain.AssessmentRecord, 0, len(records))

	for _, rec := range records {
		if !HasLegacyData(rec) {
			stats.AlreadyCurrent++
			out = append(out, rec)
			continue
		}

		migrated, ok := m.migrateRecord(rec)
		if !ok {
			stats.Failed++
			out = append(out, rec)
			continue
		}
		stats.Migrated++
		out = append(out, migrated)
	}
	return out, stats
}

func (m *Migrator) migrateRecord(rec domain.AssessmentRecord) (domain.AssessmentRecord, bool) {
	migrated := rec
	results := copyMap(rec.Results)
	scores := copyMap(asMap(results[domain.ResultScores]))

	for _, key := range hoistedResultFields {
		v, ok := scores[key]
		if !ok || isPrimitive(v) {
			continue
		}
		if _, exists := results[key]; !exists {
			results[key] = v
		}
		delete(scores, key)
	}

	cleaned := SanitizeScores(scores, m.logger)
	results[domain.ResultScores] = cleaned
	migrated.Results = results

	now := time.Now().UTC()
	migrated.MigratedFrom = rec.Version
	migrated.MigratedAt = &now
	migrated.Version = domain.SchemaVersion

	if !ValidateScoreMap(cleaned, migrated.Version) {
		m.logger.Error("migrated record failed validation, keeping original",
			zap.String("record_id", rec.ID), zap.String("from_version", rec.Version))
		return domain.AssessmentRecord{}, false
	}
	return migrated, true
}

// CanUpgrade reports whether the 2.x -> 3.x upgrade applies: the record must
// carry a legacy version and must not have been upgraded before.
func CanUpgrade(rec domain.AssessmentRecord) bool {
	return strings.HasPrefix(rec.Version, domain.LegacySchemaPrefix) && rec.UpgradedFrom == ""
}

// UpgradeRecord blends a legacy profile with the small upgrade supplement into
// the current schema. The legacy dimension, archetype, MBTI, values, and
// work-style fields carry over unchanged; the three new model fields are
// computed from the supplement and the legacy dimension scores.
func (m *Migrator) UpgradeRecord(rec domain.AssessmentRecord, answers domain.AnswerSet, questions []domain.Question) (domain.AssessmentRecord, error) {
	if !CanUpgrade(rec) {
		return domain.AssessmentRecord{}, ErrNotUpgradeable
	}

	legacyScores := scoresFromAny(legacyScoreSource(rec))
	upgradeComponents := m.models.ComponentsFromAnswers(answers, questions)

	blended := make(domain.ComponentScores, 9)
	for _, name := range domain.ComponentNames() {
		seed := componentSeedValue(name, legacyScores)
		v := 0.4*float64(upgradeComponents[name]) + 0.6*float64(seed)
		blended[name] = domain.ClampScore(int(math.Round(v)))
	}

	out := rec
	results := copyMap(rec.Results)
	results[domain.ResultComponents] = toAny(blended)
	results[domain.ResultBirkmanColor] = toAny(m.models.ColorModel(legacyScores))
	results[domain.ResultInternalStates] = toAny(m.models.InternalStates(answers, questions))
	out.Results = results

	now := time.Now().UTC()
	completed := rec.CompletedAt
	out.Version = domain.SchemaVersion
	out.UpgradedFrom = rec.Version
	out.OriginalCompletedAt = &completed
	out.UpgradedAt = &now

	m.logger.Info("upgraded legacy record",
		zap.String("record_id", rec.ID), zap.String("from_version", rec.Version))
	return out, nil
}

// legacyScoreSource picks the score mapping a legacy record actually carries,
// checking the shapes old writers produced in order of likelihood.
func legacyScoreSource(rec domain.AssessmentRecord) map[string]any {
	if m := asMap(rec.Results[domain.ResultScores]); len(m) > 0 {
		return m
	}
	if m := asMap(rec.Results[domain.ResultDimensions]); len(m) > 0 {
		return m
	}
	if len(rec.LegacyDimensionScores) > 0 {
		return rec.LegacyDimensionScores
	}
	return rec.LegacyScores
}
