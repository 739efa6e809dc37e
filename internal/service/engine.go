package service

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"persona-engine/internal/catalog"
	"persona-engine/internal/domain"
)

// Engine is the single computation entry point: answers in, full
// current-schema profile out. It never returns an error; every calculator
// recovers to its documented neutral default.
type Engine struct {
	cat      *catalog.Catalog
	agg      *Aggregator
	models   *ModelCalculator
	resolver *ArchetypeResolver
	logger   *zap.Logger
}

func NewEngine(cat *catalog.Catalog, logger *zap.Logger) *Engine {
	return &Engine{
		cat:      cat,
		agg:      NewAggregator(cat.Questions, logger),
		models:   NewModelCalculator(cat, logger),
		resolver: NewArchetypeResolver(cat.Archetypes, logger),
		logger:   logger,
	}
}

// ComputeProfile runs the full pipeline: aggregation, derived models, and
// archetype resolution.
func (e *Engine) ComputeProfile(answers domain.AnswerSet) *domain.Profile {
	scores := e.agg.DimensionScores(answers)

	return &domain.Profile{
		Scores:           scores,
		ValuesProfile:    e.agg.ValuesProfile(answers),
		WorkStyleProfile: e.agg.WorkStyleProfile(answers),
		Archetype:        e.resolver.Resolve(scores),
		MBTI:             e.models.MBTI(scores),
		BirkmanColor:     e.models.ColorModel(scores),
		Components:       e.models.Components(scores, answers),
		InternalStates:   e.models.InternalStates(answers, e.cat.Questions),
	}
}

// BuildRecord computes a profile and wraps it into a persistable assessment
// record stamped with the current schema version. A frozen copy of the raw
// answers is retained so a damaged record can be recomputed later.
func (e *Engine) BuildRecord(userName string, answers domain.AnswerSet) (domain.AssessmentRecord, error) {
	profile := e.ComputeProfile(answers)
	results, err := domain.ResultsMap(profile)
	if err != nil {
		return domain.AssessmentRecord{}, err
	}
	return domain.AssessmentRecord{
		ID:          uuid.NewString(),
		UserName:    userName,
		CompletedAt: time.Now().UTC(),
		Version:     domain.SchemaVersion,
		Results:     results,
		RawAnswers:  answers.Clone(),
	}, nil
}
