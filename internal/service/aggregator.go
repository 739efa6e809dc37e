package service

import (
	"math"

	"go.uber.org/zap"

	"persona-engine/internal/domain"
)

// Aggregator reduces a raw answer set into percentile scores per dimension and
// context. It is pure: the same answers and catalog always produce the same
// scores. All other units obtain scores through it so the weighting rules live
// in exactly one place.
type Aggregator struct {
	questions []domain.Question
	logger    *zap.Logger
}

func NewAggregator(questions []domain.Question, logger *zap.Logger) *Aggregator {
	return &Aggregator{questions: questions, logger: logger}
}

// DimensionScores computes the full "{dimension}_{context}" score map for the
// 8 core dimensions. Dimensions with no answered questions in a context score
// a neutral 50 so the required key set is always complete.
//
// After the initial pass the five aggregate dimensions overwrite their _usual
// entry with the mean of their usual and stress scores. Persisted profiles
// were produced this way historically, so it is kept bit-compatible even
// though it discards the usual-only percentile for those dimensions.
func (a *Aggregator) DimensionScores(answers domain.AnswerSet) domain.DimensionScores {
	scores := make(domain.DimensionScores, 16)
	for _, dim := range domain.CoreDimensions() {
		for _, ctx := range []string{domain.ContextUsual, domain.ContextStress} {
			pct, ok := a.dimensionPercentile(answers, dim, ctx)
			if !ok {
				pct = 50
			}
			scores[domain.ScoreKey(dim, ctx)] = pct
		}
	}

	for _, dim := range domain.AggregateDimensions() {
		usual := scores[domain.ScoreKey(dim, domain.ContextUsual)]
		stress := scores[domain.ScoreKey(dim, domain.ContextStress)]
		scores[domain.ScoreKey(dim, domain.ContextUsual)] = int(math.Round(float64(usual+stress) / 2))
	}
	return scores
}

// ValuesProfile scores the 6 values dimensions with the same per-dimension
// averaging rule. The result is independent of the dimension score map and is
// never folded into it.
func (a *Aggregator) ValuesProfile(answers domain.AnswerSet) map[string]int {
	return a.profileFor(answers, domain.ValuesDimensions())
}

// WorkStyleProfile scores the 5 work-style dimensions.
func (a *Aggregator) WorkStyleProfile(answers domain.AnswerSet) map[string]int {
	return a.profileFor(answers, domain.WorkStyleDimensions())
}

func (a *Aggregator) profileFor(answers domain.AnswerSet, dims []string) map[string]int {
	out := make(map[string]int, len(dims))
	for _, dim := range dims {
		pct, ok := a.dimensionPercentile(answers, dim, domain.ContextUsual)
		if !ok {
			pct = 50
		}
		out[dim] = pct
	}
	return out
}

// dimensionPercentile averages the answered questions for one dimension and
// context and maps the 1-5 average onto 0-100. Unanswered questions are
// excluded, not zero-filled. The second return is false when nothing was
// answered.
func (a *Aggregator) dimensionPercentile(answers domain.AnswerSet, dimension, context string) (int, bool) {
	sum, count := 0, 0
	for _, q := range a.questions {
		if q.Dimension != dimension || q.Context != context {
			continue
		}
		v, answered := answers[q.ID]
		if !answered || !domain.ValidAnswer(v) {
			continue
		}
		if q.Reverse {
			v = 6 - v
		}
		sum += v
		count++
	}
	if count == 0 {
		return 0, false
	}
	avg := float64(sum) / float64(count)
	return likertToPercent(avg), true
}

// likertToPercent maps a 1-5 average onto a clamped, rounded 0-100 percentile.
func likertToPercent(avg float64) int {
	pct := (avg - 1) / 4 * 100
	return domain.ClampScore(int(math.Round(pct)))
}

// answerToPercent converts a single Likert response to its 0-100 value, used
// by the upgrade-supplement calculators.
func answerToPercent(answer int) int {
	return likertToPercent(float64(answer))
}

// SanitizeScores drops any non-primitive top-level value from a loosely-shaped
// score mapping. Legacy writers nested whole sub-profiles inside the score
// map; those are filtered and logged, never an error.
func SanitizeScores(m map[string]any, logger *zap.Logger) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if !isPrimitive(v) {
			if logger != nil {
				logger.Warn("filtered non-primitive score value", zap.String("key", k))
			}
			continue
		}
		out[k] = v
	}
	return out
}

func isPrimitive(v any) bool {
	switch v.(type) {
	case string, bool, int, int32, int64, float32, float64:
		return true
	default:
		return false
	}
}
