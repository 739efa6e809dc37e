package service

import (
	"math"

	"go.uber.org/zap"

	"persona-engine/internal/domain"
)

// componentSeed names the dimension a component is seeded from. Components
// absent from this table (physical_energy, incentives) have no dimension
// source and seed at a neutral 50.
type componentSeed struct {
	dimension string
	invert    bool
}

var componentSeeds = map[string]componentSeed{
	domain.ComponentSocialEnergy:      {dimension: domain.DimSociability},
	domain.ComponentEmotionalEnergy:   {dimension: domain.DimEmotionalIntelligence},
	domain.ComponentSelfConsciousness: {dimension: domain.DimAssertiveness, invert: true},
	domain.ComponentAssertiveness:     {dimension: domain.DimAssertiveness},
	domain.ComponentInsistence:        {dimension: domain.DimConscientiousness},
	domain.ComponentRestlessness:      {dimension: domain.DimFlexibility},
	domain.ComponentThought:           {dimension: domain.DimOpenness},
}

// componentSeedValue resolves a component's seed from usual dimension scores.
func componentSeedValue(component string, scores domain.DimensionScores) int {
	seed, ok := componentSeeds[component]
	if !ok {
		return 50
	}
	v := scores[domain.ScoreKey(seed.dimension, domain.ContextUsual)]
	if seed.invert {
		v = 100 - v
	}
	return domain.ClampScore(v)
}

// Components seeds the 9 components from dimension scores, then blends in any
// upgrade-context answers targeting component_focus at 60/40 (60 on the
// existing value, applied per answer in question order). Defects fall back to
// the all-50 model.
func (m *ModelCalculator) Components(scores domain.DimensionScores, answers domain.AnswerSet) (out domain.ComponentScores) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("component model computation failed, using neutral fallback",
				zap.String("field", domain.ResultComponents), zap.Any("cause", r))
			out = domain.NeutralComponents()
		}
	}()

	out = make(domain.ComponentScores, 9)
	for _, name := range domain.ComponentNames() {
		out[name] = componentSeedValue(name, scores)
	}
	m.blendComponentAnswers(out, answers)
	return out
}

// ComponentsFromAnswers computes a component model from the upgrade supplement
// alone: every component starts neutral and targeted answers set it directly.
// Used by the 2.x -> 3.x upgrade before blending with legacy dimensions.
func (m *ModelCalculator) ComponentsFromAnswers(answers domain.AnswerSet, questions []domain.Question) (out domain.ComponentScores) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("upgrade component computation failed, using neutral fallback",
				zap.String("field", domain.ResultComponents), zap.Any("cause", r))
			out = domain.NeutralComponents()
		}
	}()

	out = domain.NeutralComponents()
	for _, q := range questions {
		if q.Context != domain.ContextUpgrade || q.Dimension != domain.DimensionComponentFocus {
			continue
		}
		v, answered := answers[q.ID]
		if !answered || !domain.ValidAnswer(v) {
			continue
		}
		for _, name := range domain.ComponentNames() {
			if q.TargetsField(name) {
				out[name] = answerToPercent(v)
			}
		}
	}
	return out
}

func (m *ModelCalculator) blendComponentAnswers(out domain.ComponentScores, answers domain.AnswerSet) {
	for _, q := range m.cat.Questions {
		if q.Context != domain.ContextUpgrade || q.Dimension != domain.DimensionComponentFocus {
			continue
		}
		v, answered := answers[q.ID]
		if !answered || !domain.ValidAnswer(v) {
			continue
		}
		av := float64(answerToPercent(v))
		for _, name := range domain.ComponentNames() {
			if q.TargetsField(name) {
				blended := 0.6*float64(out[name]) + 0.4*av
				out[name] = domain.ClampScore(int(math.Round(blended)))
			}
		}
	}
}
