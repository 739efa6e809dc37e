package service

import (
	"go.uber.org/zap"

	"persona-engine/internal/domain"
)

// InternalStates builds the four per-state color spectra from the
// internal_states upgrade questions. Each state starts at an even 25 per
// color, accumulates answer x weight contributions from its targeted
// questions, and is renormalized to 100 independently. Defects fall back to
// four neutral spectra.
func (m *ModelCalculator) InternalStates(answers domain.AnswerSet, questions []domain.Question) (out domain.InternalStates) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("internal states computation failed, using neutral fallback",
				zap.String("field", domain.ResultInternalStates), zap.Any("cause", r))
			out = domain.NeutralInternalStates()
		}
	}()

	acc := make(map[string]map[string]float64, 4)
	for _, state := range domain.StateNames() {
		colors := make(map[string]float64, 4)
		for _, c := range domain.ColorNames() {
			colors[c] = 25
		}
		acc[state] = colors
	}

	for _, q := range questions {
		if q.Context != domain.ContextUpgrade || q.Dimension != domain.DimensionInternalStates {
			continue
		}
		v, answered := answers[q.ID]
		if !answered || !domain.ValidAnswer(v) {
			continue
		}
		for _, state := range domain.StateNames() {
			if !q.TargetsField(state) {
				continue
			}
			for color, weight := range q.StateWeights {
				acc[state][color] += float64(v * weight)
			}
		}
	}

	out = make(domain.InternalStates, 4)
	for _, state := range domain.StateNames() {
		out[state] = normalizeSpectrum(acc[state])
	}
	return out
}
