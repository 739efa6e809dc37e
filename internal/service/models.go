package service

import (
	"go.uber.org/zap"

	"persona-engine/internal/catalog"
	"persona-engine/internal/domain"
)

// ModelCalculator derives the composite models (color spectrum, components,
// internal states, MBTI overlay) from aggregated dimension scores and, for the
// upgrade supplement, raw answers. Each calculator recovers from any defect by
// returning its documented neutral default; nothing propagates.
type ModelCalculator struct {
	cat    *catalog.Catalog
	logger *zap.Logger
}

func NewModelCalculator(cat *catalog.Catalog, logger *zap.Logger) *ModelCalculator {
	return &ModelCalculator{cat: cat, logger: logger}
}

// Fixed linear weights per color over _usual dimension scores.
func colorWeightedValues(scores domain.DimensionScores) map[string]float64 {
	usual := func(dim string) float64 {
		return float64(scores[domain.ScoreKey(dim, domain.ContextUsual)])
	}
	return map[string]float64{
		domain.ColorRed:    0.6*usual(domain.DimAssertiveness) + 0.4*usual(domain.DimIndependence),
		domain.ColorGreen:  0.6*usual(domain.DimSociability) + 0.4*usual(domain.DimOptimism),
		domain.ColorYellow: 0.6*usual(domain.DimConscientiousness) + 0.4*(100-usual(domain.DimFlexibility)),
		domain.ColorBlue:   0.5*usual(domain.DimOpenness) + 0.5*usual(domain.DimEmotionalIntelligence),
	}
}

// ColorModel computes the four-color spectrum from usual dimension scores and
// picks the top two colors. Any defect yields the neutral fallback
// {Yellow, Blue, 25x4} instead of an error.
func (m *ModelCalculator) ColorModel(scores domain.DimensionScores) (out domain.ColorModel) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("color model computation failed, using neutral fallback",
				zap.String("field", domain.ResultBirkmanColor), zap.Any("cause", r))
			out = neutralColorModel()
		}
	}()

	spectrum := normalizeSpectrum(colorWeightedValues(scores))
	primary, secondary := topTwoColors(spectrum)
	return domain.ColorModel{Primary: primary, Secondary: secondary, Spectrum: spectrum}
}

func neutralColorModel() domain.ColorModel {
	return domain.ColorModel{
		Primary:   domain.ColorYellow,
		Secondary: domain.ColorBlue,
		Spectrum:  domain.NeutralSpectrum(),
	}
}

// normalizeSpectrum scales weighted color values so the four entries sum to
// exactly 100. Values are floored during scaling and the remainder goes to the
// currently-largest color; a non-positive total falls back to the even split.
func normalizeSpectrum(raw map[string]float64) domain.ColorSpectrum {
	total := 0.0
	for _, name := range domain.ColorNames() {
		if raw[name] > 0 {
			total += raw[name]
		}
	}
	if total <= 0 {
		return domain.NeutralSpectrum()
	}

	out := make(domain.ColorSpectrum, 4)
	for _, name := range domain.ColorNames() {
		v := raw[name]
		if v < 0 {
			v = 0
		}
		out[name] = int(v * 100 / total)
	}
	if rem := 100 - out.Sum(); rem != 0 {
		out[largestColor(out)] += rem
	}
	return out
}

// largestColor returns the color with the highest value, ties broken by
// catalog order (Red, Green, Yellow, Blue).
func largestColor(s domain.ColorSpectrum) string {
	best := domain.ColorRed
	for _, name := range domain.ColorNames() {
		if s[name] > s[best] {
			best = name
		}
	}
	return best
}

// topTwoColors ranks the spectrum and returns primary and secondary, ties
// broken by catalog order.
func topTwoColors(s domain.ColorSpectrum) (string, string) {
	names := domain.ColorNames()
	primary := names[0]
	for _, name := range names[1:] {
		if s[name] > s[primary] {
			primary = name
		}
	}
	secondary := ""
	for _, name := range names {
		if name == primary {
			continue
		}
		if secondary == "" || s[name] > s[secondary] {
			secondary = name
		}
	}
	return primary, secondary
}
