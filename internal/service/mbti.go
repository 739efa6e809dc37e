package service

import (
	"math"

	"persona-engine/internal/domain"
)

// MBTI axis keys used in the per-axis confidence map.
const (
	axisEI = "EI"
	axisSN = "SN"
	axisTF = "TF"
	axisJP = "JP"
)

// MBTI derives the four-letter overlay by comparing dimension proxies against
// the midpoint 50, then looks up the static profile for the resulting type.
// Unmatched types get the default profile. Per-axis confidence is
// min(95, |proxy-50|/50*100).
func (m *ModelCalculator) MBTI(scores domain.DimensionScores) domain.MBTIResult {
	usual := func(dim string) float64 {
		return float64(scores[domain.ScoreKey(dim, domain.ContextUsual)])
	}

	eProxy := (usual(domain.DimAssertiveness) + usual(domain.DimSociability)) / 2
	nProxy := usual(domain.DimOpenness)
	fProxy := usual(domain.DimEmotionalIntelligence)
	jProxy := usual(domain.DimConscientiousness)

	pick := func(proxy float64, high, low byte) byte {
		if proxy >= 50 {
			return high
		}
		return low
	}
	mbtiType := string([]byte{
		pick(eProxy, 'E', 'I'),
		pick(nProxy, 'N', 'S'),
		pick(fProxy, 'F', 'T'),
		pick(jProxy, 'J', 'P'),
	})

	confidence := map[string]int{
		axisEI: axisConfidence(eProxy),
		axisSN: axisConfidence(nProxy),
		axisTF: axisConfidence(fProxy),
		axisJP: axisConfidence(jProxy),
	}

	profile, ok := m.cat.MBTIProfiles[mbtiType]
	if !ok {
		profile = m.cat.DefaultMBTI
	}
	return domain.MBTIResult{
		Type:        mbtiType,
		Name:        profile.Name,
		Description: profile.Description,
		Confidence:  confidence,
	}
}

func axisConfidence(proxy float64) int {
	c := int(math.Round(math.Abs(proxy-50) / 50 * 100))
	if c > 95 {
		c = 95
	}
	return c
}
