package service

import (
	"strings"

	"persona-engine/internal/domain"
)

// ScoreDiagnosis is the structured result of inspecting a persisted score
// mapping. It is a value, never an error: validation failures are rendered as
// a recoverable state, not thrown.
type ScoreDiagnosis struct {
	Valid             bool     `json:"valid"`
	PresentDimensions []string `json:"presentDimensions"`
	MissingDimensions []string `json:"missingDimensions"`
	StressDimensions  int      `json:"stressDimensions"`
	FilteredKeys      int      `json:"filteredKeys"`
	LooksLegacy       bool     `json:"looksLegacy"`
	TotalKeys         int      `json:"totalKeys"`
}

// DiagnoseScoreMap inspects a loose score mapping against the schema rules:
// every value primitive, all 8 core dimensions present for usual context, and
// for schema-3 records also for stress context.
func DiagnoseScoreMap(m map[string]any, version string) ScoreDiagnosis {
	d := ScoreDiagnosis{TotalKeys: len(m)}
	if m == nil {
		d.MissingDimensions = domain.CoreDimensions()
		return d
	}

	nested := 0
	for _, v := range m {
		if !isPrimitive(v) {
			nested++
		}
	}
	d.FilteredKeys = nested

	for _, dim := range domain.CoreDimensions() {
		if _, ok := asInt(m[domain.ScoreKey(dim, domain.ContextUsual)]); ok {
			d.PresentDimensions = append(d.PresentDimensions, dim)
		} else {
			d.MissingDimensions = append(d.MissingDimensions, dim)
		}
		if _, ok := asInt(m[domain.ScoreKey(dim, domain.ContextStress)]); ok {
			d.StressDimensions++
		}
	}

	// Legacy writers nested whole sub-profiles inside the score map.
	for _, key := range []string{domain.ResultValuesProfile, domain.ResultWorkStyleProfile} {
		if v, ok := m[key]; ok && !isPrimitive(v) {
			d.LooksLegacy = true
		}
	}

	requireStress := strings.HasPrefix(version, "3.")
	d.Valid = nested == 0 &&
		len(d.MissingDimensions) == 0 &&
		(!requireStress || d.StressDimensions == len(domain.CoreDimensions()))
	return d
}

// ValidateScoreMap reports whether the mapping satisfies all structural
// predicates for its schema version.
func ValidateScoreMap(m map[string]any, version string) bool {
	return DiagnoseScoreMap(m, version).Valid
}

// rankScoreCandidate scores a potential score source for the patch repair
// path. Higher is better: validity dominates, then core-dimension coverage,
// then stress coverage, then sheer key count.
func rankScoreCandidate(d ScoreDiagnosis) int {
	rank := 1000*len(d.PresentDimensions) + 50*d.StressDimensions + d.TotalKeys
	if d.Valid {
		rank += 100000
	}
	return rank
}
