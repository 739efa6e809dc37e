package domain

// Answer contexts a question can be asked in. Upgrade questions exist only to
// feed the 2.x -> 3.x schema upgrade and never enter dimension scoring.
const (
	ContextUsual   = "usual"
	ContextStress  = "stress"
	ContextUpgrade = "upgrade"
)

// Special dimension markers for upgrade-context questions.
const (
	DimensionComponentFocus = "component_focus"
	DimensionInternalStates = "internal_states"
)

// Core personality dimensions, scored separately for usual and stress context.
const (
	DimAssertiveness         = "assertiveness"
	DimSociability           = "sociability"
	DimConscientiousness     = "conscientiousness"
	DimFlexibility           = "flexibility"
	DimEmotionalIntelligence = "emotional_intelligence"
	DimOpenness              = "openness"
	DimOptimism              = "optimism"
	DimIndependence          = "independence"
)

// CoreDimensions returns the 8 core dimensions in canonical order.
func CoreDimensions() []string {
	return []string{
		DimAssertiveness,
		DimSociability,
		DimConscientiousness,
		DimFlexibility,
		DimEmotionalIntelligence,
		DimOpenness,
		DimOptimism,
		DimIndependence,
	}
}

// AggregateDimensions lists the dimensions whose usual score is overwritten
// with the mean of their usual and stress scores after initial aggregation.
// This mirrors the historical scoring behavior; persisted profiles depend on it.
func AggregateDimensions() []string {
	return []string{
		DimAssertiveness,
		DimSociability,
		DimConscientiousness,
		DimFlexibility,
		DimEmotionalIntelligence,
	}
}

// ValuesDimensions returns the 6 values-profile dimensions.
func ValuesDimensions() []string {
	return []string{"achievement", "autonomy", "benevolence", "security", "stimulation", "tradition"}
}

// WorkStyleDimensions returns the 5 work-style dimensions.
func WorkStyleDimensions() []string {
	return []string{"structure", "teamwork", "pace", "innovation", "leadership"}
}

// ScoreKey builds the "{dimension}_{context}" key used in DimensionScores.
func ScoreKey(dimension, context string) string {
	return dimension + "_" + context
}

// ClampScore bounds a percentile score to [0,100].
func ClampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
