package domain

// Fixed color names of the behavioral-style spectrum.
const (
	ColorRed    = "Red"
	ColorGreen  = "Green"
	ColorYellow = "Yellow"
	ColorBlue   = "Blue"
)

// ColorNames returns the four colors in catalog order. Ties between equal
// spectrum values are broken by this order.
func ColorNames() []string {
	return []string{ColorRed, ColorGreen, ColorYellow, ColorBlue}
}

// The 9 fixed behavioral components.
const (
	ComponentSocialEnergy      = "social_energy"
	ComponentPhysicalEnergy    = "physical_energy"
	ComponentEmotionalEnergy   = "emotional_energy"
	ComponentSelfConsciousness = "self_consciousness"
	ComponentAssertiveness     = "assertiveness"
	ComponentInsistence        = "insistence"
	ComponentIncentives        = "incentives"
	ComponentRestlessness      = "restlessness"
	ComponentThought           = "thought"
)

// ComponentNames returns the 9 components in canonical order.
func ComponentNames() []string {
	return []string{
		ComponentSocialEnergy,
		ComponentPhysicalEnergy,
		ComponentEmotionalEnergy,
		ComponentSelfConsciousness,
		ComponentAssertiveness,
		ComponentInsistence,
		ComponentIncentives,
		ComponentRestlessness,
		ComponentThought,
	}
}

// The four internal-state names, each carrying its own color spectrum.
const (
	StateInterests      = "interests"
	StateUsualBehavior  = "usual_behavior"
	StateNeeds          = "needs"
	StateStressBehavior = "stress_behavior"
)

// StateNames returns the internal states in canonical order.
func StateNames() []string {
	return []string{StateInterests, StateUsualBehavior, StateNeeds, StateStressBehavior}
}

// DimensionScores maps "{dimension}_{context}" keys to percentiles in [0,100].
type DimensionScores map[string]int

// ColorSpectrum maps each of the four colors to an integer share; a valid
// spectrum sums to exactly 100.
type ColorSpectrum map[string]int

// Sum returns the spectrum total.
func (s ColorSpectrum) Sum() int {
	total := 0
	for _, v := range s {
		total += v
	}
	return total
}

// NeutralSpectrum is the documented fallback: an even 25 per color.
func NeutralSpectrum() ColorSpectrum {
	return ColorSpectrum{ColorRed: 25, ColorGreen: 25, ColorYellow: 25, ColorBlue: 25}
}

// ColorModel is the color composite: the top two colors plus the full spectrum.
type ColorModel struct {
	Primary   string        `json:"primary"`
	Secondary string        `json:"secondary"`
	Spectrum  ColorSpectrum `json:"spectrum"`
}

// ComponentScores maps each of the 9 components to an integer in [0,100].
type ComponentScores map[string]int

// NeutralComponents is the documented all-50 fallback.
func NeutralComponents() ComponentScores {
	out := make(ComponentScores, 9)
	for _, name := range ComponentNames() {
		out[name] = 50
	}
	return out
}

// InternalStates maps each of the four state names to its own spectrum.
type InternalStates map[string]ColorSpectrum

// NeutralInternalStates returns the four-state neutral fallback.
func NeutralInternalStates() InternalStates {
	out := make(InternalStates, 4)
	for _, name := range StateNames() {
		out[name] = NeutralSpectrum()
	}
	return out
}

// MBTIResult is the four-letter overlay plus per-axis confidence (0-95).
type MBTIResult struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Confidence  map[string]int `json:"confidence"`
}

// ArchetypeMatch is a catalog archetype annotated with the scores that matched
// it and how strong the match was.
type ArchetypeMatch struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	PrimaryDimensions []string        `json:"primary_dimensions"`
	CareerFamilies    []string        `json:"career_families,omitempty"`
	Dimensions        DimensionScores `json:"dimensions"`
	Confidence        int             `json:"confidence"`
	IsPartialMatch    bool            `json:"isPartialMatch,omitempty"`
	IsDefault         bool            `json:"isDefault,omitempty"`
}

// Profile is the full current-schema result set of a completed assessment.
type Profile struct {
	Scores           DimensionScores `json:"scores"`
	ValuesProfile    map[string]int  `json:"values_profile"`
	WorkStyleProfile map[string]int  `json:"work_style_profile"`
	Archetype        ArchetypeMatch  `json:"archetype"`
	MBTI             MBTIResult      `json:"mbti"`
	BirkmanColor     ColorModel      `json:"birkman_color"`
	Components       ComponentScores `json:"birkman_components"`
	InternalStates   InternalStates  `json:"birkman_states"`
}
