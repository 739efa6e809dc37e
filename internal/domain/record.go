package domain

import (
	"encoding/json"
	"time"
)

// Schema versions. Major 2 is the legacy shape (no component, color or
// internal-state fields); major 3 is the current shape. The version string is
// the only persisted format contract that must stay bit-exact.
const (
	SchemaVersion        = "3.0.1"
	LegacyCurrentVersion = "3.0.0"
	LegacySchemaPrefix   = "2."
)

// HistoryLimit caps the persisted assessment history, most-recent-first.
const HistoryLimit = 5

// Result field names inside AssessmentRecord.Results.
const (
	ResultScores           = "scores"
	ResultValuesProfile    = "values_profile"
	ResultWorkStyleProfile = "work_style_profile"
	ResultArchetype        = "archetype"
	ResultMBTI             = "mbti"
	ResultBirkmanColor     = "birkman_color"
	ResultComponents       = "birkman_components"
	ResultInternalStates   = "birkman_states"
	ResultRawAnswers       = "rawAnswers"
	ResultLegacyAnswers    = "answers"
	ResultDimensions       = "dimensions"
)

// AssessmentRecord is the persisted unit. Results is kept loosely shaped
// because older writers produced several incompatible layouts; the recovery
// and migration units inspect and rewrite it in place. The Legacy* fields
// capture score and answer data that very old records stored at the top level
// instead of under results.
type AssessmentRecord struct {
	ID          string         `json:"id"`
	UserName    string         `json:"userName"`
	CompletedAt time.Time      `json:"completedAt"`
	Version     string         `json:"version"`
	Results     map[string]any `json:"results"`
	RawAnswers  AnswerSet      `json:"rawAnswers,omitempty"`

	LegacyAnswers         AnswerSet      `json:"answers,omitempty"`
	LegacyDimensionScores map[string]any `json:"dimensionScores,omitempty"`
	LegacyScores          map[string]any `json:"scores,omitempty"`

	MigratedFrom             string     `json:"migratedFrom,omitempty"`
	MigratedAt               *time.Time `json:"migratedAt,omitempty"`
	UpgradedFrom             string     `json:"upgradedFrom,omitempty"`
	OriginalCompletedAt      *time.Time `json:"originalCompletedAt,omitempty"`
	UpgradedAt               *time.Time `json:"upgradedAt,omitempty"`
	ScoresRecoveredAt        *time.Time `json:"scoresRecoveredAt,omitempty"`
	ScoresRecoveredByVersion string     `json:"scoresRecoveredByVersion,omitempty"`
}

// IsLegacyVersion reports whether the record carries the major-2 schema.
func (r AssessmentRecord) IsLegacyVersion() bool {
	return len(r.Version) >= len(LegacySchemaPrefix) && r.Version[:len(LegacySchemaPrefix)] == LegacySchemaPrefix
}

// ResultsMap converts a typed Profile into the loosely-shaped results mapping
// that gets persisted. The JSON round trip keeps the persisted shape identical
// to what the wire format produces.
func ResultsMap(p *Profile) (map[string]any, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SessionSnapshot is the at-most-one in-progress assessment session.
type SessionSnapshot struct {
	UserName             string    `json:"userName"`
	CurrentQuestionIndex int       `json:"currentQuestionIndex"`
	Answers              AnswerSet `json:"answers"`
	StartedAt            time.Time `json:"startedAt"`
	LastUpdated          time.Time `json:"lastUpdated"`
}
