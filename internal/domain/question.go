package domain

// AnswerSet maps a question id to a Likert response in [1,5]. Unanswered
// questions are simply absent; they are excluded from averaging, not zero-filled.
type AnswerSet map[int]int

// Clone returns an independent copy so a frozen answer set cannot be mutated
// by a later session.
func (a AnswerSet) Clone() AnswerSet {
	if a == nil {
		return nil
	}
	out := make(AnswerSet, len(a))
	for id, v := range a {
		out[id] = v
	}
	return out
}

// ValidAnswer reports whether v is a usable Likert response.
func ValidAnswer(v int) bool {
	return v >= 1 && v <= 5
}

// Question is a static catalog record. For upgrade-context questions Dimension
// holds one of the special markers and Targets names the derived-model fields
// the answer feeds (component names or internal-state names). StateWeights is
// the per-color contribution table used only by internal-state questions.
type Question struct {
	ID           int            `json:"id" yaml:"id"`
	Text         string         `json:"text" yaml:"text"`
	Dimension    string         `json:"dimension" yaml:"dimension"`
	Context      string         `json:"context" yaml:"context"`
	Reverse      bool           `json:"reverse,omitempty" yaml:"reverse,omitempty"`
	Targets      []string       `json:"targets,omitempty" yaml:"targets,omitempty"`
	StateWeights map[string]int `json:"state_weights,omitempty" yaml:"state_weights,omitempty"`
}

// TargetsField reports whether the question feeds the named derived-model field.
func (q Question) TargetsField(name string) bool {
	for _, t := range q.Targets {
		if t == name {
			return true
		}
	}
	return false
}
