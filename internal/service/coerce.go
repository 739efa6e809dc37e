package service

import (
	"encoding/json"
	"strconv"

	"persona-engine/internal/domain"
)

// Helpers for the loosely-shaped data persisted by older schema versions.
// Values that went through a JSON round trip arrive as float64 and string
// keys; everything here reads both shapes and drops what it cannot read.

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float32:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// scoresFromAny extracts the numeric entries of a loose score mapping into a
// typed DimensionScores, skipping anything non-numeric.
func scoresFromAny(m map[string]any) domain.DimensionScores {
	out := make(domain.DimensionScores, len(m))
	for k, v := range m {
		if n, ok := asInt(v); ok {
			out[k] = n
		}
	}
	return out
}

// answersFromAny reads an answer set that may be typed or may be the
// map[string]any/float64 shape a JSON round trip produces.
func answersFromAny(v any) domain.AnswerSet {
	switch a := v.(type) {
	case domain.AnswerSet:
		return a.Clone()
	case map[int]int:
		return domain.AnswerSet(a).Clone()
	case map[string]any:
		out := make(domain.AnswerSet, len(a))
		for k, raw := range a {
			id, err := strconv.Atoi(k)
			if err != nil {
				continue
			}
			if n, ok := asInt(raw); ok {
				out[id] = n
			}
		}
		return out
	default:
		return nil
	}
}

// toAny converts a typed model into the map/slice shape the persisted results
// carry, via the same JSON encoding the wire format uses.
func toAny(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
