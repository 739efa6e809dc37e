package service

import (
	"sort"

	"go.uber.org/zap"

	"persona-engine/internal/catalog"
	"persona-engine/internal/domain"
)

// Match confidence tiers.
const (
	confidenceExact       = 85
	confidenceOverlapBase = 60
	confidenceOverlapStep = 10
	confidenceDefault     = 40
)

// ArchetypeResolver matches usual dimension scores against the archetype
// catalog. Resolution is deterministic: dimension ranking ties break by
// lexical name and archetype ties by catalog order.
type ArchetypeResolver struct {
	archetypes []catalog.Archetype
	logger     *zap.Logger
}

func NewArchetypeResolver(archetypes []catalog.Archetype, logger *zap.Logger) *ArchetypeResolver {
	return &ArchetypeResolver{archetypes: archetypes, logger: logger}
}

// Resolve ranks the core usual scores and matches the top-2 signature against
// the catalog: exact signature match first, then best overlap with the top-3
// list, then the first catalog entry as the flagged default.
func (r *ArchetypeResolver) Resolve(scores domain.DimensionScores) domain.ArchetypeMatch {
	ranked := rankUsualDimensions(scores)
	signature := map[string]bool{ranked[0]: true, ranked[1]: true}
	top3 := map[string]bool{ranked[0]: true, ranked[1]: true, ranked[2]: true}

	usualScores := make(domain.DimensionScores, 8)
	for _, dim := range domain.CoreDimensions() {
		key := domain.ScoreKey(dim, domain.ContextUsual)
		usualScores[key] = scores[key]
	}

	for _, a := range r.archetypes {
		if len(a.PrimaryDimensions) == 2 && signature[a.PrimaryDimensions[0]] && signature[a.PrimaryDimensions[1]] {
			return matchFrom(a, usualScores, confidenceExact, false, false)
		}
	}

	bestOverlap := 0
	var best catalog.Archetype
	for _, a := range r.archetypes {
		overlap := 0
		for _, dim := range a.PrimaryDimensions {
			if top3[dim] {
				overlap++
			}
		}
		if overlap > bestOverlap {
			bestOverlap = overlap
			best = a
		}
	}
	if bestOverlap > 0 {
		return matchFrom(best, usualScores, confidenceOverlapBase+confidenceOverlapStep*bestOverlap, true, false)
	}

	r.logger.Warn("no archetype overlap, falling back to catalog default",
		zap.String("top_dimension", ranked[0]))
	return matchFrom(r.archetypes[0], usualScores, confidenceDefault, false, true)
}

func matchFrom(a catalog.Archetype, usual domain.DimensionScores, confidence int, partial, def bool) domain.ArchetypeMatch {
	return domain.ArchetypeMatch{
		ID:                a.ID,
		Name:              a.Name,
		Description:       a.Description,
		PrimaryDimensions: a.PrimaryDimensions,
		CareerFamilies:    a.CareerFamilies,
		Dimensions:        usual,
		Confidence:        confidence,
		IsPartialMatch:    partial,
		IsDefault:         def,
	}
}

// rankUsualDimensions orders the 8 core dimensions by usual score descending,
// ties broken by lexical dimension name ascending.
func rankUsualDimensions(scores domain.DimensionScores) []string {
	dims := domain.CoreDimensions()
	sort.SliceStable(dims, func(i, j int) bool {
		si := scores[domain.ScoreKey(dims[i], domain.ContextUsual)]
		sj := scores[domain.ScoreKey(dims[j], domain.ContextUsual)]
		if si != sj {
			return si > sj
		}
		return dims[i] < dims[j]
	})
	return dims
}
