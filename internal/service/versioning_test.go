package service

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"persona-engine/internal/domain"
)

// fullScoreMapAny builds a complete primitive score mapping the way a JSON
// round trip would shape it.
func fullScoreMapAny(v int) map[string]any {
	m := make(map[string]any, 16)
	for _, dim := range domain.CoreDimensions() {
		m[domain.ScoreKey(dim, domain.ContextUsual)] = float64(v)
		m[domain.ScoreKey(dim, domain.ContextStress)] = float64(v)
	}
	return m
}

func legacyShapedRecord(t *testing.T) domain.AssessmentRecord {
	t.Helper()
	scores := fullScoreMapAny(50)
	scores[domain.ResultValuesProfile] = map[string]any{"achievement": float64(70)}
	scores[domain.ResultWorkStyleProfile] = map[string]any{"structure": float64(40)}
	return domain.AssessmentRecord{
		ID:          "legacy-1",
		UserName:    "dana",
		CompletedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Version:     domain.LegacyCurrentVersion,
		Results: map[string]any{
			domain.ResultScores: scores,
		},
	}
}

func TestHasLegacyData(t *testing.T) {
	rec := legacyShapedRecord(t)
	if !HasLegacyData(rec) {
		t.Fatalf("nested sub-profiles must be detected as legacy shape")
	}

	clean := domain.AssessmentRecord{
		Version: domain.SchemaVersion,
		Results: map[string]any{domain.ResultScores: fullScoreMapAny(50)},
	}
	if HasLegacyData(clean) {
		t.Fatalf("primitive-only score map must not be flagged as legacy")
	}
	if HasLegacyData(domain.AssessmentRecord{}) {
		t.Fatalf("record without a score map must not be flagged as legacy")
	}
}

func TestMigrateRecords_HoistsNestedProfiles(t *testing.T) {
	cat := testCatalog(t)
	m := NewMigrator(NewModelCalculator(cat, zap.NewNop()), zap.NewNop())

	rec := legacyShapedRecord(t)
	out, stats := m.MigrateRecords([]domain.AssessmentRecord{rec})
	if stats.Migrated != 1 || stats.Failed != 0 || stats.AlreadyCurrent != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	migrated := out[0]
	if migrated.Version != domain.SchemaVersion {
		t.Fatalf("expected version %s, got %s", domain.SchemaVersion, migrated.Version)
	}
	if migrated.MigratedFrom != domain.LegacyCurrentVersion || migrated.MigratedAt == nil {
		t.Fatalf("migration stamps missing: from=%q at=%v", migrated.MigratedFrom, migrated.MigratedAt)
	}

	scores := asMap(migrated.Results[domain.ResultScores])
	for _, key := range []string{domain.ResultValuesProfile, domain.ResultWorkStyleProfile} {
		if _, ok := scores[key]; ok {
			t.Fatalf("%s must be removed from the score map", key)
		}
		if _, ok := migrated.Results[key]; !ok {
			t.Fatalf("%s must be hoisted to a top-level result field", key)
		}
	}
	if !ValidateScoreMap(scores, migrated.Version) {
		t.Fatalf("migrated score map must validate against the new version")
	}

	// The input record is untouched.
	if _, ok := asMap(rec.Results[domain.ResultScores])[domain.ResultValuesProfile]; !ok {
		t.Fatalf("migration must not mutate the input record")
	}
}

func TestMigrateRecords_DoesNotOverwriteExistingTopLevel(t *testing.T) {
	cat := testCatalog(t)
	m := NewMigrator(NewModelCalculator(cat, zap.NewNop()), zap.NewNop())

	rec := legacyShapedRecord(t)
	rec.Results[domain.ResultValuesProfile] = map[string]any{"achievement": float64(99)}

	out, _ := m.MigrateRecords([]domain.AssessmentRecord{rec})
	hoisted := asMap(out[0].Results[domain.ResultValuesProfile])
	if v, _ := asInt(hoisted["achievement"]); v != 99 {
		t.Fatalf("existing top-level profile must win, got %v", hoisted)
	}
}

func TestMigrateRecords_Idempotent(t *testing.T) {
	cat := testCatalog(t)
	m := NewMigrator(NewModelCalculator(cat, zap.NewNop()), zap.NewNop())

	first, _ := m.MigrateRecords([]domain.AssessmentRecord{legacyShapedRecord(t)})
	second, stats := m.MigrateRecords(first)
	if stats.AlreadyCurrent != 1 || stats.Migrated != 0 {
		t.Fatalf("second pass must be a no-op: %+v", stats)
	}
	if second[0].MigratedFrom != first[0].MigratedFrom || second[0].Version != first[0].Version {
		t.Fatalf("second pass must not rewrite the record")
	}
}

func TestMigrateRecords_FailedValidationKeepsOriginal(t *testing.T) {
	cat := testCatalog(t)
	m := NewMigrator(NewModelCalculator(cat, zap.NewNop()), zap.NewNop())

	// Legacy shape but missing almost every dimension: the hoist succeeds,
	// the post-migration validation does not.
	rec := domain.AssessmentRecord{
		ID:      "broken-1",
		Version: domain.LegacyCurrentVersion,
		Results: map[string]any{
			domain.ResultScores: map[string]any{
				domain.ScoreKey(domain.DimOpenness, domain.ContextUsual): float64(60),
				domain.ResultValuesProfile:                               map[string]any{"achievement": float64(70)},
			},
		},
	}

	out, stats := m.MigrateRecords([]domain.AssessmentRecord{rec})
	if stats.Failed != 1 || stats.Migrated != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if out[0].Version != domain.LegacyCurrentVersion || out[0].MigratedAt != nil {
		t.Fatalf("failed migration must keep the original record unchanged")
	}
}

func TestCanUpgrade(t *testing.T) {
	cases := []struct {
		version      string
		upgradedFrom string
		want         bool
	}{
		{"2.0.0", "", true},
		{"2.1.3", "", true},
		{"3.0.1", "", false},
		{"2.0.0", "2.0.0", false},
		{"", "", false},
	}
	for _, tc := range cases {
		rec := domain.AssessmentRecord{Version: tc.version, UpgradedFrom: tc.upgradedFrom}
		if got := CanUpgrade(rec); got != tc.want {
			t.Fatalf("CanUpgrade(version=%q, upgradedFrom=%q) = %v, want %v",
				tc.version, tc.upgradedFrom, got, tc.want)
		}
	}
}

func TestUpgradeRecord_BlendsAndStamps(t *testing.T) {
	cat := testCatalog(t)
	m := NewMigrator(NewModelCalculator(cat, zap.NewNop()), zap.NewNop())

	var socialQ int
	for _, q := range cat.UpgradeQuestions() {
		if q.Dimension == domain.DimensionComponentFocus && q.TargetsField(domain.ComponentSocialEnergy) {
			socialQ = q.ID
			break
		}
	}
	if socialQ == 0 {
		t.Fatalf("catalog has no component question targeting social_energy")
	}

	scores := fullScoreMapAny(50)
	scores[domain.ScoreKey(domain.DimSociability, domain.ContextUsual)] = float64(80)
	completed := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	rec := domain.AssessmentRecord{
		ID:          "old-1",
		Version:     "2.0.0",
		CompletedAt: completed,
		Results:     map[string]any{domain.ResultScores: scores},
	}

	upgraded, err := m.UpgradeRecord(rec, domain.AnswerSet{socialQ: 5}, cat.Questions)
	if err != nil {
		t.Fatalf("upgrade failed: %v", err)
	}

	if upgraded.Version != domain.SchemaVersion || upgraded.UpgradedFrom != "2.0.0" {
		t.Fatalf("version stamps wrong: version=%s upgradedFrom=%s", upgraded.Version, upgraded.UpgradedFrom)
	}
	if upgraded.UpgradedAt == nil || upgraded.OriginalCompletedAt == nil {
		t.Fatalf("upgrade timestamps missing")
	}
	if !upgraded.OriginalCompletedAt.Equal(completed) {
		t.Fatalf("originalCompletedAt must preserve the legacy completion time")
	}

	// Answer 5 converts to 100; the blend weights the legacy seed at 60%.
	components := scoresFromAny(asMap(upgraded.Results[domain.ResultComponents]))
	if components[domain.ComponentSocialEnergy] != 88 {
		t.Fatalf("expected round(0.4*100 + 0.6*80) = 88, got %d", components[domain.ComponentSocialEnergy])
	}
	// Components without a supplement answer blend two neutral halves.
	if components[domain.ComponentPhysicalEnergy] != 50 {
		t.Fatalf("expected 50 for unanswered component, got %d", components[domain.ComponentPhysicalEnergy])
	}

	for _, field := range []string{domain.ResultBirkmanColor, domain.ResultInternalStates} {
		if _, ok := upgraded.Results[field]; !ok {
			t.Fatalf("upgrade must populate %s", field)
		}
	}

	// One-way: a second upgrade is refused.
	if CanUpgrade(upgraded) {
		t.Fatalf("upgraded record must not be upgradeable again")
	}
	if _, err := m.UpgradeRecord(upgraded, nil, cat.Questions); !errors.Is(err, ErrNotUpgradeable) {
		t.Fatalf("expected ErrNotUpgradeable, got %v", err)
	}
}

func TestUpgradeRecord_RefusesCurrentSchema(t *testing.T) {
	cat := testCatalog(t)
	m := NewMigrator(NewModelCalculator(cat, zap.NewNop()), zap.NewNop())

	rec := domain.AssessmentRecord{Version: domain.SchemaVersion}
	if _, err := m.UpgradeRecord(rec, nil, cat.Questions); !errors.Is(err, ErrNotUpgradeable) {
		t.Fatalf("expected ErrNotUpgradeable, got %v", err)
	}
}

func TestLegacyScoreSource_Fallbacks(t *testing.T) {
	fromResults := domain.AssessmentRecord{
		Results: map[string]any{domain.ResultScores: map[string]any{"a": float64(1)}},
	}
	if m := legacyScoreSource(fromResults); m["a"] == nil {
		t.Fatalf("results.scores must be preferred")
	}

	fromDimensions := domain.AssessmentRecord{
		Results: map[string]any{domain.ResultDimensions: map[string]any{"b": float64(2)}},
	}
	if m := legacyScoreSource(fromDimensions); m["b"] == nil {
		t.Fatalf("results.dimensions must be the second choice")
	}

	fromTopLevel := domain.AssessmentRecord{
		LegacyDimensionScores: map[string]any{"c": float64(3)},
	}
	if m := legacyScoreSource(fromTopLevel); m["c"] == nil {
		t.Fatalf("top-level dimensionScores must be the third choice")
	}
}
