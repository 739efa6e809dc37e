package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"persona-engine/internal/domain"
)

type fakeHistory struct {
	records []domain.AssessmentRecord
	saves   int
	loadErr error
	saveErr error
}

func (f *fakeHistory) Load(context.Context) ([]domain.AssessmentRecord, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return append([]domain.AssessmentRecord(nil), f.records...), nil
}

func (f *fakeHistory) Save(_ context.Context, records []domain.AssessmentRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.records = records
	return nil
}

func fullAnswerSet(t *testing.T) domain.AnswerSet {
	t.Helper()
	cat := testCatalog(t)
	answers := make(domain.AnswerSet)
	for _, q := range cat.Questions {
		answers[q.ID] = 4
	}
	return answers
}

func TestRecoverRecords_ValidRecordUntouched(t *testing.T) {
	cat := testCatalog(t)
	engine := NewEngine(cat, zap.NewNop())
	r := NewRecoverer(engine, &fakeHistory{}, zap.NewNop())

	rec, err := engine.BuildRecord("dana", fullAnswerSet(t))
	if err != nil {
		t.Fatalf("build record: %v", err)
	}

	out, stats, changed := r.RecoverRecords([]domain.AssessmentRecord{rec})
	if changed {
		t.Fatalf("a healthy record must not trigger a rewrite")
	}
	if stats.AlreadyValid != 1 || stats.Recalculated != 0 || stats.Patched != 0 || stats.Failed != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if out[0].ScoresRecoveredAt != nil {
		t.Fatalf("healthy record must not be stamped as recovered")
	}
}

func TestRecoverRecords_RecalculatesFromRetainedAnswers(t *testing.T) {
	cat := testCatalog(t)
	engine := NewEngine(cat, zap.NewNop())
	r := NewRecoverer(engine, &fakeHistory{}, zap.NewNop())

	answers := fullAnswerSet(t)
	rec := domain.AssessmentRecord{
		ID:         "damaged-1",
		Version:    "3.0.0",
		Results:    map[string]any{},
		RawAnswers: answers,
	}

	out, stats, changed := r.RecoverRecords([]domain.AssessmentRecord{rec})
	if !changed || stats.Recalculated != 1 {
		t.Fatalf("expected one recalculation, got %+v", stats)
	}

	repaired := out[0]
	if repaired.ScoresRecoveredAt == nil || repaired.ScoresRecoveredByVersion != domain.SchemaVersion {
		t.Fatalf("recovery stamps missing: at=%v by=%q",
			repaired.ScoresRecoveredAt, repaired.ScoresRecoveredByVersion)
	}
	if repaired.Version != domain.SchemaVersion {
		t.Fatalf("recalculated record must carry the current version, got %s", repaired.Version)
	}

	// Recomputation from the same answers is bit-identical to a fresh run.
	expected, err := domain.ResultsMap(engine.ComputeProfile(answers))
	if err != nil {
		t.Fatalf("encode expected profile: %v", err)
	}
	if !reflect.DeepEqual(expected[domain.ResultScores], repaired.Results[domain.ResultScores]) {
		t.Fatalf("recomputed scores differ from a fresh computation")
	}
}

func TestRecoverRecords_RepairsMissingModelFields(t *testing.T) {
	cat := testCatalog(t)
	engine := NewEngine(cat, zap.NewNop())
	r := NewRecoverer(engine, &fakeHistory{}, zap.NewNop())

	answers := fullAnswerSet(t)
	rec, err := engine.BuildRecord("dana", answers)
	if err != nil {
		t.Fatalf("build record: %v", err)
	}
	// Scores are valid but a derived model field was lost.
	delete(rec.Results, domain.ResultInternalStates)

	out, stats, changed := r.RecoverRecords([]domain.AssessmentRecord{rec})
	if !changed || stats.Recalculated != 1 {
		t.Fatalf("expected recomputation for the lost model field, got %+v", stats)
	}

	states := asMap(out[0].Results[domain.ResultInternalStates])
	if len(states) != 4 {
		t.Fatalf("expected 4 recomputed internal states, got %d", len(states))
	}
	for name, v := range states {
		spectrum := scoresFromAny(asMap(v))
		sum := 0
		for _, c := range spectrum {
			sum += c
		}
		if sum != 100 {
			t.Fatalf("recomputed state %s must sum to 100, got %d", name, sum)
		}
	}
}

func TestRecoverRecords_PatchesBestCandidate(t *testing.T) {
	cat := testCatalog(t)
	engine := NewEngine(cat, zap.NewNop())
	r := NewRecoverer(engine, &fakeHistory{}, zap.NewNop())

	// No retained answers anywhere; two score sources of different quality.
	full := fullScoreMapAny(60)
	full[domain.ResultValuesProfile] = map[string]any{"achievement": float64(70)}
	rec := domain.AssessmentRecord{
		ID:      "partial-1",
		Version: "3.0.0",
		Results: map[string]any{},
		LegacyScores: map[string]any{
			domain.ScoreKey(domain.DimOpenness, domain.ContextUsual): float64(55),
		},
		LegacyDimensionScores: full,
	}

	out, stats, changed := r.RecoverRecords([]domain.AssessmentRecord{rec})
	if !changed || stats.Patched != 1 {
		t.Fatalf("expected one patch, got %+v", stats)
	}

	repaired := out[0]
	scores := asMap(repaired.Results[domain.ResultScores])
	for _, dim := range domain.CoreDimensions() {
		if _, ok := asInt(scores[domain.ScoreKey(dim, domain.ContextUsual)]); !ok {
			t.Fatalf("patched scores must come from the fuller candidate, missing %s", dim)
		}
	}
	if _, ok := scores[domain.ResultValuesProfile]; ok {
		t.Fatalf("nested sub-profile must be sanitized out of the score map")
	}
	// The nested sub-profile survives as a hydrated sibling field.
	if _, ok := repaired.Results[domain.ResultValuesProfile]; !ok {
		t.Fatalf("sibling values_profile must be hydrated from the candidate")
	}
	if repaired.ScoresRecoveredAt == nil {
		t.Fatalf("patched record must carry the recovery stamp")
	}

	// The stamp keeps an already-patched record out of the repair loop.
	again, stats, changed := r.RecoverRecords(out)
	if changed || stats.AlreadyValid != 1 {
		t.Fatalf("patched record must be stable on the next pass: %+v", stats)
	}
	if !again[0].ScoresRecoveredAt.Equal(*repaired.ScoresRecoveredAt) {
		t.Fatalf("recovery stamp must not be rewritten")
	}
}

func TestRecoverRecords_GivesUpWithoutSources(t *testing.T) {
	cat := testCatalog(t)
	engine := NewEngine(cat, zap.NewNop())
	r := NewRecoverer(engine, &fakeHistory{}, zap.NewNop())

	rec := domain.AssessmentRecord{
		ID:      "hopeless-1",
		Version: "3.0.0",
		Results: map[string]any{"summary": "nothing usable here"},
	}

	out, stats, changed := r.RecoverRecords([]domain.AssessmentRecord{rec})
	if changed || stats.Failed != 1 {
		t.Fatalf("expected a failed repair, got %+v", stats)
	}
	if out[0].ScoresRecoveredAt != nil || out[0].Version != "3.0.0" {
		t.Fatalf("unrecoverable record must be left unchanged")
	}
}

func TestRetainedAnswers_LooseShapes(t *testing.T) {
	rec := domain.AssessmentRecord{
		Results: map[string]any{
			domain.ResultLegacyAnswers: map[string]any{"1": float64(5), "2": float64(3)},
		},
	}
	answers := retainedAnswers(rec)
	if answers[1] != 5 || answers[2] != 3 {
		t.Fatalf("loose answer shape not decoded: %v", answers)
	}

	typed := domain.AssessmentRecord{RawAnswers: domain.AnswerSet{7: 2}}
	if got := retainedAnswers(typed); got[7] != 2 {
		t.Fatalf("typed rawAnswers must be preferred: %v", got)
	}
	if retainedAnswers(domain.AssessmentRecord{}) != nil {
		t.Fatalf("empty record must retain nothing")
	}
}

func TestRunStartupRecovery_PersistsOnlyWhenChanged(t *testing.T) {
	cat := testCatalog(t)
	engine := NewEngine(cat, zap.NewNop())

	healthy, err := engine.BuildRecord("dana", fullAnswerSet(t))
	if err != nil {
		t.Fatalf("build record: %v", err)
	}
	damaged := domain.AssessmentRecord{
		ID:         "damaged-2",
		Version:    "3.0.0",
		Results:    map[string]any{},
		RawAnswers: fullAnswerSet(t),
	}

	history := &fakeHistory{records: []domain.AssessmentRecord{healthy, damaged}}
	r := NewRecoverer(engine, history, zap.NewNop())

	out, stats, err := r.RunStartupRecovery(context.Background())
	if err != nil {
		t.Fatalf("startup recovery: %v", err)
	}
	if stats.AlreadyValid != 1 || stats.Recalculated != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if history.saves != 1 {
		t.Fatalf("expected exactly one save, got %d", history.saves)
	}
	if len(out) != 2 {
		t.Fatalf("recovery must preserve the history length, got %d", len(out))
	}

	// Nothing to repair on the second run, so nothing is persisted.
	if _, _, err := r.RunStartupRecovery(context.Background()); err != nil {
		t.Fatalf("second startup recovery: %v", err)
	}
	if history.saves != 1 {
		t.Fatalf("unchanged history must not be re-persisted, saves=%d", history.saves)
	}
}

func TestRunStartupRecovery_LoadErrorPropagates(t *testing.T) {
	cat := testCatalog(t)
	engine := NewEngine(cat, zap.NewNop())
	wantErr := errors.New("backend down")
	r := NewRecoverer(engine, &fakeHistory{loadErr: wantErr}, zap.NewNop())

	if _, _, err := r.RunStartupRecovery(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("expected load error to propagate, got %v", err)
	}
}
