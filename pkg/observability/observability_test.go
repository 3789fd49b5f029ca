package observability

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, m *Metrics, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if matchLabels(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matchLabels(metric *dto.Metric, labels map[string]string) bool {
	for _, lp := range metric.GetLabel() {
		if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
			return false
		}
	}
	return true
}

func TestMetrics_Record(t *testing.T) {
	m := NewMetrics()

	m.RecordLines(10, 3)
	m.RecordSection("streaks", 0.002)
	m.RecordClassifications("sentiment", 4, 1)
	m.RecordClassifierFailure("sentiment", "rate_limit")
	m.RecordMedia(MediaSticker, 2, 1)
	m.ReportBytes.Set(1234)
	m.RunDurationSeconds.Set(0.5)

	if got := counterValue(t, m, "conversa_transcript_lines_total", map[string]string{"result": ResultMatched}); got != 10 {
		t.Errorf("matched lines = %v, want 10", got)
	}
	if got := counterValue(t, m, "conversa_transcript_lines_total", map[string]string{"result": ResultDropped}); got != 3 {
		t.Errorf("dropped lines = %v, want 3", got)
	}
	if got := counterValue(t, m, "conversa_classifications_total", map[string]string{"metric": "sentiment", "status": StatusFailure}); got != 1 {
		t.Errorf("failed classifications = %v, want 1", got)
	}
	if got := counterValue(t, m, "conversa_classifier_failures_total", map[string]string{"metric": "sentiment", "reason": "rate_limit"}); got != 1 {
		t.Errorf("classifier failures = %v, want 1", got)
	}

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	expectedMetrics := map[string]bool{
		"conversa_transcript_lines_total":    false,
		"conversa_section_seconds":           false,
		"conversa_classifications_total":     false,
		"conversa_classifier_failures_total": false,
		"conversa_media_files_total":         false,
		"conversa_report_bytes":              false,
		"conversa_run_duration_seconds":      false,
	}
	for _, fam := range families {
		if _, ok := expectedMetrics[fam.GetName()]; ok {
			expectedMetrics[fam.GetName()] = true
		}
	}
	for name, found := range expectedMetrics {
		if !found {
			t.Errorf("Metric %s not found in registry", name)
		}
	}
}

func TestMetrics_RegistriesAreIndependent(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()
	a.RecordLines(1, 0)

	if got := counterValue(t, b, "conversa_transcript_lines_total", map[string]string{"result": ResultMatched}); got != 0 {
		t.Errorf("second registry saw %v matched lines", got)
	}
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.RecordLines(7, 0)

	path := filepath.Join(t.TempDir(), "conversa.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), `conversa_transcript_lines_total{result="matched"} 7`) {
		t.Errorf("textfile missing matched counter:\n%s", data)
	}
}

func TestMetrics_WriteTextfileBadPath(t *testing.T) {
	m := NewMetrics()
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	err := m.WriteTextfile(filepath.Join(blocker, "x.prom"))
	if err == nil {
		t.Error("expected error when the parent is a regular file")
	}
}

func TestTracer_Spans(t *testing.T) {
	tr := NewTracer()
	ctx := context.Background()

	ctx, run := tr.StartRunSpan(ctx, "run-1", "chat.txt")
	defer run.End()

	_, parse := tr.StartParseSpan(ctx)
	h := NewSpanHelper(parse)
	h.SetTranscript("seconds", 42)
	h.SetSuccess()
	parse.End()

	_, section := tr.StartSectionSpan(ctx, "streaks")
	h = NewSpanHelper(section)
	h.SetItems(5, 1)
	h.SetError(errors.New("boom"))
	section.End()

	_, write := tr.StartWriteSpan(ctx)
	write.End()
}
