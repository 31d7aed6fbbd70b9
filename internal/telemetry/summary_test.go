package telemetry

import (
	"strings"
	"testing"
)

func TestSummarize(t *testing.T) {
	events := []*Event{
		{Kind: ToolRun, DurationMS: 100, ExitCode: 0},
		{Kind: ToolRun, DurationMS: 200, ExitCode: 1, Errors: []string{"E1101", "E1101", "E2000"}},
		{Kind: ToolRun, DurationMS: 300, ExitCode: 1, Errors: []string{"E0001", "E2000"}},
		{Kind: "other", DurationMS: 9999, ExitCode: 5},
	}
	s := Summarize(events)

	if s.Runs != 3 {
		t.Errorf("Runs = %d, want 3", s.Runs)
	}
	if s.Failed != 2 {
		t.Errorf("Failed = %d, want 2", s.Failed)
	}
	if s.MeanDurationMS != 200 {
		t.Errorf("MeanDurationMS = %d, want 200", s.MeanDurationMS)
	}
	want := []ErrorCount{{"E1101", 2}, {"E2000", 2}, {"E0001", 1}}
	if len(s.Errors) != len(want) {
		t.Fatalf("Errors = %v, want %v", s.Errors, want)
	}
	for i := range want {
		if s.Errors[i] != want[i] {
			t.Errorf("Errors[%d] = %v, want %v", i, s.Errors[i], want[i])
		}
	}

	text := s.String()
	if !strings.Contains(text, "Runs: 3 (2 failed)") {
		t.Errorf("String() = %q", text)
	}
	if !strings.Contains(text, "E1101") {
		t.Errorf("String() missing error code: %q", text)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.Runs != 0 || s.MeanDurationMS != 0 || s.Errors != nil {
		t.Errorf("Summarize(nil) = %+v", s)
	}
	if !strings.Contains(s.String(), "No error codes recorded.") {
		t.Errorf("String() = %q", s.String())
	}
}
