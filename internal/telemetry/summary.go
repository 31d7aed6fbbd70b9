package telemetry

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ErrorCount is the number of times an error code was reported.
type ErrorCount struct {
	Code  string `json:"code"`
	Count int    `json:"count"`
}

// Summary aggregates a set of tool-run events.
type Summary struct {
	Runs           int          `json:"runs"`
	Failed         int          `json:"failed"`
	TotalDuration  uint64       `json:"total_duration_ms"`
	MeanDurationMS uint64       `json:"mean_duration_ms"`
	Errors         []ErrorCount `json:"errors,omitempty"`
}

// Summarize aggregates the tool-run events among events. Error codes are
// ordered by count, most frequent first, then by code.
func Summarize(events []*Event) Summary {
	var s Summary
	counts := make(map[string]int)
	for _, e := range events {
		if e.Kind != ToolRun {
			continue
		}
		s.Runs++
		if e.Failed() {
			s.Failed++
		}
		s.TotalDuration += e.DurationMS
		for _, code := range e.Errors {
			counts[code]++
		}
	}
	if s.Runs > 0 {
		s.MeanDurationMS = s.TotalDuration / uint64(s.Runs)
	}
	for code, n := range counts {
		s.Errors = append(s.Errors, ErrorCount{Code: code, Count: n})
	}
	slices.SortFunc(s.Errors, func(a, b ErrorCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Code, b.Code)
	})
	return s
}

func (s Summary) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Runs: %d (%d failed)\n", s.Runs, s.Failed)
	if s.Runs > 0 {
		fmt.Fprintf(&b, "Mean duration: %s\n", time.Duration(s.MeanDurationMS)*time.Millisecond)
	}
	if len(s.Errors) == 0 {
		fmt.Fprintln(&b, "No error codes recorded.")
		return b.String()
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Error codes:")
	for _, ec := range s.Errors {
		fmt.Fprintf(&b, "  %-8s %d\n", ec.Code, ec.Count)
	}
	return b.String()
}
