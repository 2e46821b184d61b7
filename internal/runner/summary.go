// pattern: Functional Core

package runner

import (
	"slices"
	"strings"
)

// Summary aggregates the outcomes of a run.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Failures  []Outcome // Sorted by project path
}

// Summarize counts outcomes and collects the failures.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		if o.Success {
			s.Succeeded++
			continue
		}
		s.Failed++
		s.Failures = append(s.Failures, o)
	}
	slices.SortFunc(s.Failures, func(a, b Outcome) int {
		return strings.Compare(a.Project.FullPath(), b.Project.FullPath())
	})
	return s
}
