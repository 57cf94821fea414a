package check

import (
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/roach88/cohortcheck/internal/cohort"
)

const (
	warnDrugEraDaysSupply = "Using drug era at %s criteria on medical claims (e.g., biologics) may not be accurate due to missing days supply information"
	warnAtLeastZero       = "'at least 0' occurrence is not a real constraint, probably meant 'exactly 0' or 'at least 1'"
	warnWindowTooLong     = "%s criteria have time window range that is longer than required time for initial event"
	warnMinorityPattern   = "%s time window differs from most common pattern prior '%s', shouldn't that be a valid pattern?"
	warnReversedPattern   = "%s and %s have potentially contradictory time windows: the first happens after the second"
	warnContradiction     = "%s might be contradicted with %s and possibly will lead to 0 records"
	warnDeathBeforeIndex  = "%s attempts to identify death event prior to index event. Events post-death may not be available"
	warnNotFirstInHistory = "%s didn't specify that it must be first time in patient's history"
)

func checkDrugEra(expr *cohort.CohortExpression, r *reporter) {
	walkCorrelated(expr, func(cc *cohort.CorrelatedCriteria, group string) {
		if _, ok := cc.Criteria.(*cohort.DrugEra); !ok {
			return
		}
		openStart := cc.StartWindow == nil || (cc.StartWindow.Start == nil && cc.StartWindow.End == nil)
		openEnd := cc.EndWindow == nil || cc.EndWindow.Start == nil
		if openStart && openEnd {
			r.add(warnDrugEraDaysSupply, group)
		}
	})
}

func checkOccurrence(expr *cohort.CohortExpression, r *reporter) {
	walkCorrelated(expr, func(cc *cohort.CorrelatedCriteria, _ string) {
		if o := cc.Occurrence; o != nil && o.Type == cohort.OccurrenceAtLeast && o.Count == 0 {
			r.add(warnAtLeastZero)
		}
	})
}

// windowSpan is the number of days covered by w. Unbounded endpoints count
// as the index date.
func windowSpan(w *cohort.Window) int {
	if w == nil {
		return 0
	}
	start, _ := w.Start.Offset()
	end, _ := w.End.Offset()
	return end - start
}

func checkTimeWindow(expr *cohort.CohortExpression, r *reporter) {
	if expr.PrimaryCriteria == nil || expr.PrimaryCriteria.ObservationWindow == nil {
		return
	}
	obs := expr.PrimaryCriteria.ObservationWindow
	required := obs.PriorDays + obs.PostDays
	walkCorrelated(expr, func(cc *cohort.CorrelatedCriteria, group string) {
		if cc.StartWindow == nil {
			return
		}
		if required-windowSpan(cc.StartWindow) < 0 {
			r.add(warnWindowTooLong, group+" "+criteriaName(cc))
		}
	})
}

type windowInfo struct {
	name   string
	window *cohort.Window
	start  int
}

// startDays is the signed offset of the start of w, or 0 when unset.
func startDays(w *cohort.Window) int {
	if w == nil {
		return 0
	}
	days, _ := w.Start.Offset()
	return days
}

func formatEndpoint(e *cohort.Endpoint) string {
	days := "all"
	if n, ok := e.Magnitude(); ok {
		days = strconv.Itoa(n)
	}
	dir := "after"
	if e.IsBefore() {
		dir = "before"
	}
	return days + " days " + dir
}

func formatWindow(w *cohort.Window) string {
	if w == nil {
		return ""
	}
	var parts []string
	if w.Start != nil {
		parts = append(parts, formatEndpoint(w.Start))
	}
	if w.End != nil {
		parts = append(parts, formatEndpoint(w.End))
	}
	return strings.Join(parts, " and ")
}

// checkTimePattern collects every correlated start window, then reports
// windows whose start offset differs from the most common one and pairs
// whose order is reversed.
func checkTimePattern(expr *cohort.CohortExpression, r *reporter) {
	var infos []windowInfo
	walkCorrelated(expr, func(cc *cohort.CorrelatedCriteria, group string) {
		infos = append(infos, windowInfo{
			name:   criteriaName(cc) + " criteria at " + group,
			window: cc.StartWindow,
			start:  startDays(cc.StartWindow),
		})
	})
	if len(infos) < 2 {
		return
	}

	starts := make([]float64, len(infos))
	freq := make(map[int]int, len(infos))
	for i, info := range infos {
		starts[i] = float64(info.start)
		freq[info.start]++
	}
	_, maxFreq := stat.Mode(starts, nil)

	if int(maxFreq) > 1 {
		var common windowInfo
		for _, info := range infos {
			if freq[info.start] == int(maxFreq) {
				common = info
				break
			}
		}
		pattern := formatWindow(common.window)
		for _, info := range infos {
			if freq[info.start] < int(maxFreq) {
				r.add(warnMinorityPattern, info.name, pattern)
			}
		}
	}

	for i := 0; i < len(infos)-1; i++ {
		for j := i + 1; j < len(infos); j++ {
			if infos[i].start > 0 && infos[j].start < 0 {
				r.add(warnReversedPattern, infos[i].name, infos[j].name)
			}
		}
	}
}

type occurrenceInfo struct {
	name     string
	codeset  int
	interval cohort.Interval
}

// checkCriteriaContradictions reports pairs of correlated criteria on the
// same concept set whose occurrence counts cannot both hold.
func checkCriteriaContradictions(expr *cohort.CohortExpression, r *reporter) {
	var infos []occurrenceInfo
	walkCorrelated(expr, func(cc *cohort.CorrelatedCriteria, group string) {
		if cc.Criteria == nil {
			return
		}
		id := cohort.CodesetID(cc.Criteria)
		if id == nil {
			return
		}
		infos = append(infos, occurrenceInfo{
			name:     group + " " + criteriaName(cc),
			codeset:  *id,
			interval: cc.Occurrence.Interval(),
		})
	})

	for i := 0; i < len(infos)-1; i++ {
		for j := i + 1; j < len(infos); j++ {
			a, b := infos[i], infos[j]
			if a.codeset == b.codeset && !a.interval.Overlaps(b.interval) {
				r.add(warnContradiction, a.name, b.name)
			}
		}
	}
}

func checkDeathTimeWindow(expr *cohort.CohortExpression, r *reporter) {
	walkCorrelated(expr, func(cc *cohort.CorrelatedCriteria, group string) {
		if _, ok := cc.Criteria.(*cohort.Death); !ok || cc.StartWindow == nil {
			return
		}
		start, startBounded := cc.StartWindow.Start.Offset()
		end, endBounded := cc.StartWindow.End.Offset()
		if startBounded && start < 0 && !(endBounded && end > 0) {
			r.add(warnDeathBeforeIndex, group+" "+cohort.KindDeath.DisplayName())
		}
	})
}

func checkFirstTimeInHistory(expr *cohort.CohortExpression, r *reporter) {
	walkCorrelated(expr, func(cc *cohort.CorrelatedCriteria, group string) {
		w := cc.StartWindow
		if w == nil || cc.Criteria == nil {
			return
		}
		_, startBounded := w.Start.Offset()
		_, endBounded := w.End.Offset()
		if !startBounded && !endBounded {
			return
		}
		switch cc.Criteria.(type) {
		case *cohort.Death, *cohort.LocationRegion, *cohort.DemographicCriteria:
			return
		}
		if cohort.First(cc.Criteria) == nil {
			r.add(warnNotFirstInHistory, criteriaName(cc)+" at "+group)
		}
	})
}
