package audit

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tidwall/gjson"
)

const (
	// Long tasks shorter than this never block input.
	blockingThresholdMs = 50
	// TTI needs this much main-thread quiet after the last long task.
	quietWindowMs = 5000
	// Layout shifts group into sessions separated by gaps of at least 1s, capped at 5s.
	shiftSessionGapMs = 1000
	shiftSessionMaxMs = 5000
	// Floor for max potential FID, one frame.
	minPotentialFIDMs = 16
)

type longTask struct {
	Start    float64
	Duration float64
}

func (t longTask) End() float64 { return t.Start + t.Duration }

type layoutShift struct {
	Time  float64
	Value float64
}

type lcpCandidate struct {
	Time float64
	Size float64
}

// pageTimings is what the in-page observer collected, in ms since navigation start.
type pageTimings struct {
	FinalURL  string
	FCP       float64
	DCL       float64
	Load      float64
	LCP       []lcpCandidate
	Shifts    []layoutShift
	LongTasks []longTask
}

var errInvalidTimings = errors.New("invalid timings payload")

// parseTimings decodes the collector payload.
func parseTimings(raw string) (pageTimings, error) {
	if !gjson.Valid(raw) {
		return pageTimings{}, errInvalidTimings
	}
	doc := gjson.Parse(raw)

	t := pageTimings{
		FinalURL: doc.Get("finalUrl").String(),
		FCP:      doc.Get("fcp").Float(),
		DCL:      doc.Get("dcl").Float(),
		Load:     doc.Get("load").Float(),
	}
	doc.Get("lcp").ForEach(func(_, v gjson.Result) bool {
		t.LCP = append(t.LCP, lcpCandidate{Time: v.Get("0").Float(), Size: v.Get("1").Float()})
		return true
	})
	doc.Get("shifts").ForEach(func(_, v gjson.Result) bool {
		t.Shifts = append(t.Shifts, layoutShift{Time: v.Get("0").Float(), Value: v.Get("1").Float()})
		return true
	})
	doc.Get("longTasks").ForEach(func(_, v gjson.Result) bool {
		t.LongTasks = append(t.LongTasks, longTask{Start: v.Get("0").Float(), Duration: v.Get("1").Float()})
		return true
	})
	return t, nil
}

// audits derives the metric entries. LCP is left out when no candidate was seen.
func (t pageTimings) audits() (map[string]Entry, error) {
	if t.FCP <= 0 {
		return nil, fmt.Errorf("no first contentful paint recorded")
	}

	tti := timeToInteractive(t.FCP, t.DCL, t.LongTasks)
	tbt := totalBlockingTime(t.FCP, tti, t.LongTasks)
	fid := maxPotentialFID(t.FCP, t.LongTasks)
	cls := cumulativeLayoutShift(t.Shifts)
	si := speedIndex(t.FCP, t.LCP)

	entries := map[string]Entry{
		MetricFirstContentfulPaint: msEntry(MetricFirstContentfulPaint, t.FCP, FormatSeconds(t.FCP)),
		MetricSpeedIndex:           msEntry(MetricSpeedIndex, si, FormatSeconds(si)),
		MetricMaxPotentialFID:      msEntry(MetricMaxPotentialFID, fid, FormatMilliseconds(fid)),
		MetricTotalBlockingTime:    msEntry(MetricTotalBlockingTime, tbt, FormatMilliseconds(tbt)),
		MetricInteractive:          msEntry(MetricInteractive, tti, FormatSeconds(tti)),
		MetricCumulativeLayoutShift: {
			ID:           MetricCumulativeLayoutShift,
			NumericValue: cls,
			NumericUnit:  "unitless",
			DisplayValue: FormatUnitless(cls),
		},
	}
	if lcp, ok := largestContentfulPaint(t.LCP); ok {
		entries[MetricLargestContentfulPaint] = msEntry(MetricLargestContentfulPaint, lcp, FormatSeconds(lcp))
	}
	return entries, nil
}

func msEntry(id string, v float64, display string) Entry {
	return Entry{ID: id, NumericValue: v, NumericUnit: "millisecond", DisplayValue: display}
}

// largestContentfulPaint is the render time of the last candidate.
func largestContentfulPaint(candidates []lcpCandidate) (float64, bool) {
	var lcp float64
	for _, c := range candidates {
		lcp = max(lcp, c.Time)
	}
	return lcp, lcp > 0
}

// cumulativeLayoutShift returns the largest session-window sum.
func cumulativeLayoutShift(shifts []layoutShift) float64 {
	sorted := append([]layoutShift(nil), shifts...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })

	var best, current, windowStart, last float64
	for i, s := range sorted {
		if i == 0 || s.Time-last >= shiftSessionGapMs || s.Time-windowStart >= shiftSessionMaxMs {
			current = 0
			windowStart = s.Time
		}
		current += s.Value
		last = s.Time
		best = max(best, current)
	}
	return best
}

// timeToInteractive is the end of the last long task before a quiet window,
// never earlier than FCP or DOMContentLoaded.
func timeToInteractive(fcp, dcl float64, tasks []longTask) float64 {
	sorted := sortedTasks(tasks)

	tti := fcp
	for _, task := range sorted {
		if task.End() <= fcp {
			continue
		}
		if task.Start-tti >= quietWindowMs {
			break
		}
		tti = max(tti, task.End())
	}
	return max(tti, dcl)
}

// totalBlockingTime sums the part of each long task above 50ms between FCP and TTI.
func totalBlockingTime(fcp, tti float64, tasks []longTask) float64 {
	var total float64
	for _, task := range tasks {
		start := max(task.Start, fcp)
		end := min(task.End(), tti)
		if d := end - start; d > blockingThresholdMs {
			total += d - blockingThresholdMs
		}
	}
	return total
}

// maxPotentialFID is the longest task starting after FCP.
func maxPotentialFID(fcp float64, tasks []longTask) float64 {
	longest := float64(minPotentialFIDMs)
	for _, task := range tasks {
		if task.Start >= fcp {
			longest = max(longest, task.Duration)
		}
	}
	return longest
}

// speedIndex integrates visual incompleteness over time. Progress is zero
// until FCP and then follows the growth of the largest painted element.
func speedIndex(fcp float64, candidates []lcpCandidate) float64 {
	if fcp <= 0 {
		return 0
	}

	var final float64
	for _, c := range candidates {
		final = max(final, c.Size)
	}
	if final == 0 {
		return fcp
	}

	sorted := append([]lcpCandidate(nil), candidates...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })

	si, prev, progress := fcp, fcp, 0.0
	for _, c := range sorted {
		t := max(c.Time, fcp)
		si += (t - prev) * (1 - progress)
		prev = t
		progress = max(progress, c.Size/final)
	}
	return si
}

func sortedTasks(tasks []longTask) []longTask {
	sorted := append([]longTask(nil), tasks...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	return sorted
}
