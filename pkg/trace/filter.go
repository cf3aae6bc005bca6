package trace

import (
	"math"
	"sort"
)

// Window keeps the rows with tmin <= TimePoint <= tmax. A nil bound is open.
func Window(rows []Record, tmin, tmax *float64) []Record {
	if tmin == nil && tmax == nil {
		return rows
	}
	var out []Record
	for _, r := range rows {
		if tmin != nil && !(r.TimePoint >= *tmin) {
			continue
		}
		if tmax != nil && !(r.TimePoint <= *tmax) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Select applies the channel filter followed by the time window.
func Select(t *Table, channel int, tmin, tmax *float64) []Record {
	return Window(t.Channel(channel), tmin, tmax)
}

// Recording returns the rows of a single recording. An empty result is valid.
func Recording(rows []Record, recording int) []Record {
	var out []Record
	for _, r := range rows {
		if r.RecordingIndex == recording {
			out = append(out, r)
		}
	}
	return out
}

// Group is the set of rows sharing a recording index.
type Group struct {
	Recording int
	Stimulus  float64 // First stimulus value seen in the group
	Rows      []Record
}

// GroupByRecording splits rows by recording index, ascending.
// Rows keep their relative order inside each group.
func GroupByRecording(rows []Record) []Group {
	byRec := make(map[int]int)
	var groups []Group
	for _, r := range rows {
		i, ok := byRec[r.RecordingIndex]
		if !ok {
			i = len(groups)
			byRec[r.RecordingIndex] = i
			groups = append(groups, Group{Recording: r.RecordingIndex, Stimulus: r.Stimulus})
		}
		groups[i].Rows = append(groups[i].Rows, r)
	}
	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Recording < groups[b].Recording
	})
	return groups
}

// StimulusRange returns the min and max stimulus value ignoring NaN.
// Without any value the range is [0, 1].
func StimulusRange(rows []Record) (lo, hi float64) {
	lo, hi, ok := finiteRange(rows, func(r Record) float64 { return r.Stimulus })
	if !ok {
		return 0, 1
	}
	return lo, hi
}

// AmplitudeRange returns the finite amplitude min and max.
func AmplitudeRange(rows []Record) (lo, hi float64, ok bool) {
	return finiteRange(rows, func(r Record) float64 { return r.Amplitude })
}

// TimeRange returns the finite time min and max.
func TimeRange(rows []Record) (lo, hi float64, ok bool) {
	return finiteRange(rows, func(r Record) float64 { return r.TimePoint })
}

// FixedYRange computes vertical limits shared by every single trace of a
// channel: the amplitude range of channelRows padded by 5% on each side.
// ok is false when the range is empty or degenerate.
func FixedYRange(channelRows []Record) (lo, hi float64, ok bool) {
	lo, hi, ok = AmplitudeRange(channelRows)
	if !ok || lo == hi {
		return 0, 0, false
	}
	pad := 0.05 * (hi - lo)
	return lo - pad, hi + pad, true
}

func finiteRange(rows []Record, value func(Record) float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, r := range rows {
		v := value(r)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		ok = true
	}
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}
