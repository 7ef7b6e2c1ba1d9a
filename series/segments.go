package series

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Segment is the half-open GPS interval [Start, End).
type Segment struct {
	Start, End float64
}

// Duration returns End-Start.
func (s Segment) Duration() float64 { return s.End - s.Start }

// Contains reports whether t lies in s.
func (s Segment) Contains(t float64) bool { return s.Start <= t && t < s.End }

// Intersect returns the overlap of s and o and whether it is non-empty.
func (s Segment) Intersect(o Segment) (Segment, bool) {
	out := Segment{Start: max(s.Start, o.Start), End: min(s.End, o.End)}
	return out, out.End > out.Start
}

func (s Segment) String() string {
	return fmt.Sprintf("[%g ... %g)", s.Start, s.End)
}

// SegmentList is an ordered list of segments.
type SegmentList []Segment

// Coalesce returns the list sorted with touching and overlapping segments
// merged and empty ones dropped.
func (l SegmentList) Coalesce() SegmentList {
	sorted := make(SegmentList, 0, len(l))
	for _, s := range l {
		if s.End > s.Start {
			sorted = append(sorted, s)
		}
	}

	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	out := SegmentList{}
	for _, s := range sorted {
		if n := len(out); n > 0 && s.Start <= out[n-1].End {
			out[n-1].End = max(out[n-1].End, s.End)
			continue
		}

		out = append(out, s)
	}

	return out
}

// Duration returns the summed duration of all segments.
func (l SegmentList) Duration() float64 {
	var d float64
	for _, s := range l {
		d += s.Duration()
	}

	return d
}

func (l SegmentList) String() string {
	parts := make([]string, len(l))
	for i, s := range l {
		parts[i] = s.String()
	}

	return strings.Join(parts, ", ")
}

// Contains reports whether any segment contains t.
func (l SegmentList) Contains(t float64) bool {
	for _, s := range l {
		if s.Contains(t) {
			return true
		}
	}

	return false
}

// Flag records where a condition is known and where it holds.
type Flag struct {
	Name   string
	Known  SegmentList
	Active SegmentList
}

// Inactive returns the known segments where the flag is not active.
func (f *Flag) Inactive() SegmentList {
	active := f.Active.Coalesce()

	out := SegmentList{}
	for _, k := range f.Known.Coalesce() {
		cur := k.Start
		for _, a := range active {
			if a.End <= cur || a.Start >= k.End {
				continue
			}

			if a.Start > cur {
				out = append(out, Segment{Start: cur, End: a.Start})
			}

			cur = max(cur, a.End)
		}

		if cur < k.End {
			out = append(out, Segment{Start: cur, End: k.End})
		}
	}

	return out
}

// Availability builds a flag by checking ts every step seconds at
// t0+i*step+step/2 for i < n, where n = int(duration/step)-1. A check
// point is active where the sample there is not NaN. Check points are
// expected on the sample grid; any that are not count as inactive.
func Availability(name string, ts *TimeSeries, t0, duration, step float64) Flag {
	n := int(duration/step) - 1
	f := Flag{Name: name, Known: SegmentList{}, Active: SegmentList{}}
	if n <= 0 {
		return f
	}

	f.Known = SegmentList{{Start: t0, End: t0 + float64(n)*step}}

	var active SegmentList
	for i := range n {
		v, err := ts.ValueAt(t0 + float64(i)*step + step/2)
		if err != nil || math.IsNaN(v) {
			continue
		}

		start := t0 + float64(i)*step
		active = append(active, Segment{Start: start, End: start + step})
	}

	f.Active = active.Coalesce()

	return f
}
