// Package gpstime converts between GPS seconds and UTC.
//
// GPS time does not observe leap seconds, so every conversion consults the
// table of leap seconds inserted since the GPS epoch (1980-01-06T00:00:00Z).
package gpstime

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Epoch is the origin of the GPS time scale.
var Epoch = time.Date(1980, time.January, 6, 0, 0, 0, 0, time.UTC)

// leapDays lists the UTC midnights that immediately followed an inserted
// leap second, in increasing order.
var leapDays = []time.Time{
	utcDay(1981, time.July, 1),
	utcDay(1982, time.July, 1),
	utcDay(1983, time.July, 1),
	utcDay(1985, time.July, 1),
	utcDay(1988, time.January, 1),
	utcDay(1990, time.January, 1),
	utcDay(1991, time.January, 1),
	utcDay(1992, time.July, 1),
	utcDay(1993, time.July, 1),
	utcDay(1994, time.July, 1),
	utcDay(1996, time.January, 1),
	utcDay(1997, time.July, 1),
	utcDay(1999, time.January, 1),
	utcDay(2006, time.January, 1),
	utcDay(2009, time.January, 1),
	utcDay(2012, time.July, 1),
	utcDay(2015, time.July, 1),
	utcDay(2017, time.January, 1),
}

// leapGPS holds the GPS second at which each entry of leapDays begins.
var leapGPS = func() []int64 {
	out := make([]int64, len(leapDays))
	for i, d := range leapDays {
		out[i] = int64(d.Sub(Epoch)/time.Second) + int64(i+1)
	}
	return out
}()

// ErrInvalidTimestamp is returned by AnyToGPS for unparseable input.
var ErrInvalidTimestamp = errors.New("gpstime: invalid timestamp")

const isotLayout = "2006-01-02T15:04:05.000"

func utcDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LeapSeconds returns the number of leap seconds between the GPS epoch and
// the given GPS time.
func LeapSeconds(gps float64) int {
	n := 0
	for _, l := range leapGPS {
		if gps >= float64(l) {
			n++
		}
	}
	return n
}

// ToUTC converts GPS seconds to a UTC time. A GPS time inside an inserted
// leap second maps onto the last second of the preceding day.
func ToUTC(gps float64) time.Time {
	ms := int64(math.Round(gps * 1000))
	sec := floorDiv(ms, 1000)
	frac := ms - sec*1000
	n := LeapSeconds(float64(sec))
	if inLeapSecond(sec) {
		n++
	}
	return Epoch.Add(time.Duration(sec-int64(n))*time.Second + time.Duration(frac)*time.Millisecond)
}

// FromUTC converts a UTC time to GPS seconds.
func FromUTC(t time.Time) float64 {
	t = t.UTC()
	n := 0
	for _, d := range leapDays {
		if !t.Before(d) {
			n++
		}
	}
	return t.Sub(Epoch).Seconds() + float64(n)
}

// GPSToISOT formats a GPS time as ISO 8601 UTC with a literal T separator
// and millisecond precision. Leap seconds are rendered as second 60.
func GPSToISOT(gps float64) string {
	ms := int64(math.Round(gps * 1000))
	sec := floorDiv(ms, 1000)
	if inLeapSecond(sec) {
		prev := ToUTC(float64(sec - 1))
		frac := ms - sec*1000
		return prev.Format("2006-01-02T15:04:") + "60." + leftPad3(frac)
	}
	return ToUTC(gps).Format(isotLayout)
}

// NowISOT returns the current UTC time in the same format as GPSToISOT.
func NowISOT() string {
	return time.Now().UTC().Format(isotLayout)
}

var isoLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// AnyToGPS interprets user input as a GPS timestamp. It accepts ISO 8601
// UTC with either 'T' or a space between date and time, optionally with a
// trailing 'Z', or a plain decimal number of GPS seconds.
func AnyToGPS(s string) (float64, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return 0, errors.Wrap(ErrInvalidTimestamp, "empty input")
	}
	iso := strings.TrimSuffix(v, "Z")
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, iso); err == nil {
			return FromUTC(t), nil
		}
	}
	gps, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(gps) || math.IsInf(gps, 0) {
		return 0, errors.Wrapf(ErrInvalidTimestamp,
			"could not convert %q to a GPS time or an ISO 8601 UTC date", v)
	}
	return gps, nil
}

func inLeapSecond(sec int64) bool {
	for _, l := range leapGPS {
		if sec == l-1 {
			return true
		}
	}
	return false
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func leftPad3(v int64) string {
	s := strconv.FormatInt(v, 10)
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}
