package view

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrDataGap marks failures caused by missing strain near t0.
	ErrDataGap = errors.New("view: data gap")
	// ErrZeroRange marks a frequency range whose limits coincide.
	ErrZeroRange = errors.New("view: zero frequency range")
	// ErrInvalidOption marks a choice that is not on offer.
	ErrInvalidOption = errors.New("view: invalid option")
)

const (
	rawGapText = "t0 is too close to or inside a data gap. Please try a shorter " +
		"time interval, or try changing the requested timestamp."
	filteredGapText = "t0 is too close to (or inside) a data gap, unable to filter " +
		"the data. Please try a shorter time interval or try changing the " +
		"requested timestamp."
	asdGapText = "t0 is too close to (or inside) a data gap, unable to extract a " +
		"spectrum. Try a shorter time interval or try varying the requested " +
		"timestamp."
	backgroundGapText = "t0 is too close to a data gap, unable to include a " +
		"background spectrum. Try changing the time offset."
	qGapText = "t0 is too close to (or inside) a data gap, unable to compute the " +
		"Q-transform. Try a shorter time interval or try varying the requested " +
		"timestamp."
	zeroRangeText = "Please make the frequency range wider."
)

// dataGap wraps cause as a data gap carrying the text shown to the user.
func dataGap(cause error, text string) error {
	if cause == nil {
		cause = errors.New("NaN in result")
	}
	return errors.WithHint(errors.Mark(cause, ErrDataGap), text)
}

func invalidOption(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidOption)
}

// UserMessage returns the text to show for err: its hints when it has
// any, otherwise the error message.
func UserMessage(err error) string {
	if h := errors.FlattenHints(err); h != "" {
		return h
	}
	return err.Error()
}
