package trace

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrBadTimestamp indicates a timestamp that does not denote a point in time.
var ErrBadTimestamp = errors.New("unparseable timestamp")

// maxEpochMillis is the largest magnitude a recorded millisecond timestamp
// may have (the range of an ECMAScript Date).
const maxEpochMillis = 8.64e15

// TimeSource records where a patch's timestamp came from.
type TimeSource uint8

const (
	// TimeFromPatch means the patch carried its own timestamp (current schema).
	TimeFromPatch TimeSource = iota
	// TimeFromTxn means the timestamp was inherited from the transaction's
	// time field (legacy schema).
	TimeFromTxn
)

// String returns the name of the source.
func (s TimeSource) String() string {
	switch s {
	case TimeFromPatch:
		return "patch"
	case TimeFromTxn:
		return "txn"
	default:
		return "unknown"
	}
}

// Timestamp is an unparsed recorded time. Parsing is deferred to validation
// so that an invalid value is reported with its location.
type Timestamp struct {
	// Raw is the value as recorded: a date string, or the decimal text of a
	// JSON number when Numeric is set.
	Raw string

	// Numeric marks Raw as milliseconds since the Unix epoch.
	Numeric bool

	// Source records the schema the timestamp was resolved from.
	Source TimeSource
}

// StringTime returns a string timestamp taken from the patch itself.
func StringTime(s string) Timestamp {
	return Timestamp{Raw: s}
}

// MillisTime returns a numeric timestamp taken from the patch itself.
func MillisTime(ms int64) Timestamp {
	return Timestamp{Raw: strconv.FormatInt(ms, 10), Numeric: true}
}

// String returns the raw value.
func (ts Timestamp) String() string {
	return ts.Raw
}

// layouts are the date string forms accepted in recorded traces.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// Parse converts the timestamp into a time.Time. Strings without a zone are
// taken as UTC.
func (ts Timestamp) Parse() (time.Time, error) {
	raw := strings.TrimSpace(ts.Raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrBadTimestamp)
	}

	if ts.Numeric {
		ms, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(ms) || math.IsInf(ms, 0) || math.Abs(ms) > maxEpochMillis {
			return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, ts.Raw)
		}
		whole := math.Trunc(ms)
		return time.UnixMilli(int64(whole)).Add(time.Duration((ms - whole) * float64(time.Millisecond))).UTC(), nil
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, ts.Raw)
}
