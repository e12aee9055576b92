package logsink

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"truckmonitor/internal/model"
)

var linePattern = regexp.MustCompile(
	`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{6}), Truck ID: (.*?), Position: \((-?\d+), (-?\d+), (-?\d+), (-?\d+)\), Object Size: (.*?), Status: (Normal|Anomaly), Turn Info: ?(.*)$`)

// ParseLine reads back a line written by FormatLine. Timestamps are
// interpreted in loc. Label, confidence and run metadata are not part of
// the line and stay zero.
func ParseLine(line string, loc *time.Location) (model.LogRecord, error) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return model.LogRecord{}, fmt.Errorf("malformed log line %q", line)
	}

	ts, err := time.ParseInLocation(TimestampLayout, m[1], loc)
	if err != nil {
		return model.LogRecord{}, fmt.Errorf("malformed timestamp %q: %w", m[1], err)
	}

	var box [4]int
	for i := range box {
		// The pattern guarantees digits.
		box[i], _ = strconv.Atoi(m[3+i])
	}

	return model.LogRecord{
		Timestamp:  ts,
		SubjectID:  m[2],
		Position:   model.Box{X: box[0], Y: box[1], Width: box[2], Height: box[3]},
		SizeBucket: m[7],
		Status:     model.Status(m[8]),
		Motion:     m[9],
	}, nil
}
