package logsink

import (
	"fmt"

	"truckmonitor/internal/model"
)

// TimestampLayout matches the store's historical "YYYY-MM-DD HH:MM:SS.ffffff" stamps.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// FormatLine renders a record as one store line, newline included. Fields are
// comma-separated in a fixed order: timestamp, subject, position, size bucket,
// status, motion.
func FormatLine(r model.LogRecord) string {
	return fmt.Sprintf("%s, Truck ID: %s, Position: %s, Object Size: %s, Status: %s, Turn Info: %s\n",
		r.Timestamp.Format(TimestampLayout),
		r.SubjectID,
		r.Position,
		r.SizeBucket,
		r.Status,
		r.Motion,
	)
}
