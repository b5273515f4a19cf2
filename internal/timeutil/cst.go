package timeutil

import (
	"time"
)

// CST is the China Standard Time location (UTC+8). The packing floor and
// all stamped lifecycle dates use factory-local time.
var CST *time.Location

func init() {
	var err error
	CST, err = time.LoadLocation("Asia/Shanghai")
	if err != nil {
		// Fallback: create fixed zone if Asia/Shanghai not available
		CST = time.FixedZone("CST", 8*60*60) // UTC+8
	}
}

// Now returns the current time in CST
func Now() time.Time {
	return time.Now().In(CST)
}

// ToCST converts any time to CST
func ToCST(t time.Time) time.Time {
	return t.In(CST)
}

// FormatCST formats a time in CST using the given layout
func FormatCST(t time.Time, layout string) string {
	return t.In(CST).Format(layout)
}

// Common layouts for CST formatting
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)
