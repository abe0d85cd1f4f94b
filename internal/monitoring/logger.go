// Package monitoring holds the process-wide diagnostic logger.
package monitoring

import (
	"log"
	"time"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Timed logs how long an operation took when the returned func is called.
// Typical use: defer monitoring.Timed("[api] heatmap %s", id)()
func Timed(format string, v ...interface{}) func() {
	start := time.Now()
	return func() {
		args := append(append([]interface{}{}, v...), float64(time.Since(start).Microseconds())/1000)
		Logf(format+" took %.3fms", args...)
	}
}
