// Package metrics records scan lifecycle and adapter metrics with Prometheus.
package metrics

import "time"

//go:generate mockgen -destination=mocks/mock_recorder.go -package=mocks github.com/anstrom/scandeck/internal/metrics Recorder

// Scan outcome labels.
const (
	StatusCompleted   = "completed"
	StatusFailed      = "failed"
	StatusParseFailed = "parse_failed"
	StatusKilled      = "killed"
)

// Recorder is what the rest of scandeck reports to. Tests substitute a mock.
type Recorder interface {
	// ScanStarted counts a launched scan for profile (may be empty).
	ScanStarted(profile string)

	// ScanFinished counts a scan leaving the scanning state.
	ScanFinished(status string, duration time.Duration)

	// ParseCompleted records how long a parse took and how many hosts it produced.
	ParseCompleted(duration time.Duration, hosts int)

	// FingerprintsFound counts hosts with unrecognised fingerprints.
	FingerprintsFound(count int)

	// SetActiveScans sets the number of tabs currently scanning.
	SetActiveScans(count int)

	// HTTPRequest records one adapter request.
	HTTPRequest(method, route string, status int, duration time.Duration)

	// ArchiveQuery records one archive database operation.
	ArchiveQuery(operation string, duration time.Duration, success bool)
}

// Nop discards everything. It is used when metrics are disabled.
type Nop struct{}

func (Nop) ScanStarted(string)                             {}
func (Nop) ScanFinished(string, time.Duration)             {}
func (Nop) ParseCompleted(time.Duration, int)              {}
func (Nop) FingerprintsFound(int)                          {}
func (Nop) SetActiveScans(int)                             {}
func (Nop) HTTPRequest(string, string, int, time.Duration) {}
func (Nop) ArchiveQuery(string, time.Duration, bool)       {}

var (
	_ Recorder = (*PrometheusMetrics)(nil)
	_ Recorder = Nop{}
)
