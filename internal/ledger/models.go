package ledger

import "time"

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Run is one invocation of the pipeline.
type Run struct {
	ID            string
	StartedAt     time.Time
	FinishedAt    time.Time
	Status        Status
	FirstKey      int
	LastKey       int
	KeyCount      int
	CompletedKeys int
	Workers       int
	Instrument    string
	SpeechEngine  string
	ErrorMessage  string
}

// Elapsed returns the run's wall time, or zero while it is still running.
func (r Run) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Artifact is one file a stage wrote during a run.
type Artifact struct {
	RunID     string
	KeyIndex  int
	KeyName   string
	Stage     string
	Path      string
	SizeBytes int64
	Duration  time.Duration
	CreatedAt time.Time
}
