package monitor

type HealthCode int

const (
	HealthOK      HealthCode = 0
	HealthDelayed HealthCode = 1
	HealthFailed  HealthCode = 2
)

const (
	MessageDelayed    = "Execution is delayed"
	MessageInProgress = "Execution in progress"
	MessageFailed     = "Execution failed"
	MessageCompleted  = "Execution completed"
)

// Verdict is the health status computed for one monitor in one cycle.
// SourceExecutionID is empty when no execution backed the verdict.
type Verdict struct {
	StatusCode        HealthCode
	Message           string
	SourceExecutionID string
}

// DelayedVerdict is the default when a window holds no executions.
func DelayedVerdict() Verdict {
	return Verdict{StatusCode: HealthDelayed, Message: MessageDelayed}
}

// ReportOutcome classifies what happened to one monitor in one cycle.
type ReportOutcome string

const (
	OutcomeDone              ReportOutcome = "done"
	OutcomeFailed            ReportOutcome = "failed"
	OutcomeSkippedPaused     ReportOutcome = "skipped_paused"
	OutcomePendingGrace      ReportOutcome = "pending_grace"
	OutcomeSkippedNoEndpoint ReportOutcome = "skipped_no_endpoint"
)

func (o ReportOutcome) String() string {
	return string(o)
}
