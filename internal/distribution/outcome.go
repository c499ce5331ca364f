package distribution

// TargetStatus classifies how a target fared during a run.
type TargetStatus string

const (
	// TargetStatusProcessed marks a target that went through every step.
	TargetStatusProcessed TargetStatus = "processed"
	// TargetStatusSkipped marks a target left untouched, such as a missing directory.
	TargetStatusSkipped TargetStatus = "skipped"
	// TargetStatusFailed marks a target whose processing stopped on an error.
	TargetStatusFailed TargetStatus = "failed"
)

// TargetOutcome records the observable effects of processing one target.
type TargetOutcome struct {
	RepositoryPath     string
	Status             TargetStatus
	IgnoreListUpdated  bool
	MarkerCommitted    bool
	GuidelinesReplaced bool
	CopiedFiles        []string
	PromptsCommitted   bool
	LinkCreated        bool
	Failures           []error
}

// Summary aggregates target outcomes in processing order.
type Summary struct {
	Outcomes []TargetOutcome
}

// Count returns the number of outcomes with the given status.
func (summary Summary) Count(status TargetStatus) int {
	matchingOutcomes := 0
	for _, outcome := range summary.Outcomes {
		if outcome.Status == status {
			matchingOutcomes++
		}
	}
	return matchingOutcomes
}

func (outcome *TargetOutcome) fail(failure error) {
	outcome.Status = TargetStatusFailed
	outcome.Failures = append(outcome.Failures, failure)
}
