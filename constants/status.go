package constants

// JobStatus is the canonical status for a document processing job.
type JobStatus string

// Stable values (stored verbatim in the orders database).
const (
	JobStatusQueued     JobStatus = "QUEUED"      // row written, sections not yet stored
	JobStatusTextOK     JobStatus = "TEXT_OK"     // stage 1 completed (text extracted and parsed)
	JobStatusAnalysisOK JobStatus = "ANALYSIS_OK" // stage 2 completed (analysis sections stored)
	JobStatusFailed     JobStatus = "FAILED"      // terminal failure
)

// RunStatus mirrors the remote analysis service's run status enum.
type RunStatus string

const (
	RunStatusQueued     RunStatus = "queued"
	RunStatusInProgress RunStatus = "in_progress"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
	RunStatusCancelled  RunStatus = "cancelled"
)

// Terminal reports whether a run status ends the polling loop.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled:
		return true
	}
	return false
}
