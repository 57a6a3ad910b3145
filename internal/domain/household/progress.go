package household

import "time"

type ProgressStatus string

const (
	ProgressInProgress ProgressStatus = "in-progress"
	ProgressCompleted  ProgressStatus = "completed"
	ProgressCancelled  ProgressStatus = "cancelled"
)

// Progress channel event names.
const (
	EventImportProgress = "importProgress"
	EventImportComplete = "importComplete"
)

const EstimateCompleted = "Completed"

type RecordDetail struct {
	RowNumber     int      `json:"rowNumber"`
	FirstName     string   `json:"firstName"`
	LastName      string   `json:"lastName"`
	Reason        string   `json:"reason,omitempty"`
	ChangedFields []string `json:"changedFields,omitempty"`
}

type CurrentRecord struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// ImportProgress is the per-user live view of one import run.
type ImportProgress struct {
	RunID                  string         `json:"runId"`
	TotalRecords           int            `json:"totalRecords"`
	ProcessedRecords       int            `json:"processedRecords"`
	CreatedCount           int            `json:"createdCount"`
	UpdatedCount           int            `json:"updatedCount"`
	FailedCount            int            `json:"failedCount"`
	DuplicateCount         int            `json:"duplicateCount"`
	Percentage             int            `json:"percentage"`
	EstimatedTimeRemaining string         `json:"estimatedTimeRemaining"`
	CurrentRecord          *CurrentRecord `json:"currentRecord"`
	Status                 ProgressStatus `json:"status"`
	StartedAt              time.Time      `json:"startedAt"`
	CreatedRecordsDetail   []RecordDetail `json:"createdRecordsDetail"`
	UpdatedRecordsDetail   []RecordDetail `json:"updatedRecordsDetail"`
	FailedRecordsDetail    []RecordDetail `json:"failedRecordsDetail"`
	DuplicateRecordsDetail []RecordDetail `json:"duplicateRecordsDetail"`
}

// Clone returns a deep copy safe to hand to another goroutine.
func (p ImportProgress) Clone() ImportProgress {
	out := p
	if p.CurrentRecord != nil {
		current := *p.CurrentRecord
		out.CurrentRecord = &current
	}
	out.CreatedRecordsDetail = cloneDetails(p.CreatedRecordsDetail)
	out.UpdatedRecordsDetail = cloneDetails(p.UpdatedRecordsDetail)
	out.FailedRecordsDetail = cloneDetails(p.FailedRecordsDetail)
	out.DuplicateRecordsDetail = cloneDetails(p.DuplicateRecordsDetail)
	return out
}

func cloneDetails(in []RecordDetail) []RecordDetail {
	out := make([]RecordDetail, len(in))
	for i, d := range in {
		out[i] = d
		if d.ChangedFields != nil {
			out[i].ChangedFields = append([]string(nil), d.ChangedFields...)
		}
	}
	return out
}

// ImportRunSummary is the audit record written when a run finishes.
type ImportRunSummary struct {
	RunID          string
	OwnerID        string
	Status         ProgressStatus
	TotalRecords   int
	CreatedCount   int
	UpdatedCount   int
	FailedCount    int
	DuplicateCount int
	StartedAt      time.Time
	FinishedAt     time.Time
}
