package model

type RoadmapStatus string

const (
	RoadmapActive   RoadmapStatus = "active"
	RoadmapInactive RoadmapStatus = "inactive"
)

func (s RoadmapStatus) Valid() bool {
	return s == RoadmapActive || s == RoadmapInactive
}

type Roadmap struct {
	ID          ID            `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	StartDate   *string       `json:"start_date"` // YYYY-MM-DD
	EndDate     *string       `json:"end_date"`   // YYYY-MM-DD
	Status      RoadmapStatus `json:"status"`

	// Read-only, computed by the server.
	EventCount    int    `json:"event_count"`
	CreatedBy     ID     `json:"created_by,omitempty"`
	CreatedByName string `json:"created_by_name,omitempty"`
}

type Event struct {
	ID          ID     `json:"id"`
	RoadmapID   ID     `json:"roadmap_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	Image       string `json:"event_image,omitempty"`
}

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// IsDecision reports whether s is a terminal review outcome.
func (s SubmissionStatus) IsDecision() bool {
	return s == SubmissionApproved || s == SubmissionRejected
}

type Submission struct {
	StudentID    ID               `json:"student_id"`
	EventID      ID               `json:"event_id"`
	RoadmapID    ID               `json:"roadmap_id"`
	Status       SubmissionStatus `json:"status"`
	SubmittedAt  Timestamp        `json:"submitted_at"`
	PointsEarned *int             `json:"points_earned"`

	// Display fields joined in by the server.
	StudentName  string `json:"student_name,omitempty"`
	RoadmapTitle string `json:"roadmap_title,omitempty"`
	EventTitle   string `json:"event_title,omitempty"`
	Points       int    `json:"points"`
}

// Key is the composite identity of a submission.
func (s Submission) Key() string {
	return string(s.StudentID) + "-" + string(s.EventID)
}

type Pagination struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	TotalCount  int `json:"total_count"`
}

// DefaultPagination is the cursor before any submissions fetch completed.
func DefaultPagination() Pagination {
	return Pagination{CurrentPage: 1, TotalPages: 1, TotalCount: 0}
}
