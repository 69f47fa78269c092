package api

import "roadmap-admin/internal/model"

// RoadmapFields are the editable roadmap fields. Nil dates are sent as JSON null.
type RoadmapFields struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	StartDate   *string             `json:"start_date"`
	EndDate     *string             `json:"end_date"`
	Status      model.RoadmapStatus `json:"status"`
}

type CreateRoadmapRequest struct {
	RoadmapFields
	UserID string `json:"userid"`
}

type UpdateRoadmapRequest struct {
	RoadmapFields
	RoadmapID model.ID `json:"roadmap_id"`
}

type deleteRoadmapRequest struct {
	RoadmapID model.ID `json:"roadmap_id"`
}

// CreateEventRequest is sent as multipart form data. ImagePath, when set, names a local
// file uploaded as the event_image part.
type CreateEventRequest struct {
	RoadmapID   model.ID
	Title       string
	Description string
	Points      int
	ImagePath   string
}

type deleteEventRequest struct {
	EventID model.ID `json:"event_id"`
}

type ReviewRequest struct {
	EventID     model.ID               `json:"event_id"`
	StudentID   model.ID               `json:"student_id"`
	RoadmapID   model.ID               `json:"roadmap_id"`
	Status      model.SubmissionStatus `json:"status"`
	CurrentUser string                 `json:"currentuser"`
}

// SubmissionPage is one page of a submissions listing.
type SubmissionPage struct {
	Submissions []model.Submission `json:"submissions"`
	Pagination  model.Pagination   `json:"pagination"`
}

// envelope is the common response shape of every endpoint.
type envelope struct {
	Success     bool               `json:"success"`
	Error       string             `json:"error,omitempty"`
	Roadmaps    []model.Roadmap    `json:"roadmaps,omitempty"`
	Submissions []model.Submission `json:"submissions,omitempty"`
	Pagination  *model.Pagination  `json:"pagination,omitempty"`
}
