// Package form holds the pending-edit drafts behind the roadmap and event forms.
package form

import (
	"context"
	"fmt"
	"strings"

	"roadmap-admin/internal/api"
	"roadmap-admin/internal/model"
)

// Field keys accepted by SetField.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldStartDate   = "start_date"
	FieldEndDate     = "end_date"
	FieldStatus      = "status"
	FieldRoadmapID   = "roadmap_id"
	FieldPoints      = "points"
	FieldImage       = "event_image"
)

type unknownFieldError struct {
	form string
	key  string
}

func (e unknownFieldError) Error() string {
	return fmt.Sprintf("%s form: unknown field %q", e.form, e.key)
}

// RoadmapDraft mirrors the editable roadmap fields as the form holds them. Empty dates mean
// "no date".
type RoadmapDraft struct {
	Title       string              `validate:"required"`
	Description string              `validate:"-"`
	StartDate   string              `validate:"omitempty,datetime=2006-01-02"`
	EndDate     string              `validate:"omitempty,datetime=2006-01-02"`
	Status      model.RoadmapStatus `validate:"oneof=active inactive"`
}

// EmptyRoadmapDraft is the create-mode default.
func EmptyRoadmapDraft() RoadmapDraft {
	return RoadmapDraft{Status: model.RoadmapActive}
}

// RoadmapDraftFrom loads an existing roadmap's editable fields.
func RoadmapDraftFrom(rm model.Roadmap) RoadmapDraft {
	d := RoadmapDraft{
		Title:       rm.Title,
		Description: rm.Description,
		Status:      rm.Status,
	}
	if rm.StartDate != nil {
		d.StartDate = *rm.StartDate
	}
	if rm.EndDate != nil {
		d.EndDate = *rm.EndDate
	}
	return d
}

func (d RoadmapDraft) fields() api.RoadmapFields {
	return api.RoadmapFields{
		Title:       d.Title,
		Description: d.Description,
		StartDate:   optionalDate(d.StartDate),
		EndDate:     optionalDate(d.EndDate),
		Status:      d.Status,
	}
}

func (d RoadmapDraft) ToCreateRequest(userID string) api.CreateRoadmapRequest {
	return api.CreateRoadmapRequest{RoadmapFields: d.fields(), UserID: userID}
}

func (d RoadmapDraft) ToUpdateRequest(id model.ID) api.UpdateRoadmapRequest {
	return api.UpdateRoadmapRequest{RoadmapFields: d.fields(), RoadmapID: id}
}

func optionalDate(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// RoadmapClient is the slice of the API client the roadmap form submits through.
type RoadmapClient interface {
	CreateRoadmap(ctx context.Context, req api.CreateRoadmapRequest) error
	UpdateRoadmap(ctx context.Context, req api.UpdateRoadmapRequest) error
}

// RoadmapForm is create mode while no editing target is set, update mode otherwise.
type RoadmapForm struct {
	draft   RoadmapDraft
	editing *model.Roadmap
	userID  string
}

// NewRoadmapForm returns an empty form that creates roadmaps on behalf of userID.
func NewRoadmapForm(userID string) *RoadmapForm {
	return &RoadmapForm{draft: EmptyRoadmapDraft(), userID: userID}
}

func (f *RoadmapForm) Draft() RoadmapDraft { return f.draft }

// Editing returns the roadmap being edited, or nil in create mode.
func (f *RoadmapForm) Editing() *model.Roadmap {
	if f.editing == nil {
		return nil
	}
	rm := *f.editing
	return &rm
}

func (f *RoadmapForm) Title() string {
	if f.editing != nil {
		return "Edit Roadmap"
	}
	return "Create New Roadmap"
}

func (f *RoadmapForm) SetField(key, value string) error {
	switch key {
	case FieldTitle:
		f.draft.Title = value
	case FieldDescription:
		f.draft.Description = value
	case FieldStartDate:
		f.draft.StartDate = value
	case FieldEndDate:
		f.draft.EndDate = value
	case FieldStatus:
		st := model.RoadmapStatus(strings.TrimSpace(value))
		if !st.Valid() {
			return fmt.Errorf("roadmap form: invalid status %q", value)
		}
		f.draft.Status = st
	default:
		return unknownFieldError{form: "roadmap", key: key}
	}
	return nil
}

// BeginEdit switches to update mode for rm. The caller's snapshot is trusted; nothing is
// fetched.
func (f *RoadmapForm) BeginEdit(rm model.Roadmap) {
	f.editing = &rm
	f.draft = RoadmapDraftFrom(rm)
}

// Cancel discards the draft and leaves update mode.
func (f *RoadmapForm) Cancel() {
	f.editing = nil
	f.draft = EmptyRoadmapDraft()
}

// Submit creates or updates. The draft is reset only on success so a failed attempt can be
// retried as entered.
func (f *RoadmapForm) Submit(ctx context.Context, c RoadmapClient) error {
	var err error
	if f.editing != nil {
		err = c.UpdateRoadmap(ctx, f.draft.ToUpdateRequest(f.editing.ID))
	} else {
		err = c.CreateRoadmap(ctx, f.draft.ToCreateRequest(f.userID))
	}
	if err != nil {
		return err
	}
	f.Cancel()
	return nil
}

// Op names the pending operation for notifications ("create roadmap" / "update roadmap").
func (f *RoadmapForm) Op() string {
	if f.editing != nil {
		return "update roadmap"
	}
	return "create roadmap"
}
