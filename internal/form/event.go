package form

import (
	"context"
	"strconv"
	"strings"

	"roadmap-admin/internal/api"
	"roadmap-admin/internal/model"
)

type EventDraft struct {
	RoadmapID   model.ID `validate:"required"`
	Title       string   `validate:"-"`
	Description string   `validate:"-"`
	Points      int      `validate:"gte=0"`
	// ImagePath is a local file; empty means no image.
	ImagePath string `validate:"omitempty,file"`
}

func EmptyEventDraft() EventDraft { return EventDraft{} }

func (d EventDraft) ToCreateRequest() api.CreateEventRequest {
	return api.CreateEventRequest{
		RoadmapID:   d.RoadmapID,
		Title:       d.Title,
		Description: d.Description,
		Points:      d.Points,
		ImagePath:   strings.TrimSpace(d.ImagePath),
	}
}

type EventClient interface {
	CreateEvent(ctx context.Context, req api.CreateEventRequest) error
}

// EventForm only creates; events are never edited from the console.
type EventForm struct {
	draft EventDraft
}

func NewEventForm() *EventForm {
	return &EventForm{draft: EmptyEventDraft()}
}

func (f *EventForm) Draft() EventDraft { return f.draft }

func (f *EventForm) SetField(key, value string) error {
	switch key {
	case FieldRoadmapID:
		f.draft.RoadmapID = model.ID(strings.TrimSpace(value))
	case FieldTitle:
		f.draft.Title = value
	case FieldDescription:
		f.draft.Description = value
	case FieldPoints:
		f.draft.Points = parsePoints(value)
	case FieldImage:
		f.draft.ImagePath = value
	default:
		return unknownFieldError{form: "event", key: key}
	}
	return nil
}

// parsePoints keeps the leading integer of s and falls back to 0, so partially typed input
// never blocks the form.
func parsePoints(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) {
		ch := s[end]
		if ch >= '0' && ch <= '9' || (end == 0 && (ch == '-' || ch == '+')) {
			end++
			continue
		}
		break
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

func (f *EventForm) Reset() { f.draft = EmptyEventDraft() }

func (f *EventForm) Submit(ctx context.Context, c EventClient) error {
	if err := c.CreateEvent(ctx, f.draft.ToCreateRequest()); err != nil {
		return err
	}
	f.Reset()
	return nil
}
