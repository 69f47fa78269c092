package tui

import (
	"strconv"
	"strings"

	"roadmap-admin/internal/form"
	"roadmap-admin/internal/model"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = limit // 0 is unlimited
	in.Cursor.Style = lipgloss.NewStyle().Foreground(colorAccent)
	return in
}

func newArea(placeholder string) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.CharLimit = 0
	ta.MaxHeight = 0
	return ta
}

const (
	rmFieldTitle = iota
	rmFieldStatus
	rmFieldDescription
	rmFieldStart
	rmFieldEnd
	rmFieldCount
)

// roadmapInputs are the widgets behind the roadmap form. Every edit is pushed into the
// form's draft right away; fields the user has not touched are left as the draft holds them.
type roadmapInputs struct {
	title       textinput.Model
	status      model.RoadmapStatus
	description textarea.Model
	start       textinput.Model
	end         textinput.Model
	focus       int

	// synced is what the widgets held when they last matched the draft.
	synced form.RoadmapDraft
}

func newRoadmapInputs() roadmapInputs {
	return roadmapInputs{
		title:       newInput("Roadmap title", 0),
		status:      model.RoadmapActive,
		description: newArea("Markdown description"),
		start:       newInput("YYYY-MM-DD", 10),
		end:         newInput("YYYY-MM-DD", 10),
	}
}

// load copies a draft into the widgets.
func (r *roadmapInputs) load(d form.RoadmapDraft) {
	r.title.SetValue(d.Title)
	r.status = d.Status
	r.description.SetValue(d.Description)
	r.start.SetValue(d.StartDate)
	r.end.SetValue(d.EndDate)
	r.synced = r.values()
}

func (r *roadmapInputs) values() form.RoadmapDraft {
	return form.RoadmapDraft{
		Title:       r.title.Value(),
		Status:      r.status,
		Description: r.description.Value(),
		StartDate:   r.start.Value(),
		EndDate:     r.end.Value(),
	}
}

// push copies the fields changed since the last load or push into the draft.
func (r *roadmapInputs) push(f *form.RoadmapForm) {
	now := r.values()
	for _, fv := range []struct{ key, now, was string }{
		{form.FieldTitle, now.Title, r.synced.Title},
		{form.FieldStatus, string(now.Status), string(r.synced.Status)},
		{form.FieldDescription, now.Description, r.synced.Description},
		{form.FieldStartDate, now.StartDate, r.synced.StartDate},
		{form.FieldEndDate, now.EndDate, r.synced.EndDate},
	} {
		if fv.now != fv.was {
			_ = f.SetField(fv.key, fv.now)
		}
	}
	r.synced = now
}

func (r *roadmapInputs) blurAll() {
	r.title.Blur()
	r.description.Blur()
	r.start.Blur()
	r.end.Blur()
}

func (r *roadmapInputs) setFocus(i int) tea.Cmd {
	r.focus = (i + rmFieldCount) % rmFieldCount
	r.blurAll()
	switch r.focus {
	case rmFieldTitle:
		return r.title.Focus()
	case rmFieldDescription:
		return r.description.Focus()
	case rmFieldStart:
		return r.start.Focus()
	case rmFieldEnd:
		return r.end.Focus()
	}
	return nil
}

func (r *roadmapInputs) toggleStatus() {
	if r.status == model.RoadmapActive {
		r.status = model.RoadmapInactive
	} else {
		r.status = model.RoadmapActive
	}
}

func (r *roadmapInputs) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch r.focus {
	case rmFieldTitle:
		r.title, cmd = r.title.Update(msg)
	case rmFieldDescription:
		r.description, cmd = r.description.Update(msg)
	case rmFieldStart:
		r.start, cmd = r.start.Update(msg)
	case rmFieldEnd:
		r.end, cmd = r.end.Update(msg)
	case rmFieldStatus:
		if k, ok := msg.(tea.KeyMsg); ok {
			switch k.String() {
			case "left", "right", " ", "h", "l":
				r.toggleStatus()
			}
		}
	}
	return cmd
}

const (
	evFieldRoadmap = iota
	evFieldTitle
	evFieldPoints
	evFieldDescription
	evFieldImage
	evFieldCount
)

type eventInputs struct {
	// roadmap indexes the roadmap list of the last snapshot; -1 is "Select Roadmap".
	roadmap     int
	roadmapID   model.ID
	title       textinput.Model
	points      textinput.Model
	description textarea.Model
	image       textinput.Model
	focus       int
}

func newEventInputs() eventInputs {
	in := eventInputs{
		roadmap:     -1,
		title:       newInput("Event title", 0),
		points:      newInput("0", 9),
		description: newArea("What should students do?"),
		image:       newInput("optional image path (ctrl+o to browse)", 1024),
	}
	in.points.Validate = func(s string) error {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		_, err := strconv.Atoi(strings.TrimSpace(s))
		return err
	}
	return in
}

func (e *eventInputs) reset() {
	e.roadmap = -1
	e.roadmapID = ""
	e.title.SetValue("")
	e.points.SetValue("")
	e.description.SetValue("")
	e.image.SetValue("")
}

func (e *eventInputs) push(f *form.EventForm) {
	_ = f.SetField(form.FieldRoadmapID, e.roadmapID.String())
	_ = f.SetField(form.FieldTitle, e.title.Value())
	_ = f.SetField(form.FieldPoints, e.points.Value())
	_ = f.SetField(form.FieldDescription, e.description.Value())
	_ = f.SetField(form.FieldImage, e.image.Value())
}

func (e *eventInputs) blurAll() {
	e.title.Blur()
	e.points.Blur()
	e.description.Blur()
	e.image.Blur()
}

func (e *eventInputs) setFocus(i int) tea.Cmd {
	e.focus = (i + evFieldCount) % evFieldCount
	e.blurAll()
	switch e.focus {
	case evFieldTitle:
		return e.title.Focus()
	case evFieldPoints:
		return e.points.Focus()
	case evFieldDescription:
		return e.description.Focus()
	case evFieldImage:
		return e.image.Focus()
	}
	return nil
}

// cycleRoadmap moves the roadmap selection by delta over roadmaps, wrapping through the
// empty choice.
func (e *eventInputs) cycleRoadmap(roadmaps []model.Roadmap, delta int) {
	n := len(roadmaps) + 1
	pos := (e.roadmap + 1 + delta + n) % n
	e.roadmap = pos - 1
	if e.roadmap < 0 {
		e.roadmapID = ""
		return
	}
	e.roadmapID = roadmaps[e.roadmap].ID
}

// reconcile re-points the selection at roadmapID after the roadmap list changed.
func (e *eventInputs) reconcile(roadmaps []model.Roadmap) {
	e.roadmap = -1
	for i, rm := range roadmaps {
		if rm.ID == e.roadmapID {
			e.roadmap = i
			return
		}
	}
	e.roadmapID = ""
}

func (e *eventInputs) update(msg tea.Msg, roadmaps []model.Roadmap) tea.Cmd {
	var cmd tea.Cmd
	switch e.focus {
	case evFieldRoadmap:
		if k, ok := msg.(tea.KeyMsg); ok {
			switch k.String() {
			case "left", "h":
				e.cycleRoadmap(roadmaps, -1)
			case "right", "l", " ":
				e.cycleRoadmap(roadmaps, 1)
			}
		}
	case evFieldTitle:
		e.title, cmd = e.title.Update(msg)
	case evFieldPoints:
		e.points, cmd = e.points.Update(msg)
	case evFieldDescription:
		e.description, cmd = e.description.Update(msg)
	case evFieldImage:
		e.image, cmd = e.image.Update(msg)
	}
	return cmd
}
