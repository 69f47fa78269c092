package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"roadmap-admin/internal/admin"
	"roadmap-admin/internal/export"
	"roadmap-admin/internal/model"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

const toastTTL = 4 * time.Second

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		if m.modal == modalPickImage {
			m.picker.Height = m.pickerHeight()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case snapshotMsg:
		if msg.Seq < m.snap.Seq {
			return m, nil
		}
		m.applySnapshot(admin.Snapshot(msg))
		return m, nil

	case noticeMsg:
		return m, m.showToast(admin.Notice(msg))

	case clearToastMsg:
		if msg.seq == m.toastSeq {
			m.toast = nil
		}
		return m, nil

	case confirmRequestMsg:
		if m.confirm != nil {
			// One question at a time; a second request is declined.
			msg.reply <- false
			return m, nil
		}
		req := msg
		m.confirm = &req
		m.confirmFocus = confirmFocusCancel
		m.modal = modalConfirm
		return m, nil

	case opDoneMsg:
		m.logOutcome(msg.op, msg.err)
		return m, nil

	case roadmapSubmittedMsg:
		m.submitting = false
		m.logOutcome(msg.form.Op(), msg.err)
		if msg.err != nil {
			return m, nil
		}
		m.roadmapForm = msg.form
		m.rmInputs.load(m.roadmapForm.Draft())
		m.leaveForm()
		return m, nil

	case eventSubmittedMsg:
		m.submitting = false
		m.logOutcome("create event", msg.err)
		if msg.err != nil {
			return m, nil
		}
		m.eventForm.Reset()
		m.evInputs.reset()
		m.leaveForm()
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			return m, m.showToast(admin.Notice{Level: admin.LevelError, Message: "Export failed: " + msg.err.Error()})
		}
		return m, m.showToast(admin.Notice{Level: admin.LevelSuccess, Message: "Exported to " + msg.path})

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		if m.modal != modalNone {
			return m.updateModal(msg)
		}
		if m.focus == focusForm {
			return m.updateForm(msg)
		}
		return m.updateNav(msg)
	}

	if m.modal == modalPickImage {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m appModel) logOutcome(op string, err error) {
	switch {
	case err == nil:
		m.log.Debug("done", zap.String("op", op))
	case errors.Is(err, admin.ErrNotConfirmed),
		errors.Is(err, admin.ErrPageOutOfRange),
		errors.Is(err, admin.ErrNotReviewable):
		m.log.Debug("skipped", zap.String("op", op), zap.Error(err))
	default:
		m.log.Info("failed", zap.String("op", op), zap.Error(err))
	}
}

func (m *appModel) showToast(n admin.Notice) tea.Cmd {
	m.toast = &n
	m.toastSeq++
	seq := m.toastSeq
	return tea.Tick(toastTTL, func(time.Time) tea.Msg { return clearToastMsg{seq: seq} })
}

func (m appModel) quit() (tea.Model, tea.Cmd) {
	if m.confirm != nil {
		m.confirm.reply <- false
		m.confirm = nil
	}
	return m, tea.Quit
}

func (m appModel) activeTab() admin.Tab { return m.snap.State.ActiveTab }

func (m appModel) switchTab(tab admin.Tab) tea.Cmd {
	coord := m.coord
	return m.run("switch tab", func(ctx context.Context) error { return coord.SetActiveTab(ctx, tab) })
}

func (m appModel) updateNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m.quit()
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, k.NextTab):
		return m, m.switchTab(admin.Tabs[(int(m.activeTab())+1)%len(admin.Tabs)])
	case key.Matches(msg, k.PrevTab):
		return m, m.switchTab(admin.Tabs[(int(m.activeTab())+len(admin.Tabs)-1)%len(admin.Tabs)])
	case key.Matches(msg, k.Tab1):
		return m, m.switchTab(admin.TabRoadmaps)
	case key.Matches(msg, k.Tab2):
		return m, m.switchTab(admin.TabEvents)
	case key.Matches(msg, k.Tab3):
		return m, m.switchTab(admin.TabSubmissions)
	case key.Matches(msg, k.Tab4):
		return m, m.switchTab(admin.TabReview)
	case key.Matches(msg, k.Refresh):
		return m, m.run("refresh", m.coord.Refresh)
	}

	switch m.activeTab() {
	case admin.TabRoadmaps:
		return m.updateRoadmapsNav(msg)
	case admin.TabEvents:
		if key.Matches(msg, k.New, k.Open) {
			return m, m.enterEventForm()
		}
		if key.Matches(msg, k.Delete) {
			return m, m.openInputModal(modalDeleteEvent, "Event ID", "")
		}
	case admin.TabSubmissions:
		return m.updateSubmissionsNav(msg)
	case admin.TabReview:
		if key.Matches(msg, k.Open) {
			return m, m.switchTab(admin.TabSubmissions)
		}
	}
	return m, nil
}

func (m appModel) updateRoadmapsNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.New):
		m.roadmapForm.Cancel()
		m.rmInputs.load(m.roadmapForm.Draft())
		return m, m.enterRoadmapForm()
	case key.Matches(msg, k.Edit):
		rm, ok := m.selectedRoadmap()
		if !ok {
			return m, nil
		}
		m.roadmapForm.BeginEdit(rm)
		m.rmInputs.load(m.roadmapForm.Draft())
		return m, m.enterRoadmapForm()
	case key.Matches(msg, k.Delete):
		rm, ok := m.selectedRoadmap()
		if !ok {
			return m, nil
		}
		coord, id := m.coord, rm.ID
		return m, m.run("delete roadmap", func(ctx context.Context) error { return coord.DeleteRoadmap(ctx, id) })
	case key.Matches(msg, k.Preview):
		if _, ok := m.selectedRoadmap(); ok {
			m.modal = modalPreview
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.roadmapTable, cmd = m.roadmapTable.Update(msg)
	return m, cmd
}

func (m appModel) updateSubmissionsNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	coord := m.coord
	st := m.snap.State
	switch {
	case key.Matches(msg, k.Approve, k.Reject):
		sub, ok := m.selectedSubmission()
		if !ok || !sub.Reviewable() {
			return m, nil
		}
		decision := model.SubmissionApproved
		if key.Matches(msg, k.Reject) {
			decision = model.SubmissionRejected
		}
		return m, m.run("review submission", func(ctx context.Context) error {
			return coord.ReviewSubmission(ctx, sub, decision)
		})
	case key.Matches(msg, k.Filter):
		return m, m.openInputModal(modalFilterEvent, "Event ID (empty for all events)", st.SelectedEventID.String())
	case key.Matches(msg, k.Pending):
		pending := !st.PendingOnly
		return m, m.run("pending filter", func(ctx context.Context) error { return coord.SetPendingOnly(ctx, pending) })
	case key.Matches(msg, k.PrevPage, k.NextPage):
		page := st.CurrentPage - 1
		if key.Matches(msg, k.NextPage) {
			page = st.CurrentPage + 1
		}
		return m, m.run("change page", func(ctx context.Context) error { return coord.SetCurrentPage(ctx, page) })
	case key.Matches(msg, k.GotoPage):
		return m, m.openInputModal(modalGotoPage, "Page number", "")
	case key.Matches(msg, k.Export):
		def := fmt.Sprintf("submissions-page-%d.csv", m.snap.Submissions.Pagination.CurrentPage)
		return m, m.openInputModal(modalExport, "Export to (.csv or .pdf)", def)
	case key.Matches(msg, k.Delete):
		sub, ok := m.selectedSubmission()
		if !ok {
			return m, nil
		}
		id := sub.EventID
		return m, m.run("delete event", func(ctx context.Context) error { return coord.DeleteEvent(ctx, id) })
	}
	var cmd tea.Cmd
	m.submissionTable, cmd = m.submissionTable.Update(msg)
	return m, cmd
}

func (m *appModel) openInputModal(kind modalKind, placeholder, value string) tea.Cmd {
	m.modal = kind
	m.modalInput.Placeholder = placeholder
	m.modalInput.CharLimit = 512
	m.modalInput.SetValue(value)
	m.modalInput.CursorEnd()
	return m.modalInput.Focus()
}

func (m *appModel) closeModal() {
	m.modal = modalNone
	m.modalInput.Blur()
	m.modalInput.SetValue("")
}

func (m appModel) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalConfirm:
		return m.updateConfirm(msg)
	case modalPreview:
		switch msg.String() {
		case "esc", "enter", "p", "q":
			m.modal = modalNone
		}
		return m, nil
	case modalPickImage:
		if key.Matches(msg, m.keys.Cancel) {
			m.modal = modalNone
			return m, m.evInputs.setFocus(evFieldImage)
		}
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		if ok, path := m.picker.DidSelectFile(msg); ok {
			m.evInputs.image.SetValue(path)
			m.evInputs.push(m.eventForm)
			m.modal = modalNone
			return m, m.evInputs.setFocus(evFieldImage)
		}
		return m, cmd
	}

	switch msg.String() {
	case "esc":
		m.closeModal()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.modalInput.Value())
		kind := m.modal
		m.closeModal()
		return m.submitModal(kind, value)
	}
	var cmd tea.Cmd
	m.modalInput, cmd = m.modalInput.Update(msg)
	return m, cmd
}

func (m appModel) submitModal(kind modalKind, value string) (tea.Model, tea.Cmd) {
	coord := m.coord
	switch kind {
	case modalFilterEvent:
		id := model.ID(value)
		return m, m.run("event filter", func(ctx context.Context) error { return coord.SetSelectedEventID(ctx, id) })
	case modalGotoPage:
		page, err := strconv.Atoi(value)
		if err != nil {
			return m, m.showToast(admin.Notice{Level: admin.LevelError, Message: "Not a page number: " + value})
		}
		return m, m.run("change page", func(ctx context.Context) error { return coord.SetCurrentPage(ctx, page) })
	case modalDeleteEvent:
		if value == "" {
			return m, nil
		}
		id := model.ID(value)
		return m, m.run("delete event", func(ctx context.Context) error { return coord.DeleteEvent(ctx, id) })
	case modalExport:
		if value == "" {
			return m, nil
		}
		return m, exportCmd(value, m.snap)
	}
	return m, nil
}

func exportCmd(path string, snap admin.Snapshot) tea.Cmd {
	page := export.Page{
		Items:      snap.Submissions.Items,
		Pagination: snap.Submissions.Pagination,
		Filter:     snap.Submissions.FilterLabel(),
	}
	return func() tea.Msg {
		return exportDoneMsg{path: path, err: export.WriteFile(path, page)}
	}
}

func (m appModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	answer := func(ok bool) (tea.Model, tea.Cmd) {
		if m.confirm != nil {
			m.confirm.reply <- ok
			m.confirm = nil
		}
		m.modal = modalNone
		return m, nil
	}
	switch msg.String() {
	case "y", "Y":
		return answer(true)
	case "n", "N", "esc", "q":
		return answer(false)
	case "enter":
		return answer(m.confirmFocus == confirmFocusConfirm)
	case "tab", "shift+tab", "left", "right", "h", "l":
		if m.confirmFocus == confirmFocusConfirm {
			m.confirmFocus = confirmFocusCancel
		} else {
			m.confirmFocus = confirmFocusConfirm
		}
	}
	return m, nil
}

func (m *appModel) enterRoadmapForm() tea.Cmd {
	m.focus = focusForm
	m.formErr = ""
	return m.rmInputs.setFocus(rmFieldTitle)
}

func (m *appModel) enterEventForm() tea.Cmd {
	m.focus = focusForm
	m.formErr = ""
	return m.evInputs.setFocus(evFieldRoadmap)
}

func (m *appModel) leaveForm() {
	m.focus = focusNav
	m.formErr = ""
	m.rmInputs.blurAll()
	m.evInputs.blurAll()
}

func (m appModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	onEvents := m.activeTab() == admin.TabEvents
	switch {
	case key.Matches(msg, k.Cancel):
		if !onEvents {
			m.roadmapForm.Cancel()
			m.rmInputs.load(m.roadmapForm.Draft())
		}
		m.leaveForm()
		return m, nil
	case key.Matches(msg, k.Submit):
		if onEvents {
			return m.submitEvent()
		}
		return m.submitRoadmap()
	case key.Matches(msg, k.NextField, k.PrevField):
		step := 1
		if key.Matches(msg, k.PrevField) {
			step = -1
		}
		if onEvents {
			return m, m.evInputs.setFocus(m.evInputs.focus + step)
		}
		return m, m.rmInputs.setFocus(m.rmInputs.focus + step)
	case onEvents && key.Matches(msg, k.PickFile):
		m.evInputs.blurAll()
		m.picker = newImagePicker(m.pickerHeight())
		m.modal = modalPickImage
		return m, m.picker.Init()
	}

	var cmd tea.Cmd
	if onEvents {
		cmd = m.evInputs.update(msg, m.snap.Roadmaps)
		m.evInputs.push(m.eventForm)
	} else {
		cmd = m.rmInputs.update(msg)
		m.rmInputs.push(m.roadmapForm)
	}
	return m, cmd
}

func (m appModel) pickerHeight() int {
	h := m.height - 12
	if h < 5 {
		h = 5
	}
	return h
}

func (m appModel) submitRoadmap() (tea.Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	m.rmInputs.push(m.roadmapForm)
	if err := m.roadmapForm.Draft().Validate(); err != nil {
		m.formErr = err.Error()
		return m, nil
	}
	m.formErr = ""
	m.submitting = true
	// Submit a copy; the on-screen draft is only touched by Update.
	clone := *m.roadmapForm
	coord, ctx := m.coord, m.ctx
	return m, func() tea.Msg {
		err := coord.SubmitRoadmapForm(ctx, &clone)
		return roadmapSubmittedMsg{form: &clone, err: err}
	}
}

func (m appModel) submitEvent() (tea.Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	m.evInputs.push(m.eventForm)
	if err := m.eventForm.Draft().Validate(); err != nil {
		m.formErr = err.Error()
		return m, nil
	}
	m.formErr = ""
	m.submitting = true
	clone := *m.eventForm
	coord, ctx := m.coord, m.ctx
	return m, func() tea.Msg {
		return eventSubmittedMsg{err: coord.SubmitEventForm(ctx, &clone)}
	}
}
