package tui

import (
	"fmt"
	"strconv"
	"strings"

	"roadmap-admin/internal/admin"
	"roadmap-admin/internal/model"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

func (m appModel) View() string {
	bodyW := m.width - 2
	if bodyW < 20 {
		bodyW = 20
	}

	var sections []string
	sections = append(sections, m.viewHeader(bodyW), m.viewTabs())
	sections = append(sections, m.viewBody(bodyW))
	if line := m.viewToast(bodyW); line != "" {
		sections = append(sections, line)
	}
	sections = append(sections, m.help.View(m.contextHelp()))
	base := lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(sections, "\n"))

	if overlay := m.viewModal(); overlay != "" {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, overlay,
			lipgloss.WithWhitespaceChars(" "))
	}
	return base
}

func (m appModel) viewHeader(bodyW int) string {
	title := styleTitle().Render("Roadmap Admin")
	right := styleMuted().Render(m.apiURL)
	if m.snap.Loading {
		right = m.spin.View() + " " + styleMuted().Render("Loading…") + "  " + right
	}
	gap := bodyW - lipgloss.Width(title) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + right
}

func (m appModel) viewTabs() string {
	active := lipgloss.NewStyle().
		Bold(true).
		Padding(0, 2).
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Underline(true)
	inactive := lipgloss.NewStyle().Padding(0, 2).Foreground(colorMuted)

	tabs := make([]string, 0, len(admin.Tabs))
	for i, t := range admin.Tabs {
		label := strconv.Itoa(i+1) + " " + t.Label()
		if t == m.activeTab() {
			tabs = append(tabs, active.Render(label))
		} else {
			tabs = append(tabs, inactive.Render(label))
		}
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(colorBorder).
		Render(row)
}

func (m appModel) viewBody(bodyW int) string {
	switch m.activeTab() {
	case admin.TabRoadmaps:
		if m.focus == focusForm {
			return m.viewRoadmapForm(bodyW)
		}
		if len(m.snap.Roadmaps) == 0 {
			return styleMuted().Render("No roadmaps yet. Press n to create one.")
		}
		return m.roadmapTable.View()
	case admin.TabEvents:
		return m.viewEventForm(bodyW)
	case admin.TabSubmissions:
		return m.viewSubmissions(bodyW)
	case admin.TabReview:
		return lipgloss.NewStyle().Width(bodyW).Render(
			styleTitle().Render("Review Submissions") + "\n\n" +
				"Pending submissions are reviewed from the Submissions tab. " +
				"Filter by event, turn on pending only, then approve (a) or reject (x).\n\n" +
				styleMuted().Render("Press enter to open the Submissions tab."))
	}
	return ""
}

func (m appModel) viewSubmissions(bodyW int) string {
	view := m.snap.Submissions
	filters := submissionsHeader(m.snap.State, view, m.coord.PageSize(), m.snap.Loading)

	var body string
	if len(view.Items) == 0 {
		body = styleMuted().Render("No submissions.")
	} else {
		body = m.submissionTable.View()
		if sub, ok := m.selectedSubmission(); ok {
			body += "\n" + styleStatus(string(sub.Status)).Render(string(sub.Status)) + " " +
				styleMuted().Render(truncateCell(sub.EventTitle+" · "+sub.RoadmapTitle, bodyW-12))
		}
	}

	parts := []string{filters, body}
	if pager := renderPager(view.Pagination); pager != "" {
		parts = append(parts, pager)
	}
	return strings.Join(parts, "\n")
}

// submissionsHeader names the filter the listed rows were fetched with. When the selected
// filter or page has not been loaded yet it is shown next to it, marked as loading or
// not loaded.
func submissionsHeader(st admin.State, view admin.SubmissionsView, limit int, loading bool) string {
	shown := view.FilterLabel()
	if shown == "" {
		shown = "all events"
	}
	line := styleMuted().Render(fmt.Sprintf("Showing: %s   Total: %d", shown, view.Pagination.TotalCount))
	if view.Loaded && st.Query(limit) == view.Query {
		return line
	}

	want := st.FilterLabel()
	if want == "" {
		want = "all events"
	}
	mark := "not loaded, r to retry"
	if loading {
		mark = "loading…"
	}
	return line + "   " + styleStatus("pending").Render(
		fmt.Sprintf("Selected: %s, page %d (%s)", want, st.CurrentPage, mark))
}

// renderPager draws previous, the first five pages and next. It is empty for a single page.
func renderPager(p model.Pagination) string {
	if p.TotalPages <= 1 {
		return ""
	}
	current := lipgloss.NewStyle().Bold(true).Foreground(colorSelectedFg).Background(colorSelectedBg).Padding(0, 1)
	plain := lipgloss.NewStyle().Padding(0, 1)
	disabled := styleMuted().Padding(0, 1)

	prev := plain.Render("‹ Prev")
	if p.CurrentPage <= 1 {
		prev = disabled.Render("‹ Prev")
	}
	next := plain.Render("Next ›")
	if p.CurrentPage >= p.TotalPages {
		next = disabled.Render("Next ›")
	}

	parts := []string{prev}
	for i := 1; i <= p.TotalPages && i <= 5; i++ {
		if i == p.CurrentPage {
			parts = append(parts, current.Render(strconv.Itoa(i)))
		} else {
			parts = append(parts, plain.Render(strconv.Itoa(i)))
		}
	}
	parts = append(parts, next)
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...) +
		styleMuted().Render(fmt.Sprintf("  page %d of %d", p.CurrentPage, p.TotalPages))
}

func fieldLabel(label string, focused bool) string {
	st := lipgloss.NewStyle().Bold(true)
	if focused {
		st = st.Foreground(colorAccent)
	} else {
		st = st.Foreground(colorMuted)
	}
	return st.Render(label)
}

func (m appModel) viewRoadmapForm(bodyW int) string {
	in := m.rmInputs
	status := styleStatus(string(in.status)).Render("‹ " + string(in.status) + " ›")

	lines := []string{
		styleTitle().Render(m.roadmapForm.Title()),
		"",
		fieldLabel("Title", in.focus == rmFieldTitle),
		renderInputLine(bodyW, in.title.View()),
		fieldLabel("Status", in.focus == rmFieldStatus),
		" " + status,
		fieldLabel("Description", in.focus == rmFieldDescription),
		in.description.View(),
		fieldLabel("Start date", in.focus == rmFieldStart),
		renderInputLine(bodyW/2, in.start.View()),
		fieldLabel("End date", in.focus == rmFieldEnd),
		renderInputLine(bodyW/2, in.end.View()),
	}
	return strings.Join(append(lines, m.formFooter()...), "\n")
}

func (m appModel) viewEventForm(bodyW int) string {
	in := m.evInputs
	picked := "Select Roadmap"
	if in.roadmap >= 0 && in.roadmap < len(m.snap.Roadmaps) {
		picked = m.snap.Roadmaps[in.roadmap].Title
	}
	if len(m.snap.Roadmaps) == 0 {
		picked = "No roadmaps loaded"
	}
	editing := m.focus == focusForm

	lines := []string{
		styleTitle().Render("Create New Event"),
		"",
		fieldLabel("Roadmap", editing && in.focus == evFieldRoadmap),
		" ‹ " + truncateCell(picked, bodyW-6) + " ›",
		fieldLabel("Title", editing && in.focus == evFieldTitle),
		renderInputLine(bodyW, in.title.View()),
		fieldLabel("Points", editing && in.focus == evFieldPoints),
		renderInputLine(bodyW/3, in.points.View()),
		fieldLabel("Description", editing && in.focus == evFieldDescription),
		in.description.View(),
		fieldLabel("Event image", editing && in.focus == evFieldImage),
		renderInputLine(bodyW, in.image.View()),
	}
	if !editing {
		lines = append(lines, "", styleMuted().Render("Press n to fill in the form, d to delete an event by id."))
		return strings.Join(lines, "\n")
	}
	return strings.Join(append(lines, m.formFooter()...), "\n")
}

func (m appModel) formFooter() []string {
	out := []string{""}
	if m.formErr != "" {
		out = append(out, lipgloss.NewStyle().Foreground(colorDanger).Render(m.formErr))
	}
	if m.submitting {
		out = append(out, m.spin.View()+" "+styleMuted().Render("Saving…"))
	}
	return out
}

func (m appModel) viewToast(bodyW int) string {
	if m.toast == nil {
		return ""
	}
	color := colorSuccess
	if m.toast.Level == admin.LevelError {
		color = colorDanger
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(color).Render(m.toast.Title())
	return title + " " + truncateCell(m.toast.Message, bodyW-lipgloss.Width(title)-1)
}

func (m appModel) viewModal() string {
	switch m.modal {
	case modalConfirm:
		if m.confirm == nil {
			return ""
		}
		return renderConfirmModal(m.width, "Confirm", m.confirm.prompt, "Delete", "Cancel", m.confirmFocus)
	case modalFilterEvent:
		return m.inputModal("Filter by event")
	case modalGotoPage:
		return m.inputModal("Go to page")
	case modalExport:
		return m.inputModal("Export submissions page")
	case modalDeleteEvent:
		return m.inputModal("Delete event")
	case modalPickImage:
		help := styleMuted().Render("enter: select   esc: cancel")
		return renderModalBox(m.width, "Event image", m.picker.View()+"\n\n"+help)
	case modalPreview:
		rm, ok := m.selectedRoadmap()
		if !ok {
			return ""
		}
		bodyW := modalBodyWidth(m.width)
		desc := renderMarkdown(rm.Description, bodyW-2)
		if desc == "" {
			desc = styleMuted().Render("No description.")
		}
		meta := styleStatus(string(rm.Status)).Render(string(rm.Status)) + "  " +
			styleMuted().Render(rm.DateRange()+"  "+strconv.Itoa(rm.EventCount)+" events")
		return renderModalBox(m.width, rm.Title, meta+"\n\n"+desc+"\n\n"+styleMuted().Render("esc: close"))
	}
	return ""
}

func (m appModel) inputModal(title string) string {
	bodyW := modalBodyWidth(m.width)
	content := strings.Join([]string{
		styleMuted().Render(m.modalInput.Placeholder),
		renderInputLine(bodyW-2, m.modalInput.View()),
		"",
		styleMuted().Render("enter: apply   esc: cancel"),
	}, "\n")
	return renderModalBox(m.width, title, content)
}

func (m appModel) contextHelp() contextHelp {
	k := m.keys
	global := []key.Binding{k.NextTab, k.Tab1, k.Refresh, k.Help, k.Quit}
	if m.focus == focusForm {
		short := []key.Binding{k.NextField, k.PrevField, k.Submit, k.Cancel}
		if m.activeTab() == admin.TabEvents {
			short = append(short, k.PickFile)
		} else {
			short = append(short, k.Toggle)
		}
		return contextHelp{short: short, full: [][]key.Binding{short}}
	}
	var local []key.Binding
	switch m.activeTab() {
	case admin.TabRoadmaps:
		local = []key.Binding{k.Up, k.Down, k.New, k.Edit, k.Delete, k.Preview}
	case admin.TabEvents:
		local = []key.Binding{k.New, k.Delete}
	case admin.TabSubmissions:
		local = []key.Binding{k.Up, k.Down, k.Approve, k.Reject, k.Filter, k.Pending, k.PrevPage, k.NextPage, k.GotoPage, k.Export, k.Delete}
	case admin.TabReview:
		local = []key.Binding{k.Open}
	}
	short := append(append([]key.Binding{}, local...), k.Help, k.Quit)
	if len(short) > 7 {
		short = append(append([]key.Binding{}, local[:5]...), k.Help, k.Quit)
	}
	return contextHelp{short: short, full: [][]key.Binding{local, global}}
}
