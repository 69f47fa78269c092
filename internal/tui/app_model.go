package tui

import (
	"context"
	"os"
	"strconv"

	"roadmap-admin/internal/admin"
	"roadmap-admin/internal/export"
	"roadmap-admin/internal/form"
	"roadmap-admin/internal/model"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// Messages delivered into the program.
type (
	snapshotMsg admin.Snapshot
	noticeMsg   admin.Notice

	// confirmRequestMsg carries a coordinator confirmation. The coordinator goroutine blocks
	// on reply until the modal is answered.
	confirmRequestMsg struct {
		prompt string
		reply  chan bool
	}

	opDoneMsg struct {
		op  string
		err error
	}

	roadmapSubmittedMsg struct {
		form *form.RoadmapForm
		err  error
	}

	eventSubmittedMsg struct {
		err error
	}

	exportDoneMsg struct {
		path string
		err  error
	}

	clearToastMsg struct{ seq int }
)

type focusArea int

const (
	focusNav focusArea = iota
	focusForm
)

type modalKind int

const (
	modalNone modalKind = iota
	modalConfirm
	modalFilterEvent
	modalGotoPage
	modalExport
	modalDeleteEvent
	modalPickImage
	modalPreview
)

type appModel struct {
	ctx    context.Context
	coord  *admin.Coordinator
	log    *zap.Logger
	apiURL string

	keys keyMap
	help help.Model
	spin spinner.Model

	width  int
	height int

	snap  admin.Snapshot
	focus focusArea

	roadmapTable    table.Model
	submissionTable table.Model

	roadmapForm *form.RoadmapForm
	rmInputs    roadmapInputs
	eventForm   *form.EventForm
	evInputs    eventInputs
	// submitting blocks a second submit while the first is in flight.
	submitting bool
	formErr    string

	modal        modalKind
	modalInput   textinput.Model
	confirm      *confirmRequestMsg
	confirmFocus confirmModalFocus
	picker       filepicker.Model

	toast    *admin.Notice
	toastSeq int
}

func newAppModel(ctx context.Context, coord *admin.Coordinator, log *zap.Logger) appModel {
	if log == nil {
		log = zap.NewNop()
	}
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(colorAccent)

	m := appModel{
		ctx:             ctx,
		coord:           coord,
		log:             log,
		keys:            defaultKeyMap(),
		help:            help.New(),
		spin:            sp,
		width:           100,
		height:          30,
		snap:            coord.Snapshot(),
		roadmapTable:    newTable(roadmapColumns(100)),
		submissionTable: newTable(submissionColumns(100)),
		roadmapForm:     form.NewRoadmapForm(coord.UserID()),
		rmInputs:        newRoadmapInputs(),
		eventForm:       form.NewEventForm(),
		evInputs:        newEventInputs(),
		modalInput:      newInput("", 64),
	}
	m.applySnapshot(m.snap)
	return m
}

func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick, m.run("refresh", m.coord.Refresh)}
	if m.snap.State.ActiveTab != admin.TabRoadmaps {
		cmds = append(cmds, m.run("load roadmaps", m.coord.LoadRoadmaps))
	}
	return tea.Batch(cmds...)
}

// run wraps a blocking coordinator call as a command.
func (m appModel) run(op string, call func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: call(ctx)}
	}
}

func newTable(cols []table.Column) table.Model {
	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	st := table.DefaultStyles()
	st.Header = st.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorBorder).
		BorderBottom(true).
		Bold(true)
	st.Selected = st.Selected.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)
	t.SetStyles(st)
	return t
}

// columnWidths splits width across weights, with every column at least 4 cells.
func columnWidths(width int, weights ...int) []int {
	total := 0
	for _, w := range weights {
		total += w
	}
	avail := width - 2*len(weights)
	if avail < 4*len(weights) {
		avail = 4 * len(weights)
	}
	out := make([]int, len(weights))
	for i, w := range weights {
		out[i] = avail * w / total
		if out[i] < 4 {
			out[i] = 4
		}
	}
	return out
}

func roadmapColumns(width int) []table.Column {
	w := columnWidths(width, 6, 2, 5, 2, 3)
	return []table.Column{
		{Title: "Title", Width: w[0]},
		{Title: "Status", Width: w[1]},
		{Title: "Dates", Width: w[2]},
		{Title: "Events", Width: w[3]},
		{Title: "Created By", Width: w[4]},
	}
}

func submissionColumns(width int) []table.Column {
	w := columnWidths(width, 4, 4, 4, 2, 3, 2)
	return []table.Column{
		{Title: "Student", Width: w[0]},
		{Title: "Roadmap", Width: w[1]},
		{Title: "Event", Width: w[2]},
		{Title: "Status", Width: w[3]},
		{Title: "Submitted", Width: w[4]},
		{Title: "Points", Width: w[5]},
	}
}

func roadmapRows(items []model.Roadmap, cols []table.Column) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, rm := range items {
		createdBy := rm.CreatedByName
		if createdBy == "" {
			createdBy = rm.CreatedBy.String()
		}
		cells := []string{rm.Title, string(rm.Status), rm.DateRange(), strconv.Itoa(rm.EventCount), createdBy}
		rows = append(rows, fitRow(cells, cols))
	}
	return rows
}

func submissionRows(items []model.Submission, cols []table.Column) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, s := range items {
		rows = append(rows, fitRow(export.SubmissionRow(s), cols))
	}
	return rows
}

func fitRow(cells []string, cols []table.Column) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = truncateCell(c, cols[i].Width)
	}
	return row
}

// applySnapshot adopts s and rebuilds the tables, keeping the cursor in range.
func (m *appModel) applySnapshot(s admin.Snapshot) {
	m.snap = s

	rcols := roadmapColumns(m.width)
	m.roadmapTable.SetColumns(rcols)
	m.roadmapTable.SetRows(roadmapRows(s.Roadmaps, rcols))
	clampCursor(&m.roadmapTable, len(s.Roadmaps))

	scols := submissionColumns(m.width)
	m.submissionTable.SetColumns(scols)
	m.submissionTable.SetRows(submissionRows(s.Submissions.Items, scols))
	clampCursor(&m.submissionTable, len(s.Submissions.Items))

	m.evInputs.reconcile(s.Roadmaps)
}

func clampCursor(t *table.Model, n int) {
	switch {
	case n == 0:
		t.SetCursor(0)
	case t.Cursor() >= n:
		t.SetCursor(n - 1)
	case t.Cursor() < 0:
		t.SetCursor(0)
	}
}

func (m *appModel) resize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width
	h := height - 10
	if h < 3 {
		h = 3
	}
	m.roadmapTable.SetHeight(h)
	m.submissionTable.SetHeight(h)
	bodyW := width - 4
	if bodyW < 20 {
		bodyW = 20
	}
	m.rmInputs.description.SetWidth(bodyW - 2)
	m.evInputs.description.SetWidth(bodyW - 2)
	m.applySnapshot(m.snap)
}

func (m appModel) selectedRoadmap() (model.Roadmap, bool) {
	i := m.roadmapTable.Cursor()
	if i < 0 || i >= len(m.snap.Roadmaps) {
		return model.Roadmap{}, false
	}
	return m.snap.Roadmaps[i], true
}

func (m appModel) selectedSubmission() (model.Submission, bool) {
	i := m.submissionTable.Cursor()
	items := m.snap.Submissions.Items
	if i < 0 || i >= len(items) {
		return model.Submission{}, false
	}
	return items[i], true
}

func newImagePicker(height int) filepicker.Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}
	fp.FileAllowed = true
	fp.DirAllowed = false
	fp.ShowHidden = false
	fp.AutoHeight = false
	fp.Height = height
	if wd, err := os.Getwd(); err == nil {
		fp.CurrentDirectory = wd
	}
	return fp
}
