package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"roadmap-admin/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePage() Page {
	earned := 10
	return Page{
		Items: []model.Submission{
			{StudentID: "s1", StudentName: "Ada", RoadmapTitle: "Go", EventTitle: "Kickoff", Status: model.SubmissionApproved, PointsEarned: &earned, Points: 10},
			{StudentID: "s2", RoadmapTitle: "Go", EventTitle: "Kickoff, again", Status: model.SubmissionPending, Points: 10},
		},
		Pagination: model.Pagination{CurrentPage: 1, TotalPages: 1, TotalCount: 2},
		Filter:     "all events",
	}
}

func TestCSVExporter_Render(t *testing.T) {
	b, err := NewCSVExporter().Render(SubmissionsDataset(samplePage().Items))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Student,Roadmap,Event,Status,Submitted,Points", lines[0])
	assert.Equal(t, "Ada,Go,Kickoff,approved,-,10/10", lines[1])
	assert.Equal(t, `s2,Go,"Kickoff, again",pending,-,0/10`, lines[2])
}

func TestCSVExporter_RequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "out", "subs.csv")
	require.NoError(t, WriteFile(csvPath, samplePage()))
	b, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("Student,")))

	pdfPath := filepath.Join(dir, "subs.pdf")
	require.NoError(t, WriteFile(pdfPath, samplePage()))
	b, err = os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF-")))

	require.Error(t, WriteFile(filepath.Join(dir, "subs.xlsx"), samplePage()))
}
