package model

import "strconv"

// PointsLabel renders "earned/points"; unreviewed submissions count as 0 earned.
func (s Submission) PointsLabel() string {
	earned := 0
	if s.PointsEarned != nil {
		earned = *s.PointsEarned
	}
	return strconv.Itoa(earned) + "/" + strconv.Itoa(s.Points)
}

// SubmittedLabel is the submission date, or "-" when unknown.
func (s Submission) SubmittedLabel() string { return s.SubmittedAt.DateOnly() }

func (s Submission) Reviewable() bool { return s.Status == SubmissionPending }

func (r Roadmap) DateRange() string {
	start, end := "", ""
	if r.StartDate != nil {
		start = *r.StartDate
	}
	if r.EndDate != nil {
		end = *r.EndDate
	}
	switch {
	case start == "" && end == "":
		return "-"
	case end == "":
		return start + " →"
	case start == "":
		return "→ " + end
	default:
		return start + " → " + end
	}
}
