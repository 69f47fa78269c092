package devapi

import (
	"context"
	"fmt"
	"time"

	"roadmap-admin/internal/model"
)

// SeedResult lists the ids created by Seed.
type SeedResult struct {
	RoadmapID model.ID
	EventIDs  []model.ID
}

// Seed creates one roadmap with events and pending submissions from `students` students
// per event. It is meant for empty databases.
func Seed(ctx context.Context, r *Repo, adminID string, events, students int) (SeedResult, error) {
	var out SeedResult
	start := "2025-01-06"
	rmID, err := r.CreateRoadmap(ctx, RoadmapInput{
		Title:       "Backend Foundations",
		Description: "Ship a small **Go** service end to end.",
		StartDate:   &start,
		Status:      model.RoadmapActive,
	}, adminID)
	if err != nil {
		return out, fmt.Errorf("seed roadmap: %w", err)
	}
	out.RoadmapID = rmID

	base := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	for i := 1; i <= events; i++ {
		evID, err := r.CreateEvent(ctx, EventInput{
			RoadmapID:   rmID,
			Title:       fmt.Sprintf("Milestone %d", i),
			Description: fmt.Sprintf("Deliverable for milestone %d", i),
			Points:      10 * i,
		})
		if err != nil {
			return out, fmt.Errorf("seed event: %w", err)
		}
		out.EventIDs = append(out.EventIDs, evID)
		for s := 1; s <= students; s++ {
			at := base.Add(time.Duration(i*students+s) * time.Hour)
			if err := r.AddSubmission(ctx, fmt.Sprintf("stu-%d", s), fmt.Sprintf("Student %d", s), evID, at); err != nil {
				return out, fmt.Errorf("seed submission: %w", err)
			}
		}
	}
	return out, nil
}
