package admin

import (
	"context"
	"sync"
)

type Level int

const (
	LevelSuccess Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "Error"
	}
	return "Success"
}

// Notice is a transient success or failure message about one operation.
type Notice struct {
	Level   Level
	Message string
}

func (n Notice) Title() string { return n.Level.String() }

type Notifier interface {
	Notify(n Notice)
}

type NotifierFunc func(n Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Confirmer asks the user a yes/no question and blocks until answered.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// AlwaysConfirm answers yes without asking.
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, string) bool { return true })

// NeverConfirm declines every prompt.
var NeverConfirm Confirmer = ConfirmFunc(func(context.Context, string) bool { return false })

// Notices collects notices in memory. Safe for concurrent use.
type Notices struct {
	mu   sync.Mutex
	list []Notice
}

func (n *Notices) Notify(no Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.list = append(n.list, no)
}

func (n *Notices) All() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notice, len(n.list))
	copy(out, n.list)
	return out
}

// Confirmation prompts.
const (
	PromptDeleteRoadmap = "Are you sure you want to delete this roadmap? This will delete all associated events and submissions."
	PromptDeleteEvent   = "Are you sure you want to delete this event? This will delete all associated submissions."
)

const (
	msgRoadmapCreated = "Roadmap created successfully"
	msgRoadmapUpdated = "Roadmap updated successfully"
	msgRoadmapDeleted = "Roadmap deleted successfully"
	msgEventCreated   = "Event created successfully"
	msgEventDeleted   = "Event deleted successfully"
)
