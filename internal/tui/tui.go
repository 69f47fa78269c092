// Package tui is the interactive dashboard: four tabs over the admin coordinator.
package tui

import (
	"context"
	"sync"

	"roadmap-admin/internal/admin"
	"roadmap-admin/internal/api"
	"roadmap-admin/internal/model"
	"roadmap-admin/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type Options struct {
	Client  admin.API
	Config  *store.Config
	StateDB *store.StateDB
	Logger  *zap.Logger
}

// bridge forwards coordinator callbacks into the running program. Before the program is
// attached (and after it exits) notices are dropped and confirmations are declined.
type bridge struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func (b *bridge) attach(send func(tea.Msg)) {
	b.mu.Lock()
	b.send = send
	b.mu.Unlock()
}

func (b *bridge) deliver(msg tea.Msg) bool {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()
	if send == nil {
		return false
	}
	send(msg)
	return true
}

func (b *bridge) Notify(n admin.Notice) { b.deliver(noticeMsg(n)) }

func (b *bridge) Confirm(ctx context.Context, prompt string) bool {
	reply := make(chan bool, 1)
	if !b.deliver(confirmRequestMsg{prompt: prompt, reply: reply}) {
		return false
	}
	select {
	case ok := <-reply:
		return ok
	case <-ctx.Done():
		return false
	}
}

func Run(ctx context.Context, opts Options) error {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = &store.Config{APIURL: store.DefaultAPIURL, User: "admin", PageSize: admin.DefaultPageSize}
	}

	applyThemePreference()
	applyColorProfilePreference()
	applyProfile(cfg.TUI.Profile)

	ui, err := opts.StateDB.LoadUIState(ctx)
	if err != nil {
		log.Warn("ui state unreadable, starting fresh", zap.Error(err))
	}
	initial := stateFromUI(ui)

	br := &bridge{}
	coord := admin.NewCoordinator(opts.Client, admin.Options{
		PageSize:  cfg.PageSize,
		UserID:    cfg.User,
		Notifier:  br,
		Confirmer: br,
		Logger:    log.Named("coordinator"),
		Initial:   &initial,
	})

	m := newAppModel(ctx, coord, log)
	if c, ok := opts.Client.(*api.Client); ok {
		m.apiURL = c.BaseURL()
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	br.attach(p.Send)
	unsubscribe := coord.Subscribe(func(s admin.Snapshot) { br.deliver(snapshotMsg(s)) })

	_, runErr := p.Run()
	unsubscribe()
	br.attach(nil)

	if err := opts.StateDB.SaveUIState(context.Background(), uiFromState(coord.State())); err != nil {
		log.Warn("save ui state", zap.Error(err))
	}
	return runErr
}

func stateFromUI(ui store.UIState) admin.State {
	st := admin.InitialState()
	if tab, err := admin.ParseTab(ui.ActiveTab); err == nil {
		st.ActiveTab = tab
	}
	st.SelectedEventID = model.ID(ui.EventID)
	st.PendingOnly = ui.PendingOnly
	if ui.Page > 0 {
		st.CurrentPage = ui.Page
	}
	return st
}

func uiFromState(st admin.State) store.UIState {
	return store.UIState{
		Version:     1,
		ActiveTab:   st.ActiveTab.String(),
		EventID:     st.SelectedEventID.String(),
		PendingOnly: st.PendingOnly,
		Page:        st.CurrentPage,
	}
}
