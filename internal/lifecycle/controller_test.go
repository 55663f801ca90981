package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"anan-sketchbook/config"
	"anan-sketchbook/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeWindow struct {
	mu      sync.Mutex
	visible bool
	calls   []string
}

func (w *fakeWindow) record(call string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, call)
	switch call {
	case "hide", "iconify", "destroy":
		w.visible = false
	case "show":
		w.visible = true
	}
}

func (w *fakeWindow) Hide()    { w.record("hide") }
func (w *fakeWindow) Show()    { w.record("show") }
func (w *fakeWindow) Raise()   { w.record("raise") }
func (w *fakeWindow) Iconify() { w.record("iconify") }
func (w *fakeWindow) Destroy() { w.record("destroy") }

func (w *fakeWindow) Visible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

func (w *fakeWindow) Calls() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.calls...)
}

type fakePrompter struct {
	mu      sync.Mutex
	choice  Command
	asked   int
	block   chan struct{}
	infos   []string
	errors  []string
	entered chan struct{}
}

func (p *fakePrompter) AskClose() Command {
	p.mu.Lock()
	p.asked++
	block, entered := p.block, p.entered
	choice := p.choice
	p.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}
	return choice
}

func (p *fakePrompter) Info(_, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.infos = append(p.infos, message)
}

func (p *fakePrompter) Error(_, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errors = append(p.errors, message)
}

type fakeEngine struct {
	mu    sync.Mutex
	stops int
}

func (e *fakeEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stops++
}

func (e *fakeEngine) Stops() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stops
}

type fakeHandle struct {
	id      string
	mu      sync.Mutex
	stopped int
}

func (h *fakeHandle) ID() string { return h.id }

func (h *fakeHandle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped++
}

func (h *fakeHandle) Stopped() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopped
}

type fakeTray struct {
	mu        sync.Mutex
	available bool
	startErr  error
	handles   []*fakeHandle
	menu      TrayMenu
}

func (t *fakeTray) Available() bool { return t.available }

func (t *fakeTray) Start(_ context.Context, menu TrayMenu) (TrayHandle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.startErr != nil {
		return nil, t.startErr
	}
	h := &fakeHandle{id: fmt.Sprintf("tray-%d", len(t.handles)+1)}
	t.handles = append(t.handles, h)
	t.menu = menu
	return h, nil
}

// live 当前未停止的托盘数量
func (t *fakeTray) live() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, h := range t.handles {
		if h.Stopped() == 0 {
			n++
		}
	}
	return n
}

type fixture struct {
	ctrl     *Controller
	window   *fakeWindow
	prompter *fakePrompter
	engine   *fakeEngine
	tray     *fakeTray
	holder   *config.Holder
	rebinder *countingRebinder
	metrics  *metrics.Metrics

	mu          sync.Mutex
	transitions []string
}

func (f *fixture) Transitions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.transitions...)
}

type countingRebinder struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (r *countingRebinder) RebindHotkey() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.err
}

func newFixture(t *testing.T, trayAvailable bool) *fixture {
	t.Helper()

	holder := config.NewHolder(config.Default())
	rebinder := &countingRebinder{}
	holder.SetRebinder(rebinder)

	f := &fixture{
		window:   &fakeWindow{visible: true},
		prompter: &fakePrompter{choice: CommandCancel},
		engine:   &fakeEngine{},
		tray:     &fakeTray{available: trayAvailable},
		holder:   holder,
		rebinder: rebinder,
		metrics:  metrics.New(),
	}
	f.build(f.tray)
	return f
}

// build 用给定的托盘后端重新创建控制器
func (f *fixture) build(tray TrayBackend) {
	record := func(from, to State) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.transitions = append(f.transitions, from.String()+"->"+to.String())
	}
	f.ctrl = New(context.Background(), Options{
		Window:       f.window,
		Prompter:     f.prompter,
		Engine:       f.engine,
		Config:       f.holder,
		Tray:         tray,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:      f.metrics,
		OnTransition: record,
	})
}

// gateOnConfig 按配置 tray.disabled 控制托盘
func (f *fixture) gateOnConfig() {
	f.build(GateTray(f.tray, func() bool {
		return f.holder.Snapshot().Tray.Disabled
	}))
}

func (f *fixture) setTrayDisabled(t *testing.T, disabled bool) {
	t.Helper()
	cfg := f.holder.Snapshot()
	cfg.Tray.Disabled = disabled
	_, err := f.holder.Replace(cfg)
	require.NoError(t, err)
}

// ---- tests ----

func TestMinimizeRestoreWithTray(t *testing.T) {
	f := newFixture(t, true)
	require.Equal(t, StateVisible, f.ctrl.State())

	require.NoError(t, f.ctrl.Minimize())
	assert.Equal(t, StateMinimized, f.ctrl.State())
	assert.True(t, f.ctrl.TrayActive())
	assert.False(t, f.window.Visible())
	assert.Equal(t, 1, f.tray.live())
	assert.NotContains(t, f.window.Calls(), "iconify")

	require.NoError(t, f.ctrl.Restore())
	assert.Equal(t, StateVisible, f.ctrl.State())
	assert.False(t, f.ctrl.TrayActive())
	assert.True(t, f.window.Visible())
	assert.Equal(t, 0, f.tray.live())
	assert.Equal(t, []string{"hide", "show", "raise"}, f.window.Calls())
	assert.Equal(t, []string{"visible->minimized", "minimized->visible"}, f.Transitions())
}

func TestMinimizeWithoutTrayFallsBackToIconify(t *testing.T) {
	f := newFixture(t, false)

	require.NoError(t, f.ctrl.Minimize())
	assert.Equal(t, StateMinimized, f.ctrl.State())
	assert.False(t, f.ctrl.TrayActive())
	assert.Equal(t, []string{"hide", "iconify"}, f.window.Calls())

	require.NoError(t, f.ctrl.Restore())
	assert.Equal(t, StateVisible, f.ctrl.State())
}

func TestMinimizeTrayStartFailureFallsBack(t *testing.T) {
	f := newFixture(t, true)
	f.tray.startErr = errors.New("no status notifier")

	require.NoError(t, f.ctrl.Minimize())
	assert.Equal(t, StateMinimized, f.ctrl.State())
	assert.False(t, f.ctrl.TrayActive())
	assert.Contains(t, f.window.Calls(), "iconify")
}

func TestHideAfterTaskbarRestoreWithoutTray(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, f *fixture)
	}{
		{"backend unavailable", func(t *testing.T, f *fixture) { f.tray.available = false }},
		{"tray start fails", func(t *testing.T, f *fixture) { f.tray.startErr = errors.New("no status notifier") }},
		{"tray disabled in config", func(t *testing.T, f *fixture) {
			f.gateOnConfig()
			f.setTrayDisabled(t, true)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)
			tt.setup(t, f)

			require.NoError(t, f.ctrl.Minimize())
			require.False(t, f.window.Visible())

			// 用户从任务栏把窗口点了回来
			f.window.Show()
			require.True(t, f.window.Visible())

			f.prompter.choice = CommandHide
			require.NoError(t, f.ctrl.RequestClose())

			assert.Equal(t, StateMinimized, f.ctrl.State())
			assert.False(t, f.window.Visible())
			assert.False(t, f.ctrl.TrayActive())
			assert.Empty(t, f.tray.handles)
			calls := f.window.Calls()
			assert.Equal(t, []string{"hide", "iconify"}, calls[len(calls)-2:])
			assert.Equal(t, []string{"visible->minimized"}, f.Transitions())

			// 折叠按钮同样有效
			f.window.Show()
			require.NoError(t, f.ctrl.Minimize())
			assert.False(t, f.window.Visible())

			require.NoError(t, f.ctrl.Restore())
			assert.Equal(t, StateVisible, f.ctrl.State())
			assert.True(t, f.window.Visible())
		})
	}
}

func TestGateTray(t *testing.T) {
	tests := []struct {
		name      string
		available bool
		disabled  func() bool
		want      bool
	}{
		{"available and enabled", true, func() bool { return false }, true},
		{"available but disabled", true, func() bool { return true }, false},
		{"unavailable and enabled", false, func() bool { return false }, false},
		{"unavailable and disabled", false, func() bool { return true }, false},
		{"no disabled func", true, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gated := GateTray(&fakeTray{available: tt.available}, tt.disabled)
			assert.Equal(t, tt.want, gated.Available())
		})
	}

	assert.False(t, GateTray(nil, nil).Available())
}

func TestTrayDisabledInConfigFollowsReload(t *testing.T) {
	f := newFixture(t, true)
	f.gateOnConfig()
	f.setTrayDisabled(t, true)

	require.NoError(t, f.ctrl.Minimize())
	assert.False(t, f.ctrl.TrayActive())
	assert.Contains(t, f.window.Calls(), "iconify")
	assert.Empty(t, f.tray.handles)

	require.NoError(t, f.ctrl.Restore())
	f.setTrayDisabled(t, false)

	require.NoError(t, f.ctrl.Minimize())
	assert.True(t, f.ctrl.TrayActive())
	assert.Equal(t, 1, f.tray.live())
}

func TestMinimizeRestoreSequenceKeepsSingleTray(t *testing.T) {
	f := newFixture(t, true)

	ops := []string{"min", "min", "restore", "restore", "min", "restore", "min", "min", "min", "restore"}
	for i, op := range ops {
		switch op {
		case "min":
			require.NoError(t, f.ctrl.Minimize())
			assert.Equal(t, StateMinimized, f.ctrl.State(), "step %d", i)
		case "restore":
			require.NoError(t, f.ctrl.Restore())
			assert.Equal(t, StateVisible, f.ctrl.State(), "step %d", i)
		}
		assert.LessOrEqual(t, f.tray.live(), 1, "step %d", i)
	}

	// 三次从 Visible 进入 Minimized，每次一个托盘
	assert.Len(t, f.tray.handles, 3)
	for _, h := range f.tray.handles {
		assert.Equal(t, 1, h.Stopped())
	}
	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.Transitions.WithLabelValues("visible", "minimized")))
	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.Transitions.WithLabelValues("minimized", "visible")))
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.TrayActive))
}

func TestRestoreWhileVisibleIsIdempotent(t *testing.T) {
	f := newFixture(t, true)

	require.NoError(t, f.ctrl.Restore())
	require.NoError(t, f.ctrl.Restore())

	assert.Equal(t, StateVisible, f.ctrl.State())
	assert.False(t, f.ctrl.TrayActive())
	assert.Empty(t, f.tray.handles)
	assert.Empty(t, f.Transitions())
}

func TestExitFromEveryState(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fixture)
	}{
		{"visible", func(*fixture) {}},
		{"minimized to tray", func(f *fixture) { require.NoError(t, f.ctrl.Minimize()) }},
		{"minimized without tray", func(f *fixture) {
			f.tray.available = false
			require.NoError(t, f.ctrl.Minimize())
		}},
		{"after round trip", func(f *fixture) {
			require.NoError(t, f.ctrl.Minimize())
			require.NoError(t, f.ctrl.Restore())
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)
			tt.setup(f)

			f.ctrl.Exit()
			f.ctrl.Exit()

			assert.Equal(t, StateExited, f.ctrl.State())
			assert.False(t, f.ctrl.TrayActive())
			assert.Equal(t, 0, f.tray.live())
			assert.Equal(t, 1, f.engine.Stops())
			assert.Equal(t, "destroy", f.window.Calls()[len(f.window.Calls())-1])

			select {
			case <-f.ctrl.Done():
			default:
				t.Fatal("Done not closed after Exit")
			}
		})
	}
}

func TestOperationsAfterExit(t *testing.T) {
	f := newFixture(t, true)
	f.ctrl.Exit()

	assert.ErrorIs(t, f.ctrl.Minimize(), ErrExited)
	assert.ErrorIs(t, f.ctrl.Restore(), ErrExited)
	assert.ErrorIs(t, f.ctrl.RequestClose(), ErrExited)
	assert.ErrorIs(t, f.ctrl.Dispatch(CommandCancel), ErrExited)
	assert.ErrorIs(t, f.ctrl.ApplyConfig(config.FormFromConfig(f.holder.Snapshot())), ErrExited)

	assert.Empty(t, f.tray.handles)
	assert.Zero(t, f.prompter.asked)
	assert.Equal(t, 1, f.engine.Stops())
}

func TestRequestCloseChoices(t *testing.T) {
	t.Run("hide equals minimize", func(t *testing.T) {
		viaDialog := newFixture(t, true)
		viaDialog.prompter.choice = CommandHide
		require.NoError(t, viaDialog.ctrl.RequestClose())

		direct := newFixture(t, true)
		require.NoError(t, direct.ctrl.Minimize())

		assert.Equal(t, direct.ctrl.State(), viaDialog.ctrl.State())
		assert.Equal(t, direct.ctrl.TrayActive(), viaDialog.ctrl.TrayActive())
		assert.Equal(t, direct.window.Calls(), viaDialog.window.Calls())
		assert.Equal(t, 1, viaDialog.prompter.asked)
	})

	t.Run("cancel leaves state unchanged", func(t *testing.T) {
		f := newFixture(t, true)
		f.prompter.choice = CommandCancel

		require.NoError(t, f.ctrl.RequestClose())

		assert.Equal(t, StateVisible, f.ctrl.State())
		assert.False(t, f.ctrl.TrayActive())
		assert.Empty(t, f.window.Calls())
		assert.Zero(t, f.engine.Stops())
	})

	t.Run("close exits", func(t *testing.T) {
		f := newFixture(t, true)
		f.prompter.choice = CommandClose

		require.NoError(t, f.ctrl.RequestClose())

		assert.Equal(t, StateExited, f.ctrl.State())
		assert.Equal(t, 1, f.engine.Stops())
		assert.Equal(t, []string{"destroy"}, f.window.Calls())
	})
}

func TestRequestCloseIgnoresReentry(t *testing.T) {
	f := newFixture(t, true)
	f.prompter.block = make(chan struct{})
	f.prompter.entered = make(chan struct{}, 1)
	f.prompter.choice = CommandCancel

	done := make(chan error, 1)
	go func() { done <- f.ctrl.RequestClose() }()

	<-f.prompter.entered
	// 对话框仍然打开
	require.NoError(t, f.ctrl.RequestClose())
	close(f.prompter.block)
	require.NoError(t, <-done)

	assert.Equal(t, 1, f.prompter.asked)
	assert.Equal(t, StateVisible, f.ctrl.State())
}

func TestDispatchUnknownCommand(t *testing.T) {
	f := newFixture(t, true)
	assert.Error(t, f.ctrl.Dispatch(Command(99)))
}

func TestTrayMenuPostsCommands(t *testing.T) {
	f := newFixture(t, true)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.ctrl.ctx = ctx

	go f.ctrl.Run()

	require.NoError(t, f.ctrl.Minimize())
	f.tray.menu.OnShow()

	require.Eventually(t, func() bool {
		return f.ctrl.State() == StateVisible
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, f.tray.live())

	require.NoError(t, f.ctrl.Minimize())
	f.tray.menu.OnQuit()

	select {
	case <-f.ctrl.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("tray quit did not exit")
	}
	assert.Equal(t, StateExited, f.ctrl.State())
	assert.Equal(t, 0, f.tray.live())
	assert.Equal(t, 1, f.engine.Stops())
}

func TestPostDropsWhenMailboxFull(t *testing.T) {
	f := newFixture(t, true)
	for i := 0; i < defaultMailboxSize; i++ {
		require.True(t, f.ctrl.Post(CommandCancel))
	}
	assert.False(t, f.ctrl.Post(CommandCancel))
}

func TestApplyConfigSuccess(t *testing.T) {
	f := newFixture(t, true)

	form := config.FormFromConfig(f.holder.Snapshot())
	form.Hotkey = "ctrl+alt+v"

	require.NoError(t, f.ctrl.ApplyConfig(form))

	assert.Equal(t, "ctrl+alt+v", f.holder.Snapshot().Hotkey)
	assert.Equal(t, 1, f.rebinder.calls)
	assert.Equal(t, []string{"配置已应用"}, f.prompter.infos)
	assert.Empty(t, f.prompter.errors)
	assert.Equal(t, StateVisible, f.ctrl.State())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ConfigApply.WithLabelValues("ok")))
}

func TestApplyConfigFailureReported(t *testing.T) {
	f := newFixture(t, true)
	before := f.holder.Snapshot()

	form := config.FormFromConfig(before)
	form.Hotkey = "ctrl+alt+v"
	form.Delay = "slow"

	err := f.ctrl.ApplyConfig(form)
	require.Error(t, err)

	assert.Equal(t, before, f.holder.Snapshot())
	assert.Zero(t, f.rebinder.calls)
	require.Len(t, f.prompter.errors, 1)
	assert.Contains(t, f.prompter.errors[0], "应用配置时发生错误")
	assert.Empty(t, f.prompter.infos)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ConfigApply.WithLabelValues("error")))
}

func TestApplyConfigWhileMinimizedKeepsState(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.ctrl.Minimize())

	form := config.FormFromConfig(f.holder.Snapshot())
	form.AutoSendImage = false
	require.NoError(t, f.ctrl.ApplyConfig(form))

	assert.Equal(t, StateMinimized, f.ctrl.State())
	assert.True(t, f.ctrl.TrayActive())
}

func TestSaveConfigOnlyInforms(t *testing.T) {
	f := newFixture(t, true)
	before := f.holder.Snapshot()

	f.ctrl.SaveConfig()

	assert.Len(t, f.prompter.infos, 1)
	assert.Equal(t, before, f.holder.Snapshot())
	assert.Zero(t, f.rebinder.calls)
}

func TestCloseChoice(t *testing.T) {
	tests := []struct {
		button string
		want   Command
	}{
		{ButtonHide, CommandHide},
		{ButtonClose, CommandClose},
		{ButtonCancel, CommandCancel},
		{"Yes", CommandHide},
		{"No", CommandClose},
		{"Cancel", CommandCancel},
		{"", CommandCancel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CloseChoice(tt.button), "button %q", tt.button)
	}
}
