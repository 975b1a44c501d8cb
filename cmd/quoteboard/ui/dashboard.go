package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quoteboard/internal/board"
	"quoteboard/internal/logging"
	"quoteboard/internal/watch"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// snapshotMsg carries the outcome of a load.
type snapshotMsg struct {
	snap *board.Snapshot
	err  error
}

// errorRetryDelay caps how long a ttl board waits before retrying a failed load.
const errorRetryDelay = 30 * time.Second

// expireMsg fires when a scheduled refresh is due. Only the most recently
// scheduled seq is honored.
type expireMsg struct {
	seq int
}

// sourceChangedMsg is sent when the watched source file changes.
type sourceChangedMsg watch.Event

// Dashboard is the top-level program model. It owns loading and leaves
// querying to the quote page.
type Dashboard struct {
	ctx     context.Context
	board   *board.Board
	page    QuotePageModel
	spinner spinner.Model
	changes <-chan watch.Event
	styles  Styles

	loading bool
	loadID  string
	tickSeq int
	loaded  time.Time
	width   int
	height  int
}

// NewDashboard creates the dashboard. changes may be nil.
func NewDashboard(ctx context.Context, b *board.Board, page QuotePageModel, changes <-chan watch.Event, styles Styles) Dashboard {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner
	return Dashboard{
		ctx:     ctx,
		board:   b,
		page:    page,
		spinner: s,
		changes: changes,
		styles:  styles,
		loading: true,
	}
}

// Init starts the first load.
func (d Dashboard) Init() tea.Cmd {
	return tea.Batch(d.spinner.Tick, d.load(), d.waitForChange())
}

func (d Dashboard) load() tea.Cmd {
	b, ctx := d.board, d.ctx
	return func() tea.Msg {
		snap, err := b.Snapshot(ctx)
		return snapshotMsg{snap: snap, err: err}
	}
}

func (d Dashboard) waitForChange() tea.Cmd {
	if d.changes == nil {
		return nil
	}
	ch := d.changes
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return sourceChangedMsg(ev)
	}
}

// scheduleRefresh invalidates any pending tick and schedules a new one.
func (d *Dashboard) scheduleRefresh(after time.Duration) tea.Cmd {
	d.tickSeq++
	seq := d.tickSeq
	return tea.Tick(after, func(time.Time) tea.Msg { return expireMsg{seq: seq} })
}

func (d Dashboard) reload() (Dashboard, tea.Cmd) {
	d.board.Refresh()
	d.tickSeq++
	d.loading = true
	return d, tea.Batch(d.spinner.Tick, d.load())
}

// Update handles messages.
func (d Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.width, d.height = msg.Width, msg.Height
		d.page.SetSize(msg.Width, msg.Height-3)
		return d, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return d, tea.Quit
		}
		if !d.page.KeywordFocused() {
			switch msg.String() {
			case "q":
				return d, tea.Quit
			case "r":
				logging.Get(logging.CategoryUI).Info("manual refresh")
				return d.reload()
			}
		}

	case snapshotMsg:
		d.loading = false
		ttl := d.board.CacheTTL()
		if msg.err != nil {
			d.page.SetError(d.board.Message(msg.err))
			// Manual boards wait for r or a watched file change.
			if ttl <= 0 {
				return d, nil
			}
			retry := min(ttl, errorRetryDelay)
			logging.Get(logging.CategoryUI).Warn("load failed, retrying in %s: %v", retry, msg.err)
			return d, d.scheduleRefresh(retry)
		}
		d.loadID = msg.snap.ID
		d.loaded = msg.snap.LoadedAt
		d.page.SetSnapshot(msg.snap)
		if ttl > 0 {
			return d, d.scheduleRefresh(ttl)
		}
		return d, nil

	case expireMsg:
		if msg.seq != d.tickSeq || d.loading {
			return d, nil
		}
		d.loading = true
		return d, tea.Batch(d.spinner.Tick, d.load())

	case sourceChangedMsg:
		logging.Get(logging.CategoryUI).Info("source changed (%s), reloading", msg.Op)
		d, cmd = d.reload()
		return d, tea.Batch(cmd, d.waitForChange())

	case spinner.TickMsg:
		if !d.loading {
			return d, nil
		}
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd
	}

	d.page, cmd = d.page.Update(msg)
	return d, cmd
}

// Page returns the quote page.
func (d Dashboard) Page() QuotePageModel {
	return d.page
}

// Loading reports whether a load is in flight.
func (d Dashboard) Loading() bool {
	return d.loading
}

// View renders the dashboard.
func (d Dashboard) View() string {
	var sb strings.Builder
	sb.WriteString(d.page.View())
	sb.WriteString("\n")
	if div := d.styles.RenderDivider(d.width); div != "" {
		sb.WriteString(div)
		sb.WriteString("\n")
	}
	sb.WriteString(d.statusLine())
	return sb.String()
}

func (d Dashboard) statusLine() string {
	if d.loading {
		return d.spinner.View() + " " + d.styles.Muted.Render("載入中 "+d.board.Source()+" ...")
	}
	if d.loaded.IsZero() {
		return d.styles.Footer.Render("資料來源：" + d.board.Source())
	}
	status := fmt.Sprintf("資料來源：%s · 載入於 %s", d.board.Source(), d.loaded.Format("15:04:05"))
	if ttl := d.board.CacheTTL(); ttl > 0 {
		status += fmt.Sprintf(" · 每 %s 自動更新", ttl)
	}
	return d.styles.Footer.Render(status)
}

// Run starts the dashboard program and blocks until it exits.
func Run(ctx context.Context, d Dashboard) error {
	p := tea.NewProgram(d, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
