package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/teamtree/pkg/connector"
	"github.com/matzehuels/teamtree/pkg/layout"
	"github.com/matzehuels/teamtree/pkg/pipeline"
	"github.com/matzehuels/teamtree/pkg/poller"
	"github.com/matzehuels/teamtree/pkg/render/text"
	"github.com/matzehuels/teamtree/pkg/tree"
)

// watchOpts holds the flags for the watch command.
type watchOpts struct {
	treeFlags
	interval time.Duration
	noColor  bool
}

// watchCommand creates the interactive, self-refreshing tree view.
func (c *CLI) watchCommand() *cobra.Command {
	var opts watchOpts

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show the team tree in the terminal and keep it up to date",
		Long: `Watch draws the team tree in the terminal and refetches it on a fixed
interval. Keys: q quits, r refreshes now, + and - change the depth.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), opts)
		},
	}

	opts.treeFlags.register(cmd)
	cmd.Flags().DurationVar(&opts.interval, "interval", 0, "refresh interval (default from config)")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "draw without colors")

	return cmd
}

func (c *CLI) runWatch(parent context.Context, opts watchOpts) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	cl, cred, err := c.newClient(ctx)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, opts.noCache, member(cred))
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := c.pipelineOptions(opts.treeFlags)
	popts.Refresh = true
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	interval := time.Duration(c.cfg.Poll.Interval)
	if opts.interval > 0 {
		interval = opts.interval
	}

	fetch := func(ctx context.Context) (*tree.Node, tree.Stats, error) {
		fetched, err := runner.Fetch(ctx, cl, popts)
		return fetched.Root, fetched.Stats, err
	}

	// The TUI owns the terminal; log to a discarded logger while it runs.
	quiet := log.New(io.Discard)
	sess := newWatchSession(fetch, popts.LayoutOptions().Depth, interval, quiet)

	model := newWatchModel(sess, popts.Kind, !opts.noColor)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	sess.start(ctx, func() { go program.Send(redrawMsg{}) })

	_, err = program.Run()
	cancel()
	sess.close()

	if parent.Err() != nil {
		return parent.Err()
	}
	return err
}

// =============================================================================
// Session - poller, surface and observer behind the view
// =============================================================================

// watchSession connects a poller to a connector surface. Snapshots are laid
// out at the session depth, mounted on the surface, and the observer
// recomputes connectors whenever the mounted cards change. notify is called
// after every state change; it must not block.
type watchSession struct {
	poller   *poller.Poller
	surface  *connector.Surface
	observer *connector.Observer
	logger   *log.Logger
	notify   func()
	ctx      context.Context

	// mountMu serialises layout changes so the stored layout always matches
	// the depth. It is taken before mu.
	mountMu sync.Mutex

	mu     sync.Mutex
	snap   poller.Snapshot
	layout layout.Layout
	paths  []connector.Path
	depth  int
}

func newWatchSession(fetch poller.FetchFunc, depth int, interval time.Duration, logger *log.Logger) *watchSession {
	s := &watchSession{
		surface: connector.NewSurface(),
		logger:  logger,
		depth:   depth,
		notify:  func() {},
		snap:    poller.Snapshot{Loading: true},
	}
	s.observer = connector.NewObserver(s.surface, s.compute, s.onConnectors)
	s.poller = poller.New(fetch, s.onSnapshot,
		poller.WithInterval(interval),
		poller.WithLayout(text.Geometry(depth)),
		poller.WithLogger(logger),
	)
	return s
}

// start begins observing and polling. notify replaces the no-op default.
func (s *watchSession) start(ctx context.Context, notify func()) {
	s.ctx = ctx
	if notify != nil {
		s.notify = notify
	}
	s.observer.Start()
	go func() {
		if err := s.poller.Run(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("poller stopped", "error", err)
		}
	}()
}

// close stops polling, then observing, then releases the surface. After close
// returns no callback fires.
func (s *watchSession) close() {
	s.poller.Stop()
	s.observer.Stop()
	s.surface.Teardown()
}

func (s *watchSession) compute(surface *connector.Surface) []connector.Path {
	s.mu.Lock()
	l := s.layout
	s.mu.Unlock()
	return connector.ForLayout(surface, l)
}

// onSnapshot runs with the poller lock held.
func (s *watchSession) onSnapshot(snap poller.Snapshot) {
	s.mountMu.Lock()
	defer s.mountMu.Unlock()

	s.mu.Lock()
	s.snap = snap
	depth := s.depth
	s.mu.Unlock()

	if !snap.Loading {
		l := snap.Layout
		if l.Depth != depth {
			relaid, err := layout.Compute(snap.Root, text.Geometry(depth))
			if err != nil {
				s.logger.Error("layout failed", "depth", depth, "error", err)
			} else {
				l = relaid
			}
		}
		s.mount(l)
	}
	s.notify()
}

// mount stores l and mounts it on the surface. Callers hold mountMu.
func (s *watchSession) mount(l layout.Layout) {
	s.mu.Lock()
	s.layout = l
	s.mu.Unlock()
	s.surface.MountLayout(l)
}

// onConnectors runs with the observer lock held.
func (s *watchSession) onConnectors(paths []connector.Path) {
	s.mu.Lock()
	s.paths = paths
	s.mu.Unlock()
	s.notify()
}

// setDepth lays the current tree out again at depth.
func (s *watchSession) setDepth(depth int) error {
	s.mountMu.Lock()
	defer s.mountMu.Unlock()

	s.mu.Lock()
	root := s.snap.Root
	loading := s.snap.Loading
	s.mu.Unlock()

	l, err := layout.Compute(root, text.Geometry(depth))
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.depth = depth
	s.mu.Unlock()

	if !loading {
		s.mount(l)
	}
	s.notify()
	return nil
}

func (s *watchSession) refresh() {
	if s.ctx != nil {
		s.poller.Refresh(s.ctx)
	}
}

// watchView is a consistent copy of the session state.
type watchView struct {
	snap   poller.Snapshot
	layout layout.Layout
	paths  []connector.Path
	depth  int
}

func (s *watchSession) view() watchView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return watchView{snap: s.snap, layout: s.layout, paths: s.paths, depth: s.depth}
}

// =============================================================================
// Model - bubbletea view
// =============================================================================

type redrawMsg struct{}

type depthErrMsg struct{ err error }

var (
	watchErrorStyle = lipgloss.NewStyle().Foreground(colorRed)
	watchHelpStyle  = lipgloss.NewStyle().Foreground(colorDim)
)

// watchModel never calls into the session from Update; session work runs in
// commands so callbacks that Send to the program cannot block the loop.
type watchModel struct {
	sess   *watchSession
	kind   string
	color  bool
	width  int
	height int
	depth  int
	err    error
}

func newWatchModel(sess *watchSession, kind string, color bool) watchModel {
	if kind == "" {
		kind = pipeline.DefaultKind
	}
	return watchModel{sess: sess, kind: kind, color: color, depth: sess.view().depth}
}

func (m watchModel) Init() tea.Cmd {
	return nil
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		sess := m.sess
		return m, func() tea.Msg {
			sess.observer.WindowResized()
			return nil
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			sess := m.sess
			return m, func() tea.Msg {
				sess.refresh()
				return nil
			}
		case "+", "=":
			return m.changeDepth(1)
		case "-", "_":
			return m.changeDepth(-1)
		}
	case depthErrMsg:
		m.err = msg.err
	case redrawMsg:
	}
	return m, nil
}

func (m watchModel) changeDepth(delta int) (tea.Model, tea.Cmd) {
	depth := m.depth + delta
	if depth < 1 || depth > layout.MaxDepth {
		return m, nil
	}
	m.depth = depth
	m.err = nil
	sess := m.sess
	return m, func() tea.Msg {
		if err := sess.setDepth(depth); err != nil {
			return depthErrMsg{err}
		}
		return nil
	}
}

func (m watchModel) View() string {
	v := m.sess.view()

	var b strings.Builder
	b.WriteString(m.header(v))
	b.WriteString("\n")

	switch {
	case v.snap.Loading:
		b.WriteString(watchHelpStyle.Render("Loading…"))
		b.WriteString("\n")
	default:
		if v.snap.Err != nil {
			b.WriteString(watchErrorStyle.Render(iconError + " " + v.snap.Err.Error() + " (showing empty tree)"))
			b.WriteString("\n")
		}
		var opts []text.Option
		if m.color {
			opts = append(opts, text.WithColor())
		}
		b.WriteString(m.crop(text.Draw(v.layout, v.paths, opts...)))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(watchErrorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(watchHelpStyle.Render("q quit · r refresh · +/- depth"))
	return b.String()
}

func (m watchModel) header(v watchView) string {
	parts := []string{
		m.kind + " tree",
		fmt.Sprintf("depth %d", v.depth),
	}
	if !v.snap.Loading {
		parts = append(parts, fmt.Sprintf("%d of %d cards filled", v.layout.Populated(), len(v.layout.Cards)))
		if !v.snap.FetchedAt.IsZero() {
			parts = append(parts, "updated "+v.snap.FetchedAt.Format("15:04:05"))
		}
	}
	return StyleTitle.Render(appName) + " " + StyleDim.Render(strings.Join(parts, " · "))
}

// crop fits the tree into the window, leaving room for header and help.
func (m watchModel) crop(s string) string {
	if m.width <= 0 || m.height <= 0 {
		return s
	}
	h := m.height - 3
	if h < 1 {
		h = 1
	}
	return lipgloss.NewStyle().MaxWidth(m.width).MaxHeight(h).Render(s)
}
