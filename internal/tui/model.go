// Package tui implements the operator interface: a bubbletea program that
// lists dispatched sessions, drives new dispatches, attaches an embedded
// terminal to a selected session's tmux pane, and surfaces Supervisor
// notifications, all from a single persistent process.
package tui

import (
	"fmt"
	"time"

	"github.com/kestrel-cli/kestrel/internal/agent"
	"github.com/kestrel-cli/kestrel/internal/cli"
	"github.com/kestrel-cli/kestrel/internal/notify"
	"github.com/kestrel-cli/kestrel/internal/session"
	"github.com/kestrel-cli/kestrel/internal/supervisor"
	"github.com/kestrel-cli/kestrel/internal/termview"
	"github.com/kestrel-cli/kestrel/internal/tracker"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

// viewState selects which pane of the operator interface is active.
type viewState int

const (
	viewList viewState = iota
	viewDispatchForm
	viewConfirmKill
	viewDetail
	viewEmbedded
)

// Model is the bubbletea root model for kestrel's operator interface.
type Model struct {
	deps    *cli.Deps
	repoDir string
	project string
	tracker tracker.Client

	sup *supervisor.Supervisor

	state    viewState
	table    table.Model
	sessions []*session.Session

	form          dispatchForm
	confirmTarget *session.Session
	detailTarget  *session.Session
	embedded      *termview.View

	statusMsg string
	errMsg    string

	width, height int
}

// newModel constructs the operator interface's root model, wired to deps.
// It resumes supervision of any sessions left running from a previous
// process before the first frame is drawn.
func newModel(deps *cli.Deps, repoDir, project string) Model {
	sup := supervisor.NewFromConfig(deps.Store, deps.Tmux, deps.Worktrees, notify.System(deps.Config.Notify.Enabled), deps.Logger, deps.Config.Supervisor)
	sup.ResumeAll(func(sess *session.Session) (agent.Adapter, error) {
		return agent.New(sess.AgentKind, &deps.Config.Agents)
	})

	m := Model{
		deps:    deps,
		repoDir: repoDir,
		project: project,
		tracker: deps.Tracker,
		sup:     sup,
		state:   viewList,
		table:   newSessionTable(),
		form:    newDispatchForm(),
	}
	m.refreshSessions()
	return m
}

func newSessionTable() table.Model {
	columns := []table.Column{
		{Title: "ID", Width: 8},
		{Title: "Title", Width: 24},
		{Title: "Status", Width: 10},
		{Title: "Branch", Width: 20},
		{Title: "Duration", Width: 10},
		{Title: "+/-", Width: 12},
		{Title: "Agent", Width: 10},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.BorderForeground(colorBorder).Bold(true)
	styles.Selected = styles.Selected.Foreground(colorPrimary).Bold(true)
	t.SetStyles(styles)
	return t
}

// refreshSessions reloads the session list from the store and rebuilds the
// table rows, sorted with the most recently started session first.
func (m *Model) refreshSessions() {
	sessions := m.deps.Store.All()
	sortSessionsByStartedAt(sessions)
	m.sessions = sessions

	rows := make([]table.Row, 0, len(sessions))
	for _, sess := range sessions {
		rows = append(rows, table.Row{
			shortID(sess.ID),
			sess.Title,
			string(sess.Status.Kind),
			sess.BranchName,
			sess.Duration(),
			fmt.Sprintf("+%d/-%d", sess.Stats.LinesAdded, sess.Stats.LinesDeleted),
			string(sess.AgentKind),
		})
	}
	m.table.SetRows(rows)
}

func sortSessionsByStartedAt(sessions []*session.Session) {
	for i := 1; i < len(sessions); i++ {
		for j := i; j > 0 && sessions[j].StartedAt.After(sessions[j-1].StartedAt); j-- {
			sessions[j], sessions[j-1] = sessions[j-1], sessions[j]
		}
	}
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// selectedSession returns the session backing the table's highlighted row.
func (m *Model) selectedSession() (*session.Session, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.sessions) {
		return nil, false
	}
	return m.sessions[idx], true
}

// Init starts the periodic refresh tick.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update dispatches to the active view's update logic.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tickMsg:
		if m.state != viewEmbedded {
			m.refreshSessions()
		}
		return m, tickCmd()
	case tea.KeyMsg:
		return m.updateKey(msg)
	case embeddedOpenedMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.embedded = msg.view
		m.detailTarget = msg.target
		m.state = viewEmbedded
		return m, nil
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case viewDispatchForm:
		return m.updateDispatchForm(msg)
	case viewConfirmKill:
		return m.updateConfirmKill(msg)
	case viewDetail:
		return m.updateDetail(msg)
	case viewEmbedded:
		return m.updateEmbedded(msg)
	default:
		return m.updateList(msg)
	}
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "n":
		m.state = viewDispatchForm
		m.form = newDispatchForm()
		m.form.focusFirst()
		return m, nil
	case "enter":
		if sess, ok := m.selectedSession(); ok {
			m.detailTarget = sess
			m.state = viewDetail
		}
		return m, nil
	case "k":
		if sess, ok := m.selectedSession(); ok {
			m.confirmTarget = sess
			m.state = viewConfirmKill
		}
		return m, nil
	case "r":
		m.refreshSessions()
		return m, nil
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateConfirmKill(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y":
		if m.confirmTarget != nil {
			if err := m.killSession(m.confirmTarget); err != nil {
				m.errMsg = err.Error()
			} else {
				m.statusMsg = fmt.Sprintf("killed session %s", shortID(m.confirmTarget.ID))
			}
		}
		m.confirmTarget = nil
		m.state = viewList
		m.refreshSessions()
		return m, nil
	default:
		m.confirmTarget = nil
		m.state = viewList
		return m, nil
	}
}

func (m Model) killSession(sess *session.Session) error {
	tmuxName := tmuxNameForSession(sess)
	_ = m.deps.Tmux.SendKeys(tmuxName, "C-c")
	if err := m.deps.Tmux.Kill(tmuxName); err != nil {
		return err
	}
	m.sup.Stop(sess.ID)
	return m.deps.Store.UpdateStatus(sess.ID, session.FailedStatus("killed by operator"))
}

func tmuxNameForSession(sess *session.Session) string {
	if sess.IssueRef.IssueNumber != nil {
		return fmt.Sprintf("%s-issue-%d", sess.IssueRef.Project, *sess.IssueRef.IssueNumber)
	}
	return fmt.Sprintf("%s-%s", sess.IssueRef.Project, sess.BranchName)
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.detailTarget = nil
		m.state = viewList
		return m, nil
	case "a":
		if m.detailTarget != nil {
			return m, m.attachCmd(m.detailTarget)
		}
	}
	return m, nil
}

// View renders the active pane.
func (m Model) View() string {
	switch m.state {
	case viewDispatchForm:
		return m.viewDispatchForm()
	case viewConfirmKill:
		return m.viewConfirmKill()
	case viewDetail:
		return m.viewDetail()
	case viewEmbedded:
		return m.viewEmbedded()
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	header := titleStyle.Render(fmt.Sprintf("kestrel · %s", m.project))
	body := panelStyle.Render(m.table.View())
	help := helpStyle.Render("n: dispatch  enter: detail  k: kill  r: refresh  q: quit")

	out := header + "\n" + body + "\n" + help
	if m.errMsg != "" {
		out += "\n" + errorStyle.Render(m.errMsg)
	} else if m.statusMsg != "" {
		out += "\n" + helpStyle.Render(m.statusMsg)
	}
	return out
}

func (m Model) viewConfirmKill() string {
	if m.confirmTarget == nil {
		return m.viewList()
	}
	question := fmt.Sprintf("Kill session %s (%s)? [y/N]", shortID(m.confirmTarget.ID), m.confirmTarget.Title)
	return panelStyle.Render(question)
}

func (m Model) viewDetail() string {
	sess := m.detailTarget
	if sess == nil {
		return m.viewList()
	}
	lines := []string{
		titleStyle.Render(sess.Title),
		labelStyle.Render("status: ") + statusStyle(string(sess.Status.Kind)).Render(string(sess.Status.Kind)),
		labelStyle.Render("branch: ") + sess.BranchName,
		labelStyle.Render("worktree: ") + sess.WorktreePath,
		labelStyle.Render("duration: ") + sess.Duration(),
		labelStyle.Render("diff: ") + fmt.Sprintf("+%d -%d across %d file(s)", sess.Stats.LinesAdded, sess.Stats.LinesDeleted, sess.Stats.FilesChanged),
		labelStyle.Render("agent: ") + string(sess.AgentKind),
	}
	if sess.PRURL != "" {
		lines = append(lines, labelStyle.Render("pr: ")+sess.PRURL)
	}
	body := panelStyle.Render(joinLines(lines))
	help := helpStyle.Render("a: attach terminal  esc: back")
	return body + "\n" + help
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}
