package tui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kestrel-cli/kestrel/internal/agent"
	"github.com/kestrel-cli/kestrel/internal/session"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// dispatchForm collects the fields needed for a new dispatch: either an
// issue number or a standalone branch name, plus a title and initial prompt.
type dispatchForm struct {
	inputs     []textinput.Model
	focusIndex int
}

const (
	fieldIssue = iota
	fieldBranch
	fieldTitle
	fieldPrompt
	fieldCount
)

func newDispatchForm() dispatchForm {
	inputs := make([]textinput.Model, fieldCount)

	issue := textinput.New()
	issue.Placeholder = "issue number, e.g. 42 (leave blank for a standalone branch)"
	inputs[fieldIssue] = issue

	branch := textinput.New()
	branch.Placeholder = "branch name (used if no issue number is given)"
	inputs[fieldBranch] = branch

	title := textinput.New()
	title.Placeholder = "short title"
	inputs[fieldTitle] = title

	prompt := textinput.New()
	prompt.Placeholder = "initial prompt for the agent"
	inputs[fieldPrompt] = prompt

	return dispatchForm{inputs: inputs}
}

func (f *dispatchForm) focusFirst() {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	f.focusIndex = 0
	f.inputs[0].Focus()
}

func (m Model) updateDispatchForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = viewList
		return m, nil
	case "tab", "down":
		m.form.inputs[m.form.focusIndex].Blur()
		m.form.focusIndex = (m.form.focusIndex + 1) % fieldCount
		m.form.inputs[m.form.focusIndex].Focus()
		return m, nil
	case "shift+tab", "up":
		m.form.inputs[m.form.focusIndex].Blur()
		m.form.focusIndex = (m.form.focusIndex - 1 + fieldCount) % fieldCount
		m.form.inputs[m.form.focusIndex].Focus()
		return m, nil
	case "enter":
		return m.submitDispatchForm()
	}

	var cmd tea.Cmd
	m.form.inputs[m.form.focusIndex], cmd = m.form.inputs[m.form.focusIndex].Update(msg)
	return m, cmd
}

func (m Model) submitDispatchForm() (tea.Model, tea.Cmd) {
	issueText := m.form.inputs[fieldIssue].Value()
	branchText := m.form.inputs[fieldBranch].Value()
	title := m.form.inputs[fieldTitle].Value()
	prompt := m.form.inputs[fieldPrompt].Value()

	if issueText == "" && branchText == "" {
		m.errMsg = "one of issue number or branch name is required"
		return m, nil
	}

	baseBranch := m.deps.Config.Project.BaseBranch
	agentKind := session.AgentKind(m.deps.Config.Agents.Default)

	var (
		branchName string
		issueRef   session.IssueRef
	)
	if issueText != "" {
		issueNum, err := strconv.Atoi(issueText)
		if err != nil {
			m.errMsg = fmt.Sprintf("invalid issue number: %s", issueText)
			return m, nil
		}
		if existing, ok := m.deps.Store.ByIssue(m.project, issueNum); ok {
			m.errMsg = fmt.Sprintf("session %s is already active for issue #%d", shortID(existing.ID), issueNum)
			return m, nil
		}
		issueRef = session.IssueRef{Project: m.project, IssueNumber: &issueNum}
		branchName = fmt.Sprintf("issue-%d", issueNum)
		if m.tracker != nil && (title == "" || prompt == "") {
			if fetched, ferr := m.tracker.FetchIssue(context.Background(), m.project, issueNum); ferr == nil {
				if title == "" {
					title = fetched.Title
				}
				if prompt == "" {
					prompt = fetched.Body
				}
			}
		}
		if title == "" {
			title = fmt.Sprintf("#%d", issueNum)
		}
	} else {
		issueRef = session.IssueRef{Project: m.project}
		branchName = branchText
		if title == "" {
			title = branchText
		}
	}

	worktreePath, resolvedBranch, err := m.deps.Worktrees.Create(m.project, branchName, baseBranch)
	if err != nil {
		m.errMsg = fmt.Sprintf("failed to create worktree: %v", err)
		return m, nil
	}

	a, err := agent.New(agentKind, &m.deps.Config.Agents)
	if err != nil {
		m.errMsg = err.Error()
		return m, nil
	}

	sess := &session.Session{
		IssueRef:     issueRef,
		Title:        title,
		Status:       session.RunningStatus(),
		WorktreePath: worktreePath,
		BranchName:   resolvedBranch,
		AgentKind:    agentKind,
	}

	tmuxName := tmuxNameForSession(sess)
	launchCmd := a.BuildLaunchCommand(worktreePath, prompt)
	if err := m.deps.Tmux.Create(tmuxName, launchCmd, m.deps.Config.Terminal.Rows, m.deps.Config.Terminal.Cols); err != nil {
		m.errMsg = fmt.Sprintf("failed to start tmux session: %v", err)
		return m, nil
	}
	if err := m.deps.Store.Add(sess); err != nil {
		m.errMsg = fmt.Sprintf("failed to persist session: %v", err)
		return m, nil
	}

	m.sup.Start(sess, a, false)
	m.statusMsg = fmt.Sprintf("dispatched %s", shortID(sess.ID))
	m.errMsg = ""
	m.state = viewList
	m.refreshSessions()
	return m, nil
}

func (m Model) viewDispatchForm() string {
	labels := []string{"Issue #", "Branch", "Title", "Prompt"}
	body := titleStyle.Render("New dispatch") + "\n\n"
	for i, input := range m.form.inputs {
		body += labelStyle.Render(labels[i]+": ") + input.View() + "\n"
	}
	body += "\n" + helpStyle.Render("tab/shift+tab: move  enter: dispatch  esc: cancel")
	if m.errMsg != "" {
		body += "\n" + errorStyle.Render(m.errMsg)
	}
	return panelStyle.Render(body)
}
