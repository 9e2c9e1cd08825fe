package tui

import (
	"fmt"

	"github.com/kestrel-cli/kestrel/internal/session"
	"github.com/kestrel-cli/kestrel/internal/termview"
	"github.com/kestrel-cli/kestrel/internal/tmux"

	tea "github.com/charmbracelet/bubbletea"
)

// embeddedOpenedMsg carries the result of attachCmd back into Update, since
// opening a PTY is a side effect that must run as a tea.Cmd rather than
// mutate the model directly.
type embeddedOpenedMsg struct {
	target *session.Session
	view   *termview.View
	err    error
}

// attachCmd starts an embedded terminal view wired to sess's tmux pane over
// its own PTY, the Embedded Terminal path used by the session detail pane so
// the operator never has to leave the dashboard to watch or drive an agent.
func (m Model) attachCmd(sess *session.Session) tea.Cmd {
	return func() tea.Msg {
		v, err := termview.Open(termview.Config{
			Shell:   "/bin/sh",
			Args:    []string{"-c", fmt.Sprintf("tmux -L %s attach -t %s", tmux.SocketName, tmuxNameForSession(sess))},
			Columns: m.deps.Config.Terminal.Cols,
			Rows:    m.deps.Config.Terminal.Rows,
		})
		return embeddedOpenedMsg{target: sess, view: v, err: err}
	}
}

func (m Model) updateEmbedded(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+q" {
		if m.embedded != nil {
			_ = m.embedded.Close()
			m.embedded = nil
		}
		m.state = viewDetail
		return m, nil
	}

	if m.embedded == nil {
		m.state = viewDetail
		return m, nil
	}

	return m, sendKeyCmd(m.embedded, translateKey(msg))
}

// sendKeyCmd forwards key to view as a tea.Cmd rather than calling
// view.Send inline in Update, so a momentarily contended write queue never
// stalls bubbletea's single cooperative event loop.
func sendKeyCmd(view *termview.View, key termview.Key) tea.Cmd {
	return func() tea.Msg {
		_ = view.Send(key)
		return nil
	}
}

// translateKey converts a bubbletea key event into the embedded terminal's
// own key representation, independent of which TUI library drives input.
func translateKey(msg tea.KeyMsg) termview.Key {
	switch msg.Type {
	case tea.KeyEnter:
		return termview.Key{Name: termview.KeyEnter}
	case tea.KeyBackspace:
		return termview.Key{Name: termview.KeyBackspace}
	case tea.KeyTab:
		return termview.Key{Name: termview.KeyTab}
	case tea.KeyEsc:
		return termview.Key{Name: termview.KeyEscape}
	case tea.KeyUp:
		return termview.Key{Name: termview.KeyUp}
	case tea.KeyDown:
		return termview.Key{Name: termview.KeyDown}
	case tea.KeyLeft:
		return termview.Key{Name: termview.KeyLeft}
	case tea.KeyRight:
		return termview.Key{Name: termview.KeyRight}
	case tea.KeyHome:
		return termview.Key{Name: termview.KeyHome}
	case tea.KeyEnd:
		return termview.Key{Name: termview.KeyEnd}
	case tea.KeyPgUp:
		return termview.Key{Name: termview.KeyPageUp}
	case tea.KeyPgDown:
		return termview.Key{Name: termview.KeyPageDown}
	case tea.KeyDelete:
		return termview.Key{Name: termview.KeyDelete}
	case tea.KeyCtrlC:
		return termview.Key{Name: termview.KeyRune, Ctrl: true, Runes: []rune{'c'}}
	case tea.KeyRunes:
		return termview.Key{Name: termview.KeyRune, Runes: msg.Runes}
	case tea.KeySpace:
		return termview.Key{Name: termview.KeyRune, Runes: []rune{' '}}
	default:
		return termview.Key{Name: termview.KeyRune, Runes: []rune(msg.String())}
	}
}

func (m Model) viewEmbedded() string {
	if m.embedded == nil {
		return m.viewDetail()
	}
	header := titleStyle.Render(fmt.Sprintf("attached: %s", m.detailTarget.Title))
	body := panelStyle.Render(m.embedded.PlainText())
	help := helpStyle.Render("ctrl+q: detach")
	return header + "\n" + body + "\n" + help
}
