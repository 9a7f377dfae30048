// Package tui renders the dashboard in the terminal.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jrsteele09/go-github-dashboard/dashboard"
	"github.com/jrsteele09/go-github-dashboard/oauth2"
	"github.com/jrsteele09/go-github-dashboard/session"
)

// Session is the part of the session controller the view drives.
type Session interface {
	Evaluate(ctx context.Context, cb oauth2.Callback) error
	Reload(ctx context.Context)
	Logout(ctx context.Context) error
	Snapshot() session.Snapshot
	OnChange(fn func()) (unsubscribe func())
}

// LoginFunc waits for the OAuth redirect.
type LoginFunc func(ctx context.Context) (oauth2.Callback, error)

// messages

type changedMsg struct{}

type doneMsg struct {
	err error
}

// styles

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Underline(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			MarginRight(1)

	cardTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	cardValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252"))

	issuesStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34"))

	pullsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("37"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("99")).
			Padding(1, 2)
)

// model

type Model struct {
	ctx      context.Context
	session  Session
	callback oauth2.Callback
	login    LoginFunc
	now      func() time.Time

	updates     chan struct{}
	unsubscribe func()

	spinner spinner.Model
	waiting bool
	err     error
	width   int
	height  int
}

// New builds the model. callback carries redirect parameters already received, if any.
func New(ctx context.Context, s Session, callback oauth2.Callback, login LoginFunc) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))

	updates := make(chan struct{}, 1)
	unsubscribe := s.OnChange(func() {
		select {
		case updates <- struct{}{}:
		default:
		}
	})

	return Model{
		ctx:         ctx,
		session:     s,
		callback:    callback,
		login:       login,
		now:         time.Now,
		updates:     updates,
		unsubscribe: unsubscribe,
		spinner:     sp,
		width:       100,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		evaluateCmd(m.ctx, m.session, m.callback),
		waitForChange(m.updates),
	)
}

func waitForChange(updates <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-updates
		return changedMsg{}
	}
}

func evaluateCmd(ctx context.Context, s Session, cb oauth2.Callback) tea.Cmd {
	return func() tea.Msg {
		return doneMsg{err: s.Evaluate(ctx, cb)}
	}
}

func reloadCmd(ctx context.Context, s Session) tea.Cmd {
	return func() tea.Msg {
		s.Reload(ctx)
		return doneMsg{}
	}
}

func logoutCmd(ctx context.Context, s Session) tea.Cmd {
	return func() tea.Msg {
		if err := s.Logout(ctx); err != nil {
			return doneMsg{err: err}
		}
		return doneMsg{err: s.Evaluate(ctx, oauth2.Callback{})}
	}
}

func loginCmd(ctx context.Context, s Session, login LoginFunc) tea.Cmd {
	return func() tea.Msg {
		cb, err := login(ctx)
		if err != nil {
			return doneMsg{err: err}
		}
		return doneMsg{err: s.Evaluate(ctx, cb)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		snap := m.session.Snapshot()
		switch msg.String() {
		case "q", "ctrl+c":
			m.unsubscribe()
			return m, tea.Quit
		case "r":
			// a new nonce would invalidate the URL already handed out
			if m.waiting {
				return m, nil
			}
			m.err = nil
			if snap.State == session.NotAuthorized {
				return m, tea.Batch(m.spinner.Tick, evaluateCmd(m.ctx, m.session, oauth2.Callback{}))
			}
			return m, tea.Batch(m.spinner.Tick, reloadCmd(m.ctx, m.session))
		case "l":
			if m.waiting {
				return m, nil
			}
			m.err = nil
			return m, tea.Batch(m.spinner.Tick, logoutCmd(m.ctx, m.session))
		case "enter":
			if snap.State != session.NotAuthorized || snap.AuthorizeURL == "" || m.login == nil || m.waiting {
				return m, nil
			}
			m.waiting = true
			m.err = nil
			return m, tea.Batch(m.spinner.Tick, loginCmd(m.ctx, m.session, m.login))
		}

	case doneMsg:
		m.waiting = false
		m.err = msg.err
		return m, nil

	case changedMsg:
		return m, waitForChange(m.updates)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	snap := m.session.Snapshot()
	var b strings.Builder

	// title row
	title := titleStyle.Render("GitHub Dashboard")
	if snap.Loading || m.waiting {
		title += "  " + m.spinner.View()
	}
	b.WriteString(title + "  " + statusStyle.Render(snap.State.String()) + "\n\n")

	if snap.Alert != "" {
		b.WriteString(errorStyle.Render(snap.Alert) + "\n\n")
	}

	switch snap.State {
	case session.NotAuthorized:
		if snap.AuthorizeURL != "" {
			b.WriteString("Open this URL to sign in with GitHub:\n")
			b.WriteString(linkStyle.Render(snap.AuthorizeURL) + "\n\n")
			if m.waiting {
				b.WriteString(statusStyle.Render("Waiting for the GitHub redirect...") + "\n\n")
			} else if m.login != nil {
				b.WriteString(statusStyle.Render("Press enter to wait for the redirect.") + "\n\n")
			}
		}
	case session.Authenticating:
		if snap.Alert != "" {
			b.WriteString(statusStyle.Render("Press l to start over.") + "\n\n")
		}
	default:
		b.WriteString(m.renderDashboard(snap))
	}

	if m.err != nil && snap.Alert == "" {
		b.WriteString(errorStyle.Render(m.err.Error()) + "\n\n")
	}

	b.WriteString(footerStyle.Render("r refresh  •  l logout  •  q quit"))
	return borderStyle.Render(b.String())
}

func (m Model) renderDashboard(snap session.Snapshot) string {
	var b strings.Builder
	view := dashboard.Build(snap.Viewer, snap.Owner, snap.Repository, m.now())

	if view.Viewer != nil {
		b.WriteString(fmt.Sprintf("Signed in as %s\n", view.Viewer.DisplayName()))
	}
	if snap.State == session.NoRepository {
		b.WriteString("\nNo repository selected. Run `dashboard select <Organization|User> <owner> <repository>`.\n\n")
		return b.String()
	}
	if snap.Selector != nil {
		owner := snap.Selector.Owner
		if view.Owner != nil {
			owner = view.Owner.DisplayName()
		}
		b.WriteString(fmt.Sprintf("%s  %s\n\n", titleStyle.Render(snap.Selector.String()), statusStyle.Render(owner)))
	}
	if !view.Ready() {
		return b.String()
	}

	if view.Description != "" {
		b.WriteString(view.Description + "\n\n")
	}
	b.WriteString(renderCards(view.Cards) + "\n\n")

	chartWidth := max(30, min(m.width-8, 100))
	b.WriteString(issuesStyle.Render(fmt.Sprintf("Issues  %d open", view.OpenIssues)) + "\n")
	b.WriteString(issuesStyle.Render(Chart(view.Series.Issues, chartWidth, 6)) + "\n\n")
	b.WriteString(pullsStyle.Render(fmt.Sprintf("Pull Requests  %d open", view.OpenPullRequests)) + "\n")
	b.WriteString(pullsStyle.Render(Chart(view.Series.PullRequests, chartWidth, 6)) + "\n\n")
	return b.String()
}

func renderCards(cards []dashboard.Card) string {
	rendered := make([]string, 0, len(cards))
	for _, c := range cards {
		rendered = append(rendered, cardStyle.Render(cardTitleStyle.Render(c.Title)+"\n"+cardValueStyle.Render(c.Value)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// Run starts the program on the terminal and blocks until the user quits.
func Run(ctx context.Context, s Session, callback oauth2.Callback, login LoginFunc) error {
	_, err := tea.NewProgram(New(ctx, s, callback, login), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
