package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/moneta/pkg/client"
	"github.com/naveenspark/moneta/pkg/domain"
	"github.com/naveenspark/moneta/pkg/session"
)

type settingsState int

const (
	settingsNormal settingsState = iota
	settingsPassword
	settingsDeleting
)

// -- messages --

type passwordChangedMsg struct{ err error }

type accountDeletedMsg struct{ err error }

type loggedOutMsg struct{ err error }

// -- model --

type settingsModel struct {
	client    *client.Client
	me        *domain.User
	state     settingsState
	form      formModel
	statusMsg string
	now       func() time.Time
}

func newSettingsModel(c *client.Client) settingsModel {
	return settingsModel{client: c, now: time.Now}
}

func (m settingsModel) editing() bool {
	return m.state != settingsNormal
}

func (m settingsModel) Update(msg tea.Msg) (settingsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case meLoadedMsg:
		if msg.err == nil {
			m.me = msg.me
		}

	case passwordChangedMsg:
		if msg.err != nil {
			m.form = m.form.fail(firstProblem(msg.err))
			return m, nil
		}
		m.state = settingsNormal
		m.statusMsg = "password changed"

	case accountDeletedMsg:
		m.state = settingsNormal
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("delete failed: %v", msg.err)
			return m, nil
		}
		m.me = nil
		return m, navigateWithNotice(session.RouteLanding, "your account has been deleted")

	case loggedOutMsg:
		m.me = nil
		return m, navigateWithNotice(session.RouteLanding, "you have been logged out")

	case tea.KeyMsg:
		m.statusMsg = ""
		return m.handleKey(msg)
	}
	return m, nil
}

func (m settingsModel) handleKey(msg tea.KeyMsg) (settingsModel, tea.Cmd) {
	switch m.state {
	case settingsPassword:
		if msg.String() == "esc" {
			m.state = settingsNormal
			return m, nil
		}
		var submit bool
		m.form, submit = m.form.update(msg)
		if submit {
			return m.submitPassword()
		}
		return m, nil
	case settingsDeleting:
		switch msg.String() {
		case "y":
			if m.me != nil {
				me := *m.me
				c := m.client
				return m, func() tea.Msg {
					return accountDeletedMsg{err: c.DeleteAccount(context.Background(), me)}
				}
			}
			m.state = settingsNormal
		case "n", "esc":
			m.state = settingsNormal
		}
		return m, nil
	}

	switch msg.String() {
	case "p":
		if m.me != nil {
			m.form = newForm("Change password", secretField("new password"), secretField("confirm"))
			m.state = settingsPassword
		}
	case "d":
		if m.me != nil {
			m.state = settingsDeleting
		}
	case "o":
		c := m.client
		return m, func() tea.Msg {
			return loggedOutMsg{err: c.Logout(context.Background())}
		}
	}
	return m, nil
}

func (m settingsModel) submitPassword() (settingsModel, tea.Cmd) {
	password := m.form.value("new password")
	if len([]rune(password)) < 8 {
		m.form.status = "password must be at least 8 characters"
		return m, nil
	}
	if password != m.form.value("confirm") {
		m.form.status = "passwords do not match"
		return m, nil
	}
	m.form.submitting = true
	me := *m.me
	c := m.client
	return m, func() tea.Msg {
		return passwordChangedMsg{err: c.ChangePassword(context.Background(), me, password)}
	}
}

// sessionLine describes the stored access token.
func (m settingsModel) sessionLine() string {
	if m.client == nil || m.client.Guard() == nil {
		return ""
	}
	tok := m.client.Guard().Token()
	if tok == "" {
		return "no session"
	}
	claims, err := domain.ParseClaims(tok)
	if err != nil {
		return "session token is not a JWT"
	}
	if claims.ExpiresAt.IsZero() {
		return "session never expires"
	}
	if claims.Expired(m.now()) {
		return "session expired at " + claims.ExpiresAt.Local().Format("2006-01-02 15:04")
	}
	return "session valid until " + claims.ExpiresAt.Local().Format("2006-01-02 15:04")
}

func (m settingsModel) View() string {
	if m.state == settingsPassword {
		return m.form.View()
	}

	var b strings.Builder
	b.WriteString("\n " + sectionHeaderStyle.Render("Profile") + "\n")
	if m.me == nil {
		b.WriteString("   " + dimStyle.Render("loading...") + "\n")
	} else {
		fmt.Fprintf(&b, "   %s %s\n", dimStyle.Render(padRight("email", 8)), normalStyle.Render(m.me.Email))
		fmt.Fprintf(&b, "   %s %s\n", dimStyle.Render(padRight("user", 8)), normalStyle.Render(fmt.Sprintf("#%d", m.me.ID)))
		fmt.Fprintf(&b, "   %s %s\n", dimStyle.Render(padRight("role", 8)), normalStyle.Render(fmt.Sprintf("#%d", m.me.RoleID)))
	}
	if line := m.sessionLine(); line != "" {
		b.WriteString("   " + metaStyle.Render(line) + "\n")
	}

	b.WriteString("\n " + sectionHeaderStyle.Render("Account") + "\n")
	b.WriteString("   " + accentStyle.Render("p") + dimStyle.Render(" change password") + "\n")
	b.WriteString("   " + accentStyle.Render("o") + dimStyle.Render(" log out") + "\n")
	b.WriteString("   " + expenseStyle.Render("d") + dimStyle.Render(" delete account") + "\n")

	if m.state == settingsDeleting {
		b.WriteString("\n   " + expenseStyle.Render("delete your account and all its data?") + " " + dimStyle.Render("y/n") + "\n")
	}
	if m.statusMsg != "" {
		b.WriteString("\n " + accentStyle.Render(m.statusMsg) + "\n")
	}
	return b.String()
}

func (m settingsModel) helpKeys() string {
	switch m.state {
	case settingsPassword:
		return m.form.helpKeys()
	case settingsDeleting:
		return helpBar([2]string{"y", "confirm"}, [2]string{"n", "cancel"})
	}
	return helpBar(
		[2]string{"1-4", "tabs"},
		[2]string{"p", "password"},
		[2]string{"o", "logout"},
		[2]string{"d", "delete"},
		[2]string{"q", "quit"},
	)
}
