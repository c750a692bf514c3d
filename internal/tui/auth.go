package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/moneta/pkg/client"
	"github.com/naveenspark/moneta/pkg/domain"
	"github.com/naveenspark/moneta/pkg/session"
)

// -- messages --

type loggedInMsg struct {
	email string
	err   error
}

type registeredMsg struct {
	user *domain.User
	err  error
}

// navigateMsg asks the App to switch route. notice is shown on the landing
// route.
type navigateMsg struct {
	route  string
	notice string
}

func navigate(route string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{route: route} }
}

func navigateWithNotice(route, notice string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{route: route, notice: notice} }
}

// -- landing --

type landingModel struct {
	notice   string
	loggedIn bool
}

func (m landingModel) Update(msg tea.Msg) (landingModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "l":
			return m, navigate(session.RouteLogin)
		case "r":
			return m, navigate(session.RouteRegister)
		case "enter":
			if m.loggedIn {
				return m, navigate(session.RouteTransactions)
			}
			return m, navigate(session.RouteLogin)
		}
	}
	return m, nil
}

func (m landingModel) View() string {
	var b strings.Builder
	b.WriteString("\n " + normalStyle.Render("Track what comes in, what goes out, and what you are saving for.") + "\n\n")
	if m.notice != "" {
		b.WriteString(" " + noticeStyle.Render(m.notice) + "\n\n")
	}
	if m.loggedIn {
		b.WriteString(" " + accentStyle.Render("enter") + dimStyle.Render(" continue") + "\n")
	}
	b.WriteString(" " + accentStyle.Render("l") + dimStyle.Render(" log in") + "\n")
	b.WriteString(" " + accentStyle.Render("r") + dimStyle.Render(" create an account") + "\n")
	return b.String()
}

func (m landingModel) helpKeys() string {
	return helpBar([2]string{"l", "login"}, [2]string{"r", "register"}, [2]string{"q", "quit"})
}

// -- login --

type loginModel struct {
	client *client.Client
	form   formModel
}

func newLoginModel(c *client.Client, email string) loginModel {
	f := newForm("Log in", textField("email", "you@example.com"), secretField("password"))
	f.fields[0].value = email
	if email != "" {
		f.focus = 1
	}
	return loginModel{client: c, form: f}
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loggedInMsg:
		if msg.err != nil {
			m.form = m.form.fail(loginFailure(msg.err))
			return m, nil
		}
		m.form.submitting = false
		return m, navigate(session.RouteTransactions)

	case tea.KeyMsg:
		var submit bool
		m.form, submit = m.form.update(msg)
		if submit {
			return m.submit()
		}
	}
	return m, nil
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	email := m.form.value("email")
	password := m.form.value("password")
	if email == "" || password == "" {
		m.form.status = "email and password are required"
		return m, nil
	}
	m.form.submitting = true
	c := m.client
	return m, func() tea.Msg {
		_, err := c.Login(context.Background(), email, password)
		return loggedInMsg{email: email, err: err}
	}
}

func loginFailure(err error) string {
	if client.IsStatus(err, 401) {
		return "incorrect email or password"
	}
	return err.Error()
}

func (m loginModel) View() string { return m.form.View() }

// -- register --

type registerModel struct {
	client *client.Client
	form   formModel
}

func newRegisterModel(c *client.Client) registerModel {
	return registerModel{
		client: c,
		form: newForm("Create an account",
			textField("email", "you@example.com"),
			secretField("password"),
			secretField("confirm"),
		),
	}
}

func (m registerModel) Update(msg tea.Msg) (registerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case registeredMsg:
		if msg.err != nil {
			m.form = m.form.fail(msg.err.Error())
			return m, nil
		}
		m.form.submitting = false
		return m, navigate(session.RouteRegisterSuccess)

	case tea.KeyMsg:
		var submit bool
		m.form, submit = m.form.update(msg)
		if submit {
			return m.submit()
		}
	}
	return m, nil
}

func (m registerModel) submit() (registerModel, tea.Cmd) {
	creds := domain.Credentials{Email: m.form.value("email"), Password: m.form.value("password")}
	if err := domain.Validate(creds); err != nil {
		m.form.status = firstProblem(err)
		return m, nil
	}
	if creds.Password != m.form.value("confirm") {
		m.form.status = "passwords do not match"
		return m, nil
	}
	m.form.submitting = true
	c := m.client
	return m, func() tea.Msg {
		u, err := c.Register(context.Background(), creds)
		return registeredMsg{user: u, err: err}
	}
}

func (m registerModel) View() string { return m.form.View() }

// -- register success --

type registerSuccessModel struct {
	email string
}

func (m registerSuccessModel) Update(msg tea.Msg) (registerSuccessModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		return m, navigate(session.RouteLogin)
	}
	return m, nil
}

func (m registerSuccessModel) View() string {
	return fmt.Sprintf("\n %s\n\n %s\n",
		incomeStyle.Render("Account created for "+m.email+"."),
		dimStyle.Render("press enter to log in"))
}
