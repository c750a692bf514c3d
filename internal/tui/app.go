package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/moneta/internal/browser"
	"github.com/naveenspark/moneta/pkg/client"
	"github.com/naveenspark/moneta/pkg/domain"
	"github.com/naveenspark/moneta/pkg/session"
)

// RedirectMsg is sent to the program when the session guard redirects after
// an unrecoverable session loss. Wire it with Router.OnRedirect and
// Program.Send.
type RedirectMsg struct {
	Route string
}

// meLoadedMsg carries the result of GetMe.
type meLoadedMsg struct {
	me  *domain.User
	err error
}

const sessionLostNotice = "your session has expired, please log in again"

// App is the root Bubbletea model. Its current route mirrors the router the
// session guard reads.
type App struct {
	client          *client.Client
	router          *session.Router
	route           string
	landing         landingModel
	login           loginModel
	register        registerModel
	registerSuccess registerSuccessModel
	transactions    transactionsModel
	goals           goalsModel
	categories      categoriesModel
	settings        settingsModel
	me              *domain.User
	helpOpen        bool
	helpCursor      int
	width           int
	height          int
	frame           int // logo shimmer animation frame
}

// NewApp creates a new TUI application. A nil router gets a private one.
func NewApp(c *client.Client, router *session.Router) App {
	if router == nil {
		router = session.NewRouter(session.RouteLanding)
	}
	a := App{
		client:       c,
		router:       router,
		login:        newLoginModel(c, ""),
		register:     newRegisterModel(c),
		transactions: newTransactionsModel(c),
		goals:        newGoalsModel(c),
		categories:   newCategoriesModel(c),
		settings:     newSettingsModel(c),
	}
	a.route = session.RouteLanding
	if a.hasSession() {
		a.route = session.RouteTransactions
	}
	a.landing.loggedIn = a.hasSession()
	a.router.Navigate(a.route)
	return a
}

func (a App) hasSession() bool {
	return a.client != nil && a.client.Guard() != nil && a.client.Guard().Token() != ""
}

func (a App) Init() tea.Cmd {
	if session.IsPublic(a.route) {
		return shimmerTickCmd()
	}
	return tea.Batch(shimmerTickCmd(), a.loadMe(), a.transactions.Init())
}

func (a App) loadMe() tea.Cmd {
	c := a.client
	return func() tea.Msg {
		me, err := c.GetMe(context.Background())
		return meLoadedMsg{me: me, err: err}
	}
}

// switchTo moves to route and starts its loads.
func (a App) switchTo(route, notice string) (App, tea.Cmd) {
	if !session.IsPublic(route) && !a.hasSession() {
		route, notice = session.RouteLanding, "log in to continue"
	}
	a.route = route
	a.router.Navigate(route)
	a.helpOpen = false

	var cmds []tea.Cmd
	switch route {
	case session.RouteLanding:
		a.landing.notice = notice
		a.landing.loggedIn = a.hasSession()
	case session.RouteLogin:
		a.login = newLoginModel(a.client, a.registerSuccess.email)
	case session.RouteRegister:
		a.register = newRegisterModel(a.client)
	case session.RouteTransactions:
		a.transactions.loading = true
		cmds = append(cmds, a.transactions.Init())
	case session.RouteGoals:
		a.goals.loading = true
		cmds = append(cmds, a.goals.Init())
	case session.RouteCategories:
		a.categories.loading = true
		cmds = append(cmds, a.categories.Init())
	}
	if !session.IsPublic(route) && a.me == nil {
		cmds = append(cmds, a.loadMe())
	}
	return a, tea.Batch(cmds...)
}

// resetSession drops everything loaded for the previous user.
func (a App) resetSession() App {
	a.me = nil
	a.transactions = newTransactionsModel(a.client)
	a.goals = newGoalsModel(a.client)
	a.categories = newCategoriesModel(a.client)
	a.settings = newSettingsModel(a.client)
	return a
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + help(1) = 4 lines
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 4}
		a.transactions, _ = a.transactions.Update(bodyMsg)
		a.goals, _ = a.goals.Update(bodyMsg)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case RedirectMsg:
		a = a.resetSession()
		return a.switchTo(msg.Route, sessionLostNotice)

	case navigateMsg:
		if msg.route == session.RouteLanding && msg.notice != "" {
			a = a.resetSession()
		}
		return a.switchTo(msg.route, msg.notice)

	case meLoadedMsg:
		if msg.err == nil && msg.me != nil {
			a.me = msg.me
		}
		a.settings, _ = a.settings.Update(msg)
		return a, nil

	case loggedInMsg:
		if msg.err == nil {
			a = a.resetSession()
		}

	case registeredMsg:
		if msg.err == nil && msg.user != nil {
			a.registerSuccess.email = msg.user.Email
		}

	case tea.KeyMsg:
		if a.helpOpen {
			return a.updateHelp(msg)
		}
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.isEditing() {
			if model, cmd, ok := a.globalKey(msg); ok {
				return model, cmd
			}
		} else if msg.String() == "esc" && (a.route == session.RouteLogin || a.route == session.RouteRegister) {
			return a.switchTo(session.RouteLanding, "")
		}
	}

	return a.updateRoute(msg)
}

func (a App) globalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	protected := !session.IsPublic(a.route)
	switch msg.String() {
	case "q":
		return a, tea.Quit, true
	case "h":
		a.helpOpen = true
		a.helpCursor = 0
		return a, nil, true
	case "esc":
		if a.route == session.RouteRegisterSuccess {
			m, cmd := a.switchTo(session.RouteLanding, "")
			return m, cmd, true
		}
	case "1", "2", "3", "4":
		if protected {
			route := tabs[msg.String()[0]-'1'].route
			if route == a.route {
				return a, nil, true
			}
			m, cmd := a.switchTo(route, "")
			return m, cmd, true
		}
	}
	return a, nil, false
}

// updateRoute forwards msg to the model of the current route. Result
// messages are routed by type so a late reply still reaches its screen.
func (a App) updateRoute(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.(type) {
	case transactionsLoadedMsg, transactionSavedMsg, transactionDeletedMsg, copyResultMsg:
		a.transactions, cmd = a.transactions.Update(msg)
		return a, cmd
	case goalsLoadedMsg, goalSavedMsg, goalDeletedMsg:
		a.goals, cmd = a.goals.Update(msg)
		return a, cmd
	case categoriesLoadedMsg, categorySavedMsg, categoryDeletedMsg:
		a.categories, cmd = a.categories.Update(msg)
		return a, cmd
	case passwordChangedMsg, accountDeletedMsg, loggedOutMsg:
		a.settings, cmd = a.settings.Update(msg)
		return a, cmd
	case loggedInMsg:
		a.login, cmd = a.login.Update(msg)
		return a, cmd
	case registeredMsg:
		a.register, cmd = a.register.Update(msg)
		return a, cmd
	}

	switch a.route {
	case session.RouteLanding:
		a.landing, cmd = a.landing.Update(msg)
	case session.RouteLogin:
		a.login, cmd = a.login.Update(msg)
	case session.RouteRegister:
		a.register, cmd = a.register.Update(msg)
	case session.RouteRegisterSuccess:
		a.registerSuccess, cmd = a.registerSuccess.Update(msg)
	case session.RouteTransactions:
		a.transactions, cmd = a.transactions.Update(msg)
	case session.RouteGoals:
		a.goals, cmd = a.goals.Update(msg)
	case session.RouteCategories:
		a.categories, cmd = a.categories.Update(msg)
	case session.RouteSettings:
		a.settings, cmd = a.settings.Update(msg)
	}
	return a, cmd
}

func (a App) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := a.helpItems()
	switch msg.String() {
	case "h", "esc":
		a.helpOpen = false
	case "q", "ctrl+c":
		return a, tea.Quit
	case "j", "down":
		if a.helpCursor < len(items)-1 {
			a.helpCursor++
		}
	case "k", "up":
		if a.helpCursor > 0 {
			a.helpCursor--
		}
	case "enter":
		if a.helpCursor < len(items) {
			browser.Open(items[a.helpCursor].url) //nolint:errcheck // best-effort browser open
		}
	}
	return a, nil
}

func (a App) isEditing() bool {
	switch a.route {
	case session.RouteLogin, session.RouteRegister:
		return true
	case session.RouteTransactions:
		return a.transactions.editing()
	case session.RouteGoals:
		return a.goals.editing()
	case session.RouteCategories:
		return a.categories.editing()
	case session.RouteSettings:
		return a.settings.editing()
	}
	return false
}

type tabEntry struct {
	key   string
	name  string
	route string
}

var tabs = []tabEntry{
	{"1", "Transactions", session.RouteTransactions},
	{"2", "Goals", session.RouteGoals},
	{"3", "Categories", session.RouteCategories},
	{"4", "Settings", session.RouteSettings},
}

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)
	header := center(logo, a.width)
	if a.me != nil {
		header += "\n" + center(metaStyle.Render(a.me.Email), a.width)
	} else {
		header += "\n"
	}

	var tabBar string
	if !session.IsPublic(a.route) {
		colWidth := a.width / len(tabs)
		var b strings.Builder
		for _, t := range tabs {
			var label string
			if t.route == a.route {
				label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
			} else {
				label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
			}
			cell := center(label, colWidth)
			b.WriteString(cell + strings.Repeat(" ", max(colWidth-lipgloss.Width(cell), 0)))
		}
		tabBar = b.String()
	}

	var body, help string
	switch a.route {
	case session.RouteLanding:
		body, help = a.landing.View(), a.landing.helpKeys()
	case session.RouteLogin:
		body, help = a.login.View(), a.login.form.helpKeys()
	case session.RouteRegister:
		body, help = a.register.View(), a.register.form.helpKeys()
	case session.RouteRegisterSuccess:
		body, help = a.registerSuccess.View(), helpBar([2]string{"enter", "log in"}, [2]string{"q", "quit"})
	case session.RouteTransactions:
		body, help = a.transactions.View(), a.transactions.helpKeys()
	case session.RouteGoals:
		body, help = a.goals.View(), a.goals.helpKeys()
	case session.RouteCategories:
		body, help = a.categories.View(), a.categories.helpKeys()
	case session.RouteSettings:
		body, help = a.settings.View(), a.settings.helpKeys()
	}

	if a.helpOpen {
		body = helpView(a.helpItems(), a.helpCursor)
		help = helpBar([2]string{"j/k", "nav"}, [2]string{"enter", "open"}, [2]string{"esc", "close"})
	}

	// Chrome budget: header(2) + tabs(1) + help(1) = 4 lines + body
	body = strings.TrimRight(truncateToHeight(body, a.height-4), "\n")
	return fmt.Sprintf("%s\n%s\n%s\n%s", header, tabBar, body, help)
}

// center pads s on the left to center it within width.
func center(s string, width int) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}

// helpItem is a selectable link in the help overlay.
type helpItem struct {
	label string
	url   string
}

func (a App) helpItems() []helpItem {
	if a.client == nil {
		return nil
	}
	base := a.client.BaseURL()
	return []helpItem{
		{"API docs", base + "/docs"},
		{"API reference", base + "/redoc"},
	}
}

// helpView renders the help overlay with a cursor.
func helpView(items []helpItem, cursor int) string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f5c542")).
		Bold(true).
		Render("M O N E T A")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	linkStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f5c542"))

	commands := []struct{ cmd, desc string }{
		{"moneta", "Open the interactive TUI"},
		{"moneta login", "Log in with email and password"},
		{"moneta register", "Create an account"},
		{"moneta logout", "End your session"},
		{"moneta status", "Show who you are logged in as"},
		{"moneta summary", "Print income, expenses and balance"},
		{"moneta docs", "Open the API docs in your browser"},
		{"moneta version", "Show version"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", title)
	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-18s", c.cmd)), descStyle.Render(c.desc))
	}

	if len(items) > 0 {
		fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Links (enter to open)"))
		for i, item := range items {
			label := cmdStyle.Render(fmt.Sprintf("%-18s", item.label))
			prefix := "    "
			if i == cursor {
				label = linkStyle.Render(fmt.Sprintf("%-18s", item.label))
				prefix = "  > "
			}
			fmt.Fprintf(&b, "%s%s  %s\n", prefix, label, descStyle.Render(item.url))
		}
	}
	return b.String()
}
