package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/naveenspark/moneta/pkg/client"
	"github.com/naveenspark/moneta/pkg/domain"
)

// maxProgressLoads bounds concurrent progress queries.
const maxProgressLoads = 4

// -- messages --

type goalsLoadedMsg struct {
	goals      []domain.Goal
	progress   map[int]domain.GoalProgress
	types      []domain.Type
	categories []domain.Category
	err        error
}

type goalSavedMsg struct {
	goal   *domain.Goal
	edited bool
	err    error
}

type goalDeletedMsg struct {
	id  int
	err error
}

// -- model --

type goalsModel struct {
	client     *client.Client
	goals      []domain.Goal
	progress   map[int]domain.GoalProgress
	types      []domain.Type
	categories []domain.Category
	filter     domain.GoalFilters
	cursor     int
	state      editState
	form       formModel
	editID     int // goal the form updates; 0 adds
	loading    bool
	err        error
	statusMsg  string
	width      int
	height     int
}

func newGoalsModel(c *client.Client) goalsModel {
	return goalsModel{client: c}
}

func (m goalsModel) Init() tea.Cmd {
	return m.load()
}

// load fetches goals, types and categories, then each goal's progress, all
// concurrently.
func (m goalsModel) load() tea.Cmd {
	c, filter := m.client, m.filter
	return func() tea.Msg {
		var msg goalsLoadedMsg
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			var err error
			msg.goals, err = c.ListGoals(ctx, filter)
			return err
		})
		g.Go(func() error {
			var err error
			msg.types, err = c.ListTypes(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			msg.categories, err = c.ListCategories(ctx)
			return err
		})
		if msg.err = g.Wait(); msg.err != nil {
			return msg
		}

		progress := make([]domain.GoalProgress, len(msg.goals))
		g, ctx = errgroup.WithContext(context.Background())
		g.SetLimit(maxProgressLoads)
		for i, goal := range msg.goals {
			g.Go(func() error {
				p, err := c.GoalProgress(ctx, goal)
				progress[i] = p
				return err
			})
		}
		msg.err = g.Wait()

		msg.progress = make(map[int]domain.GoalProgress, len(msg.goals))
		for i, goal := range msg.goals {
			msg.progress[goal.ID] = progress[i]
		}
		return msg
	}
}

func (m goalsModel) editing() bool {
	return m.state != stateNormal
}

func (m goalsModel) Update(msg tea.Msg) (goalsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case goalsLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.goals = msg.goals
			m.progress = msg.progress
			m.types = msg.types
			m.categories = msg.categories
			if m.cursor >= len(m.goals) {
				m.cursor = max(len(m.goals)-1, 0)
			}
		}

	case goalSavedMsg:
		if msg.err != nil {
			m.form = m.form.fail(firstProblem(msg.err))
			return m, nil
		}
		m.state = stateNormal
		m.statusMsg = "goal added"
		if msg.edited {
			m.statusMsg = "goal updated"
		}
		m.loading = true
		return m, m.load()

	case goalDeletedMsg:
		m.state = stateNormal
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("delete failed: %v", msg.err)
			return m, nil
		}
		for i, g := range m.goals {
			if g.ID == msg.id {
				m.goals = append(m.goals[:i], m.goals[i+1:]...)
				break
			}
		}
		delete(m.progress, msg.id)
		if m.cursor >= len(m.goals) && m.cursor > 0 {
			m.cursor = len(m.goals) - 1
		}
		m.statusMsg = "goal deleted"

	case tea.KeyMsg:
		m.statusMsg = ""
		return m.handleKey(msg)
	}
	return m, nil
}

func (m goalsModel) handleKey(msg tea.KeyMsg) (goalsModel, tea.Cmd) {
	switch m.state {
	case stateAdding:
		if msg.String() == "esc" {
			m.state = stateNormal
			return m, nil
		}
		var submit bool
		m.form, submit = m.form.update(msg)
		if submit {
			return m.submit()
		}
		return m, nil
	case stateFiltering:
		if msg.String() == "esc" {
			m.state = stateNormal
			return m, nil
		}
		var submit bool
		m.form, submit = m.form.update(msg)
		if !submit {
			return m, nil
		}
		f, err := goalFiltersFromForm(m.form, m.types, m.categories)
		if err != nil {
			m.form.status = err.Error()
			return m, nil
		}
		return m.applyFilter(f)
	case stateDeleting:
		switch msg.String() {
		case "y":
			if m.cursor < len(m.goals) {
				id := m.goals[m.cursor].ID
				c := m.client
				return m, func() tea.Msg {
					return goalDeletedMsg{id: id, err: c.DeleteGoal(context.Background(), id)}
				}
			}
			m.state = stateNormal
		case "n", "esc":
			m.state = stateNormal
		}
		return m, nil
	}

	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.goals)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "a":
		if len(m.types) == 0 {
			m.statusMsg = "no transaction types loaded yet"
			return m, nil
		}
		m.form = m.newForm()
		m.form.fields[3].value = domain.Today().String()
		m.editID = 0
		m.state = stateAdding
	case "e":
		if m.cursor < len(m.goals) && len(m.types) > 0 {
			g := m.goals[m.cursor]
			m.form = m.editForm(g)
			m.editID = g.ID
			m.state = stateAdding
		}
	case "f":
		m.form = goalFilterForm(m.types, m.categories, m.filter)
		m.state = stateFiltering
	case "x":
		return m.applyFilter(domain.GoalFilters{})
	case "d":
		if m.cursor < len(m.goals) {
			m.state = stateDeleting
		}
	case "r":
		m.loading = true
		return m, m.load()
	}
	return m, nil
}

func (m goalsModel) newForm() formModel {
	return newForm("New goal",
		textField("name", "holiday fund"),
		choiceField("type", typeOptions(m.types)),
		choiceField("category", categoryOptions(m.categories)),
		textField("start", "YYYY-MM-DD"),
		textField("end", "YYYY-MM-DD"),
		textField("target", "0.00"),
	)
}

func (m goalsModel) editForm(g domain.Goal) formModel {
	f := m.newForm()
	f.title = "Edit goal"
	f.fields[0].value = g.Name
	f.fields[1].choice = typeIndex(m.types, g.TypeID)
	f.fields[2].choice = categoryChoice(m.categories, g.CategoryID)
	f.fields[3].value = g.StartDate.String()
	f.fields[4].value = g.EndDate.String()
	f.fields[5].value = numberText(&g.TargetValue)
	return f
}

func (m goalsModel) applyFilter(f domain.GoalFilters) (goalsModel, tea.Cmd) {
	m.filter = f
	m.state = stateNormal
	m.cursor = 0
	m.loading = true
	return m, m.load()
}

func (m goalsModel) submit() (goalsModel, tea.Cmd) {
	start, err := domain.ParseDate(m.form.value("start"))
	if err != nil {
		m.form.status = "start must look like 2025-01-31"
		return m, nil
	}
	end, err := domain.ParseDate(m.form.value("end"))
	if err != nil {
		m.form.status = "end must look like 2025-12-31"
		return m, nil
	}
	target, err := parseAmount(m.form.value("target"))
	if err != nil {
		m.form.status = err.Error()
		return m, nil
	}
	in := domain.GoalInput{
		TypeID:      m.types[m.form.choice("type")].ID,
		CategoryID:  categoryAt(m.categories, m.form.choice("category")),
		Name:        m.form.value("name"),
		StartDate:   start,
		EndDate:     end,
		TargetValue: target,
	}
	if err := domain.Validate(in); err != nil {
		m.form.status = firstProblem(err)
		return m, nil
	}

	m.form.submitting = true
	c, id := m.client, m.editID
	return m, func() tea.Msg {
		if id != 0 {
			g, err := c.UpdateGoal(context.Background(), id, in)
			return goalSavedMsg{goal: g, edited: true, err: err}
		}
		g, err := c.CreateGoal(context.Background(), in)
		return goalSavedMsg{goal: g, err: err}
	}
}

func (m goalsModel) typeName(id int) string {
	for _, t := range m.types {
		if t.ID == id {
			return string(t.Name)
		}
	}
	return "?"
}

func (m goalsModel) View() string {
	if m.state == stateAdding || m.state == stateFiltering {
		return m.form.View()
	}

	var b strings.Builder
	if label := goalFilterLabel(m.filter, m.types, m.categories); label != "all" {
		b.WriteString(" " + metaStyle.Render("showing "+label) + "\n\n")
	}
	if m.loading && len(m.goals) == 0 {
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
		return b.String()
	}
	if m.err != nil {
		b.WriteString(" " + errText(m.err) + "\n")
		return b.String()
	}
	if len(m.goals) == 0 {
		if len(m.filter.Values()) > 0 {
			b.WriteString(" " + dimStyle.Render("no goals match, press x to clear the filter") + "\n")
			return b.String()
		}
		b.WriteString(" " + dimStyle.Render("no goals yet, press a to set one") + "\n")
		return b.String()
	}

	categories := domain.CategoryNames(m.categories)
	barWidth := min(max(m.width-30, 10), 40)
	for i, g := range m.goals {
		cursor := " "
		nameStyle := normalStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸")
			nameStyle = selectedStyle
		}
		scope := m.typeName(g.TypeID)
		if g.CategoryID != nil {
			scope += " · " + categories[*g.CategoryID]
		}
		fmt.Fprintf(&b, " %s %s  %s\n", cursor, nameStyle.Render(g.Name), typeStyle(m.typeName(g.TypeID)).Render(scope))
		fmt.Fprintf(&b, "   %s\n", metaStyle.Render(g.StartDate.String()+" → "+g.EndDate.String()))

		p := m.progress[g.ID]
		status := fmt.Sprintf("%s / %s  %.0f%%", formatMoney(p.Current), formatMoney(g.TargetValue), p.Percent)
		if p.Reached {
			status += "  " + incomeStyle.Render("reached")
		}
		fmt.Fprintf(&b, "   %s  %s\n", progressBar(p.Percent, barWidth), dimStyle.Render(status))
		if i == m.cursor && m.state == stateDeleting {
			b.WriteString("   " + expenseStyle.Render("delete this goal?") + " " + dimStyle.Render("y/n") + "\n")
		}
		b.WriteString("\n")
	}

	if m.statusMsg != "" {
		b.WriteString(" " + accentStyle.Render(m.statusMsg) + "\n")
	}
	return b.String()
}

func (m goalsModel) helpKeys() string {
	switch m.state {
	case stateAdding, stateFiltering:
		return m.form.helpKeys()
	case stateDeleting:
		return helpBar([2]string{"y", "confirm"}, [2]string{"n", "cancel"})
	}
	return helpBar(
		[2]string{"1-4", "tabs"},
		[2]string{"j/k", "nav"},
		[2]string{"a", "add"},
		[2]string{"e", "edit"},
		[2]string{"f", "filter"},
		[2]string{"x", "clear"},
		[2]string{"d", "delete"},
		[2]string{"r", "refresh"},
		[2]string{"q", "quit"},
	)
}
