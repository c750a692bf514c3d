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

// -- messages --

type categoriesLoadedMsg struct {
	categories []domain.Category
	types      []domain.Type
	err        error
}

type categorySavedMsg struct {
	category *domain.Category
	edited   bool
	err      error
}

type categoryDeletedMsg struct {
	id  int
	err error
}

// -- model --

type categoriesModel struct {
	client     *client.Client
	categories []domain.Category
	types      []domain.Type
	cursor     int
	state      editState
	form       formModel
	editID     int // category the form updates; 0 adds
	loading    bool
	err        error
	statusMsg  string
}

func newCategoriesModel(c *client.Client) categoriesModel {
	return categoriesModel{client: c}
}

func (m categoriesModel) Init() tea.Cmd {
	return m.load()
}

func (m categoriesModel) load() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		var msg categoriesLoadedMsg
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			var err error
			msg.categories, err = c.ListCategories(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			msg.types, err = c.ListTypes(ctx)
			return err
		})
		msg.err = g.Wait()
		return msg
	}
}

func (m categoriesModel) editing() bool {
	return m.state != stateNormal
}

func (m categoriesModel) Update(msg tea.Msg) (categoriesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case categoriesLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.categories = msg.categories
			m.types = msg.types
			if m.cursor >= len(m.categories) {
				m.cursor = max(len(m.categories)-1, 0)
			}
		}

	case categorySavedMsg:
		if msg.err != nil {
			m.form = m.form.fail(firstProblem(msg.err))
			return m, nil
		}
		m.state = stateNormal
		if msg.edited {
			for i, c := range m.categories {
				if c.ID == msg.category.ID {
					m.categories[i] = *msg.category
				}
			}
			m.statusMsg = "category updated"
			return m, nil
		}
		m.categories = append(m.categories, *msg.category)
		m.statusMsg = "category added"

	case categoryDeletedMsg:
		m.state = stateNormal
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("delete failed: %v", msg.err)
			return m, nil
		}
		for i, c := range m.categories {
			if c.ID == msg.id {
				m.categories = append(m.categories[:i], m.categories[i+1:]...)
				break
			}
		}
		if m.cursor >= len(m.categories) && m.cursor > 0 {
			m.cursor = len(m.categories) - 1
		}
		m.statusMsg = "category deleted"

	case tea.KeyMsg:
		m.statusMsg = ""
		return m.handleKey(msg)
	}
	return m, nil
}

func (m categoriesModel) handleKey(msg tea.KeyMsg) (categoriesModel, tea.Cmd) {
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
	case stateDeleting:
		switch msg.String() {
		case "y":
			if m.cursor < len(m.categories) {
				id := m.categories[m.cursor].ID
				c := m.client
				return m, func() tea.Msg {
					return categoryDeletedMsg{id: id, err: c.DeleteCategory(context.Background(), id)}
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
		if m.cursor < len(m.categories)-1 {
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
		m.form = m.newForm("New category")
		m.editID = 0
		m.state = stateAdding
	case "e":
		if m.cursor < len(m.categories) && len(m.types) > 0 {
			c := m.categories[m.cursor]
			m.form = m.newForm("Edit category")
			m.form.fields[0].value = c.Name
			m.form.fields[1].choice = typeIndex(m.types, c.TypeID)
			m.editID = c.ID
			m.state = stateAdding
		}
	case "d":
		if m.cursor < len(m.categories) {
			m.state = stateDeleting
		}
	case "r":
		m.loading = true
		return m, m.load()
	}
	return m, nil
}

func (m categoriesModel) newForm(title string) formModel {
	return newForm(title, textField("name", "groceries"), choiceField("type", typeOptions(m.types)))
}

func (m categoriesModel) submit() (categoriesModel, tea.Cmd) {
	in := domain.CategoryInput{
		TypeID: m.types[m.form.choice("type")].ID,
		Name:   m.form.value("name"),
	}
	if err := domain.Validate(in); err != nil {
		m.form.status = firstProblem(err)
		return m, nil
	}
	m.form.submitting = true
	c, id := m.client, m.editID
	return m, func() tea.Msg {
		if id != 0 {
			cat, err := c.UpdateCategory(context.Background(), id, in)
			return categorySavedMsg{category: cat, edited: true, err: err}
		}
		cat, err := c.CreateCategory(context.Background(), in)
		return categorySavedMsg{category: cat, err: err}
	}
}

func (m categoriesModel) View() string {
	if m.state == stateAdding {
		return m.form.View()
	}

	var b strings.Builder
	if m.loading && len(m.categories) == 0 {
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
		return b.String()
	}
	if m.err != nil {
		b.WriteString(" " + errText(m.err) + "\n")
		return b.String()
	}
	if len(m.categories) == 0 {
		b.WriteString(" " + dimStyle.Render("no categories yet, press a to add one") + "\n")
		return b.String()
	}

	types := domain.TypeNames(m.types)
	for i, c := range m.categories {
		cursor := " "
		nameStyle := normalStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸")
			nameStyle = selectedStyle
		}
		name := string(types[c.TypeID])
		fmt.Fprintf(&b, " %s %s %s\n", cursor, nameStyle.Render(padRight(c.Name, 24)), typeStyle(name).Render(name))
		if i == m.cursor && m.state == stateDeleting {
			b.WriteString("   " + expenseStyle.Render("delete this category?") + " " + dimStyle.Render("y/n") + "\n")
		}
	}

	if m.statusMsg != "" {
		b.WriteString("\n " + accentStyle.Render(m.statusMsg) + "\n")
	}
	return b.String()
}

func (m categoriesModel) helpKeys() string {
	switch m.state {
	case stateAdding:
		return m.form.helpKeys()
	case stateDeleting:
		return helpBar([2]string{"y", "confirm"}, [2]string{"n", "cancel"})
	}
	return helpBar(
		[2]string{"1-4", "tabs"},
		[2]string{"j/k", "nav"},
		[2]string{"a", "add"},
		[2]string{"e", "edit"},
		[2]string{"d", "delete"},
		[2]string{"r", "refresh"},
		[2]string{"q", "quit"},
	)
}
