package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/naveenspark/moneta/pkg/client"
	"github.com/naveenspark/moneta/pkg/domain"
)

// editState is the state machine shared by the list screens.
type editState int

const (
	stateNormal   editState = iota
	stateAdding             // add or edit form open
	stateDeleting           // delete confirmation
	stateFiltering          // filter form open
)

// -- messages --

type transactionsLoadedMsg struct {
	transactions []domain.Transaction
	types        []domain.Type
	categories   []domain.Category
	err          error
}

type transactionSavedMsg struct {
	tx     *domain.Transaction
	edited bool
	err    error
}

type transactionDeletedMsg struct {
	id  int
	err error
}

type copyResultMsg struct{ err error }

// -- model --

type transactionsModel struct {
	client       *client.Client
	transactions []domain.Transaction
	types        []domain.Type
	categories   []domain.Category
	filter       domain.TransactionFilters
	cursor       int
	state        editState
	form         formModel
	editID       int // transaction the form updates; 0 adds
	loading      bool
	err          error
	statusMsg    string
	width        int
	height       int
}

func newTransactionsModel(c *client.Client) transactionsModel {
	return transactionsModel{client: c}
}

func (m transactionsModel) Init() tea.Cmd {
	return m.load()
}

func (m transactionsModel) filters() domain.TransactionFilters {
	return m.filter
}

// load fetches transactions, types and categories concurrently.
func (m transactionsModel) load() tea.Cmd {
	c := m.client
	filters := m.filters()
	return func() tea.Msg {
		var msg transactionsLoadedMsg
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			var err error
			msg.transactions, err = c.ListTransactions(ctx, filters)
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
		msg.err = g.Wait()
		return msg
	}
}

func (m transactionsModel) editing() bool {
	return m.state != stateNormal
}

func (m transactionsModel) Update(msg tea.Msg) (transactionsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case transactionsLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.transactions = msg.transactions
			m.types = msg.types
			m.categories = msg.categories
			if m.cursor >= len(m.transactions) {
				m.cursor = max(len(m.transactions)-1, 0)
			}
		}

	case transactionSavedMsg:
		if msg.err != nil {
			m.form = m.form.fail(firstProblem(msg.err))
			return m, nil
		}
		m.state = stateNormal
		m.statusMsg = "transaction added"
		if msg.edited {
			m.statusMsg = "transaction updated"
		}
		m.loading = true
		return m, m.load()

	case transactionDeletedMsg:
		m.state = stateNormal
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("delete failed: %v", msg.err)
			return m, nil
		}
		for i, tx := range m.transactions {
			if tx.ID == msg.id {
				m.transactions = append(m.transactions[:i], m.transactions[i+1:]...)
				break
			}
		}
		if m.cursor >= len(m.transactions) && m.cursor > 0 {
			m.cursor = len(m.transactions) - 1
		}
		m.statusMsg = "transaction deleted"

	case copyResultMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("copy failed: %v", msg.err)
		} else {
			m.statusMsg = "copied!"
		}

	case tea.KeyMsg:
		m.statusMsg = ""
		return m.handleKey(msg)
	}
	return m, nil
}

func (m transactionsModel) handleKey(msg tea.KeyMsg) (transactionsModel, tea.Cmd) {
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
		f, err := transactionFiltersFromForm(m.form, m.types, m.categories)
		if err != nil {
			m.form.status = err.Error()
			return m, nil
		}
		return m.applyFilter(f)
	case stateDeleting:
		switch msg.String() {
		case "y":
			if m.cursor < len(m.transactions) {
				id := m.transactions[m.cursor].ID
				c := m.client
				return m, func() tea.Msg {
					return transactionDeletedMsg{id: id, err: c.DeleteTransaction(context.Background(), id)}
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
		if m.cursor < len(m.transactions)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "t":
		next := (firstTypeChoice(m.types, m.filter.TypeIDs) + 1) % (len(m.types) + 1)
		f := m.filter
		f.TypeIDs = idsAt(next, func(i int) int { return m.types[i].ID }, len(m.types))
		return m.applyFilter(f)
	case "f":
		m.form = transactionFilterForm(m.types, m.categories, m.filter)
		m.state = stateFiltering
	case "x":
		return m.applyFilter(domain.TransactionFilters{})
	case "a":
		if len(m.types) == 0 {
			m.statusMsg = "no transaction types loaded yet"
			return m, nil
		}
		m.form = m.newForm()
		m.editID = 0
		m.state = stateAdding
	case "e":
		if m.cursor < len(m.transactions) && len(m.types) > 0 {
			tx := m.transactions[m.cursor]
			m.form = m.editForm(tx)
			m.editID = tx.ID
			m.state = stateAdding
		}
	case "d":
		if m.cursor < len(m.transactions) {
			m.state = stateDeleting
		}
	case "c":
		if m.cursor < len(m.transactions) {
			text := m.rowText(m.transactions[m.cursor])
			return m, func() tea.Msg {
				return copyResultMsg{err: clipboard.WriteAll(text)}
			}
		}
	case "r":
		m.loading = true
		return m, m.load()
	}
	return m, nil
}

func (m transactionsModel) newForm() formModel {
	f := newForm("New transaction",
		choiceField("type", typeOptions(m.types)),
		choiceField("category", categoryOptions(m.categories)),
		textField("date", "YYYY-MM-DD"),
		textField("amount", "0.00"),
		textField("comment", "optional"),
	)
	f.fields[2].value = domain.Today().String()
	f.focus = 3
	return f
}

// editForm is the add form pre-filled with tx.
func (m transactionsModel) editForm(tx domain.Transaction) formModel {
	f := m.newForm()
	f.title = "Edit transaction"
	f.fields[0].choice = typeIndex(m.types, tx.TypeID)
	f.fields[1].choice = categoryChoice(m.categories, tx.CategoryID)
	f.fields[2].value = tx.Date.String()
	f.fields[3].value = numberText(&tx.Value)
	f.fields[4].value = tx.CommentText()
	return f
}

func (m transactionsModel) applyFilter(f domain.TransactionFilters) (transactionsModel, tea.Cmd) {
	m.filter = f
	m.state = stateNormal
	m.cursor = 0
	m.loading = true
	return m, m.load()
}

func (m transactionsModel) submit() (transactionsModel, tea.Cmd) {
	date, err := domain.ParseDate(m.form.value("date"))
	if err != nil {
		m.form.status = "date must look like 2025-01-31"
		return m, nil
	}
	amount, err := parseAmount(m.form.value("amount"))
	if err != nil {
		m.form.status = err.Error()
		return m, nil
	}
	in := domain.TransactionInput{
		TypeID:     m.types[m.form.choice("type")].ID,
		CategoryID: categoryAt(m.categories, m.form.choice("category")),
		Date:       date,
		Value:      amount,
	}
	if comment := m.form.value("comment"); comment != "" {
		in.Comment = &comment
	}

	m.form.submitting = true
	c, id := m.client, m.editID
	return m, func() tea.Msg {
		if id != 0 {
			tx, err := c.UpdateTransaction(context.Background(), id, in)
			return transactionSavedMsg{tx: tx, edited: true, err: err}
		}
		tx, err := c.CreateTransaction(context.Background(), in)
		return transactionSavedMsg{tx: tx, err: err}
	}
}

func (m transactionsModel) typeName(id int) string {
	for _, t := range m.types {
		if t.ID == id {
			return string(t.Name)
		}
	}
	return "?"
}

func (m transactionsModel) categoryName(id *int) string {
	if id == nil {
		return ""
	}
	for _, c := range m.categories {
		if c.ID == *id {
			return c.Name
		}
	}
	return fmt.Sprintf("#%d", *id)
}

// rowText is the tab-separated form of a row put on the clipboard.
func (m transactionsModel) rowText(tx domain.Transaction) string {
	return strings.Join([]string{
		tx.Date.String(),
		m.typeName(tx.TypeID),
		m.categoryName(tx.CategoryID),
		fmt.Sprintf("%.2f", tx.Value),
		tx.CommentText(),
	}, "\t")
}

func (m transactionsModel) filterLabel() string {
	return transactionFilterLabel(m.filter, m.types, m.categories)
}

func (m transactionsModel) View() string {
	if m.state == stateAdding || m.state == stateFiltering {
		return m.form.View()
	}

	var b strings.Builder

	s := domain.Summarize(m.transactions, m.types)
	balance := incomeStyle
	if s.Balance < 0 {
		balance = expenseStyle
	}
	fmt.Fprintf(&b, " %s %s   %s %s   %s %s   %s\n\n",
		dimStyle.Render("income"), incomeStyle.Render(formatMoney(s.Income)),
		dimStyle.Render("expenses"), expenseStyle.Render(formatMoney(s.Expenses)),
		dimStyle.Render("balance"), balance.Render(formatMoney(s.Balance)),
		metaStyle.Render("showing "+m.filterLabel()))

	if m.loading && len(m.transactions) == 0 {
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
		return b.String()
	}
	if m.err != nil {
		b.WriteString(" " + errText(m.err) + "\n")
		return b.String()
	}
	if len(m.transactions) == 0 {
		if len(m.filter.Values()) > 0 {
			b.WriteString(" " + dimStyle.Render("no transactions match, press x to clear the filter") + "\n")
			return b.String()
		}
		b.WriteString(" " + dimStyle.Render("no transactions yet, press a to add one") + "\n")
		return b.String()
	}

	header := fmt.Sprintf("   %s %s %s %12s  %s",
		padRight("date", 10), padRight("type", 8), padRight("category", 14), "amount", "comment")
	b.WriteString(sectionHeaderStyle.Render(header) + "\n")

	commentWidth := max(m.width-58, 10)
	for i, tx := range m.transactions {
		cursor := " "
		if i == m.cursor {
			cursor = accentStyle.Render("▸")
		}
		name := m.typeName(tx.TypeID)
		row := fmt.Sprintf(" %s %s %s %s %s  %s",
			cursor,
			normalStyle.Render(padRight(tx.Date.String(), 10)),
			typeStyle(name).Render(padRight(name, 8)),
			dimStyle.Render(padRight(m.categoryName(tx.CategoryID), 14)),
			typeStyle(name).Render(fmt.Sprintf("%12s", formatMoney(tx.Value))),
			metaStyle.Render(truncStr(tx.CommentText(), commentWidth)))
		if i == m.cursor {
			row = selectedRowBg.Render(row)
		}
		b.WriteString(row + "\n")
		if i == m.cursor && m.state == stateDeleting {
			b.WriteString("   " + expenseStyle.Render("delete this transaction?") + " " + dimStyle.Render("y/n") + "\n")
		}
	}

	if m.statusMsg != "" {
		b.WriteString("\n " + accentStyle.Render(m.statusMsg) + "\n")
	}
	return b.String()
}

func (m transactionsModel) helpKeys() string {
	switch m.state {
	case stateAdding, stateFiltering:
		return m.form.helpKeys()
	case stateDeleting:
		return helpBar([2]string{"y", "confirm"}, [2]string{"n", "cancel"})
	}
	return helpBar(
		[2]string{"1-4", "tabs"},
		[2]string{"j/k", "nav"},
		[2]string{"t", "type"},
		[2]string{"f", "filter"},
		[2]string{"x", "clear"},
		[2]string{"a", "add"},
		[2]string{"e", "edit"},
		[2]string{"d", "delete"},
		[2]string{"c", "copy"},
		[2]string{"r", "refresh"},
		[2]string{"q", "quit"},
	)
}
