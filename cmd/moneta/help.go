package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	figure "github.com/common-nighthawk/go-figure"

	"github.com/naveenspark/moneta/pkg/domain"
)

var (
	gold      = lipgloss.Color("#f5c542")
	dimColor  = lipgloss.Color("245")
	incomeFg  = lipgloss.Color("#4ade80")
	expenseFg = lipgloss.Color("#f87171")
)

func banner() string {
	return figure.NewFigure("moneta", "cybermedium", true).String()
}

func printHelp(w io.Writer) {
	title := lipgloss.NewStyle().
		Foreground(gold).
		Bold(true).
		Render(strings.TrimRight(banner(), "\n"))

	tagline := lipgloss.NewStyle().
		Foreground(dimColor).
		Italic(true).
		Render("Track what comes in, what goes out, and what you are saving for.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(dimColor)
	commands := []struct{ cmd, desc string }{
		{"moneta", "Open the interactive TUI"},
		{"moneta login [email]", "Log in with email and password"},
		{"moneta register [email]", "Create an account"},
		{"moneta logout", "End your session"},
		{"moneta status", "Show who you are logged in as"},
		{"moneta summary [from] [to]", "Print income, expenses and balance"},
		{"moneta docs", "Open the API docs in your browser"},
		{"moneta --version", "Show version"},
		{"moneta help", "You are here"},
	}

	fmt.Fprintf(w, "\n%s\n\n  %s\n\n  Commands:\n", title, tagline)
	for _, c := range commands {
		fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-28s", c.cmd)), descStyle.Render(c.desc))
	}

	env := []struct{ name, desc string }{
		{"MONETA_API_URL", "API root (default http://localhost:8000)"},
		{"MONETA_HOME", "Session and log directory (default ~/.moneta)"},
		{"MONETA_TOKEN", "Use this access token instead of the saved one"},
		{"MONETA_TIMEOUT", "Request timeout, e.g. 10s"},
		{"MONETA_LOG_LEVEL", "debug, info, warn or error"},
	}
	fmt.Fprintf(w, "\n  Environment:\n")
	for _, e := range env {
		fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-28s", e.name)), descStyle.Render(e.desc))
	}
	fmt.Fprintln(w)
}

func printSummary(w io.Writer, s domain.Summary) {
	label := lipgloss.NewStyle().Foreground(dimColor)
	income := lipgloss.NewStyle().Foreground(incomeFg).Bold(true)
	expense := lipgloss.NewStyle().Foreground(expenseFg).Bold(true)
	balance := income
	if s.Balance < 0 {
		balance = expense
	}

	fmt.Fprintf(w, "%s %s\n", label.Render(fmt.Sprintf("%-10s", "Income")), income.Render(fmt.Sprintf("%12.2f", s.Income)))
	fmt.Fprintf(w, "%s %s\n", label.Render(fmt.Sprintf("%-10s", "Expenses")), expense.Render(fmt.Sprintf("%12.2f", s.Expenses)))
	fmt.Fprintf(w, "%s %s\n", label.Render(fmt.Sprintf("%-10s", "Balance")), balance.Render(fmt.Sprintf("%12.2f", s.Balance)))
}
