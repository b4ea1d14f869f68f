package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/pcaldeira/attest/cmd/tui/internal/view"
	"github.com/pcaldeira/attest/internal/config"
	"github.com/pcaldeira/attest/internal/database"
	"github.com/pcaldeira/attest/internal/income"
	incomeStore "github.com/pcaldeira/attest/internal/income/store"
)

type model struct {
	incomeService *income.Service

	currentView View

	sourcesView view.SourcesModel
	reviewView  view.ReviewModel
}

type View int

const (
	ViewMenu    View = 0
	ViewSources View = 1
	ViewReview  View = 2
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	incomeSvc := income.NewService(incomeStore.New(db), income.DefaultPolicy())

	return model{
		incomeService: incomeSvc,
		currentView:   ViewMenu,
		sourcesView:   view.NewSourcesModel(incomeSvc),
		reviewView:    view.NewReviewModel(incomeSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewSources
				m.sourcesView = view.NewSourcesModel(m.incomeService)

				return m, m.sourcesView.Init()
			case "2":
				m.currentView = ViewReview
				m.reviewView = view.NewReviewModel(m.incomeService)

				return m, m.reviewView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewSources:
		var newModel tea.Model
		newModel, cmd = m.sourcesView.Update(msg)
		m.sourcesView = newModel.(view.SourcesModel)
	case ViewReview:
		var newModel tea.Model
		newModel, cmd = m.reviewView.Update(msg)
		m.reviewView = newModel.(view.ReviewModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Attest TUI\n\n" +
				"1. Browse Income Sources\n" +
				"2. Review Queue\n\n" +
				"q. Quit",
		)
	case ViewSources:
		return m.sourcesView.View()
	case ViewReview:
		return m.reviewView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
