package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/pcaldeira/attest/internal/income"
)

type sourcesState int

const (
	sourcesStateCaseInput sourcesState = iota
	sourcesStateBrowse
	sourcesStateOverride
)

// SourcesModel browses a case's reconciled income sources and lets the
// reviewer override a figure in place.
type SourcesModel struct {
	CommonModel
	svc *income.Service

	state sourcesState
	table table.Model
	form  *huh.Form

	caseInput textinput.Model
	caseID    uuid.UUID

	sources []*income.ReconciledSource
	summary *income.CaseSummary

	loading bool
	err     error
	status  string

	// Form bindings
	formAmount string
	formNote   string
}

func NewSourcesModel(svc *income.Service) SourcesModel {
	ci := textinput.New()
	ci.Placeholder = "case UUID"
	ci.Width = 40
	ci.Prompt = "Case ID: "
	ci.Focus()

	columns := []table.Column{
		{Title: "Year", Width: 6},
		{Title: "Employer", Width: 28},
		{Title: "Status", Width: 14},
		{Title: "Annual Gross", Width: 14},
		{Title: "Monthly", Width: 12},
		{Title: "Conf", Width: 6},
		{Title: "Determination", Width: 22},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return SourcesModel{
		svc:       svc,
		caseInput: ci,
		table:     t,
		state:     sourcesStateCaseInput,
	}
}

func (m SourcesModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m SourcesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadSourcesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.sources = msg.sources
		m.summary = msg.summary
		m.state = sourcesStateBrowse
		m.refreshTable()

		return m, nil

	case overrideSavedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving override: %v", msg.err)
		} else {
			m.status = "Override saved"
		}

		m.state = sourcesStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadSourcesCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 12)
		return m, nil
	}

	switch m.state {
	case sourcesStateCaseInput:
		return m.updateCaseInput(msg)
	case sourcesStateBrowse:
		return m.updateBrowse(msg)
	case sourcesStateOverride:
		return m.updateOverride(msg)
	}

	return m, nil
}

func (m SourcesModel) updateCaseInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			return m, Back
		case tea.KeyEnter:
			id, err := uuid.Parse(strings.TrimSpace(m.caseInput.Value()))
			if err != nil {
				m.status = "Invalid case ID"
				return m, nil
			}

			m.caseID = id
			m.loading = true
			m.status = ""

			return m, m.loadSourcesCmd()
		}
	}

	var cmd tea.Cmd
	m.caseInput, cmd = m.caseInput.Update(msg)

	return m, cmd
}

func (m SourcesModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.reconcileCmd()
		case "o":
			return m.enterOverrideMode()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m SourcesModel) enterOverrideMode() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.sources) {
		return m, nil
	}

	src := m.sources[idx]
	m.formAmount = fmt.Sprintf("%.2f", src.AnnualGross)
	m.formNote = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("annual_gross").
				Title("Annual Gross").
				Value(&m.formAmount).
				Validate(func(s string) error {
					v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
					if err != nil || v <= 0 {
						return fmt.Errorf("enter a positive amount")
					}

					return nil
				}),

			huh.NewInput().
				Key("note").
				Title("Note").
				Placeholder("confirmed with employer").
				Value(&m.formNote),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = sourcesStateOverride
	m.table.Blur()

	return m, m.form.Init()
}

func (m SourcesModel) updateOverride(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = sourcesStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveOverrideCmd()
}

func (m SourcesModel) View() string {
	if m.state == sourcesStateCaseInput {
		content := fmt.Sprintf("Case Income Sources\n\n%s\n\n(Enter to load, Esc to back)", m.caseInput.View())
		if m.status != "" {
			content += "\n\n" + m.status
		}

		return lipgloss.NewStyle().Padding(2).Render(content)
	}

	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading sources...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v\n\n(Esc to back)", m.err))
	}

	header := ""
	if m.summary != nil {
		header = fmt.Sprintf(
			"Case %s | CMI: %s | Annual: %s | Employers: %d | Reconciled: %t",
			shortID(m.caseID),
			FormatAmount(m.summary.TotalMonthlyGross),
			FormatAmount(m.summary.TotalAnnualGross),
			m.summary.EmployerCount,
			m.summary.AllSourcesReconciled,
		)
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
		lipgloss.NewStyle().Faint(true).Render("o: override | r: re-reconcile | Esc: back"),
	)

	if m.state == sourcesStateOverride && m.form != nil {
		idx := m.table.Cursor()

		detail := ""
		if idx >= 0 && idx < len(m.sources) && m.sources[idx].Discrepancy != nil {
			detail = "\n" + m.sources[idx].Discrepancy.SuggestedResolution + "\n"
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(fmt.Sprintf("Override Income Figure\n%s\n%s", detail, m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *SourcesModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.sources))
	for _, src := range m.sources {
		rows = append(rows, table.Row{
			strconv.Itoa(src.IncomeYear),
			src.EmployerName,
			string(src.Status),
			FormatAmount(src.AnnualGross),
			FormatAmount(src.MonthlyGross),
			fmt.Sprintf("%.2f", src.Confidence),
			string(src.Determination),
		})
	}

	m.table.SetRows(rows)
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

// Messages

type loadSourcesMsg struct {
	sources []*income.ReconciledSource
	summary *income.CaseSummary
	err     error
}

func (m SourcesModel) loadSourcesCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		sources, err := m.svc.Sources(ctx, m.caseID)
		if err != nil {
			return loadSourcesMsg{err: err}
		}

		summary, err := m.svc.Summary(ctx, m.caseID)
		if err != nil {
			return loadSourcesMsg{err: err}
		}

		return loadSourcesMsg{sources: sources, summary: summary}
	}
}

func (m SourcesModel) reconcileCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		result, err := m.svc.Reconcile(ctx, m.caseID)
		if err != nil {
			return loadSourcesMsg{err: err}
		}

		return loadSourcesMsg{sources: result.Sources, summary: &result.Summary}
	}
}

type overrideSavedMsg struct {
	err error
}

func (m SourcesModel) saveOverrideCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.sources) {
		return nil
	}

	src := m.sources[idx]

	amount, err := strconv.ParseFloat(strings.TrimSpace(m.formAmount), 64)
	if err != nil {
		return func() tea.Msg { return overrideSavedMsg{err: err} }
	}

	note := m.formNote

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.svc.Override(ctx, src.ID, amount, note)

		return overrideSavedMsg{err: err}
	}
}
