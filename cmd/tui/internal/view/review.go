package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/pcaldeira/attest/internal/income"
)

// ReviewModel walks the reviewer through every source of a case that needs
// attention, one discrepancy at a time.
type ReviewModel struct {
	CommonModel
	svc *income.Service

	state ReviewState

	caseInput textinput.Model
	caseID    uuid.UUID

	queue      []*income.ReconciledSource
	currentSrc *income.ReconciledSource

	// Inputs
	amountInput textinput.Model
	noteInput   textinput.Model
	focusIndex  int // 0: amount, 1: note

	status     string
	loading    bool
	totalCount int
}

type ReviewState int

const (
	StateSelectCase ReviewState = iota
	StateReviewing
)

func NewReviewModel(svc *income.Service) ReviewModel {
	ci := textinput.New()
	ci.Placeholder = "case UUID"
	ci.Width = 40
	ci.Prompt = "Case ID: "
	ci.Focus()

	amountIn := textinput.New()
	amountIn.Placeholder = "52000.00"
	amountIn.Width = 14
	amountIn.Prompt = "Annual Gross: "

	noteIn := textinput.New()
	noteIn.Placeholder = "confirmed with employer"
	noteIn.Width = 40
	noteIn.Prompt = "Note:         "

	return ReviewModel{
		svc:         svc,
		caseInput:   ci,
		amountInput: amountIn,
		noteInput:   noteIn,
		state:       StateSelectCase,
		status:      "Enter the case to review",
	}
}

func (m ReviewModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		switch msg.Type {
		case tea.KeyEsc:
			return m, Back

		case tea.KeyEnter:
			if m.state == StateSelectCase {
				id, err := uuid.Parse(strings.TrimSpace(m.caseInput.Value()))
				if err != nil {
					m.status = "Invalid case ID"
					return m, nil
				}

				m.caseID = id
				m.loading = true
				m.state = StateReviewing

				return m, m.loadQueueCmd()
			}

			if m.currentSrc == nil {
				break
			}

			if m.focusIndex == 0 {
				m.focusIndex = 1
				m.amountInput.Blur()
				m.noteInput.Focus()

				return m, textinput.Blink
			}

			return m, m.overrideAndNextCmd()

		case tea.KeyTab:
			if m.state == StateReviewing && m.currentSrc != nil {
				m.focusIndex = (m.focusIndex + 1) % 2
				if m.focusIndex == 0 {
					m.amountInput.Focus()
					m.noteInput.Blur()
				} else {
					m.amountInput.Blur()
					m.noteInput.Focus()
				}

				return m, textinput.Blink
			}

		case tea.KeyCtrlN:
			// Skip without overriding.
			if m.state == StateReviewing && m.currentSrc != nil {
				m.nextSource()
				return m, textinput.Blink
			}
		}

	case loadQueueMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error loading queue: %v", msg.err)
			break
		}

		m.queue = msg.sources
		m.totalCount = len(m.queue)

		if len(m.queue) > 0 {
			m.nextSource()
			return m, textinput.Blink
		}

		m.status = "Nothing needs review for this case."

	case overrideResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
			break
		}

		if len(m.queue) > 0 {
			m.nextSource()
			return m, textinput.Blink
		}

		m.currentSrc = nil
		m.status = "All done!"
	}

	if m.state == StateSelectCase {
		m.caseInput, cmd = m.caseInput.Update(msg)
		return m, cmd
	}

	if m.state == StateReviewing && m.currentSrc != nil {
		var cmd1, cmd2 tea.Cmd
		m.amountInput, cmd1 = m.amountInput.Update(msg)
		m.noteInput, cmd2 = m.noteInput.Update(msg)

		return m, tea.Batch(cmd, cmd1, cmd2)
	}

	return m, cmd
}

func (m ReviewModel) View() string {
	if m.state == StateSelectCase {
		return lipgloss.NewStyle().Padding(2).Render(
			fmt.Sprintf("Review Queue\n\n%s\n\n%s\n\n(Enter to load, Esc to back)", m.caseInput.View(), m.status),
		)
	}

	content := ""

	switch {
	case m.loading:
		content = "Loading review queue..."
	case m.currentSrc != nil:
		src := m.currentSrc

		info := fmt.Sprintf(
			"Employer: %s\nYear:     %d\nStatus:   %s\nAnnual:   %s (confidence %.2f)\n",
			src.EmployerName,
			src.IncomeYear,
			src.Status,
			FormatAmount(src.AnnualGross),
			src.Confidence,
		)

		if src.Discrepancy != nil {
			info += fmt.Sprintf(
				"\nVariance: %.0f%% across %d documents\n%s\n",
				src.Discrepancy.MaxVariance*100,
				len(src.Discrepancy.DocumentIDs),
				src.Discrepancy.SuggestedResolution,
			)
		}

		content = fmt.Sprintf(
			"%s\n%s\nOverride:\n%s\n%s\n\n(Enter to save & next, Ctrl+N to skip, Esc to quit)",
			m.status, info, m.amountInput.View(), m.noteInput.View(),
		)
	default:
		content = m.status + "\n\n(Esc to back)"
	}

	return lipgloss.NewStyle().Padding(2).Render(content)
}

func (m *ReviewModel) nextSource() {
	if len(m.queue) == 0 {
		m.currentSrc = nil
		m.status = "All done! Nothing left to review."
		m.amountInput.Blur()
		m.noteInput.Blur()

		return
	}

	src := m.queue[0]
	m.queue = m.queue[1:]
	m.currentSrc = src

	currentIdx := m.totalCount - len(m.queue)
	m.status = fmt.Sprintf("Reviewing %d/%d", currentIdx, m.totalCount)

	m.amountInput.SetValue(fmt.Sprintf("%.2f", src.AnnualGross))
	m.noteInput.SetValue("")
	m.focusIndex = 0
	m.amountInput.Focus()
	m.noteInput.Blur()
}

type loadQueueMsg struct {
	sources []*income.ReconciledSource
	err     error
}

func (m ReviewModel) loadQueueCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		sources, err := m.svc.Sources(ctx, m.caseID)
		if err != nil {
			return loadQueueMsg{err: err}
		}

		var queue []*income.ReconciledSource

		for _, src := range sources {
			if src.Status.NeedsAttention() {
				queue = append(queue, src)
			}
		}

		return loadQueueMsg{sources: queue}
	}
}

type overrideResultMsg struct {
	err error
}

func (m ReviewModel) overrideAndNextCmd() tea.Cmd {
	src := m.currentSrc

	amount, err := strconv.ParseFloat(strings.TrimSpace(m.amountInput.Value()), 64)
	if err != nil || amount <= 0 {
		return func() tea.Msg { return overrideResultMsg{err: fmt.Errorf("invalid amount")} }
	}

	note := m.noteInput.Value()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.svc.Override(ctx, src.ID, amount, note)

		return overrideResultMsg{err: err}
	}
}
