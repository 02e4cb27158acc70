package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/designstudio/pkg/ai"
	"github.com/matzehuels/designstudio/pkg/templates"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// errAborted is returned when the user quits an interactive picker.
var errAborted = errors.New("aborted")

// =============================================================================
// QuestionModel - Interactive clarification answers
// =============================================================================

// QuestionModel is the bubbletea model that walks through clarification
// questions one at a time.
type QuestionModel struct {
	Questions []ai.Question
	Index     int
	Cursor    int
	Answers   []ai.Answer
	Aborted   bool
}

// NewQuestionModel creates a new question model.
func NewQuestionModel(qs []ai.Question) QuestionModel {
	return QuestionModel{Questions: qs}
}

// Done reports whether every question was answered or skipped.
func (m QuestionModel) Done() bool {
	return m.Index >= len(m.Questions)
}

func (m QuestionModel) Init() tea.Cmd {
	return nil
}

func (m QuestionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || m.Done() {
		return m, nil
	}
	q := m.Questions[m.Index]
	switch key.String() {
	case "q", "ctrl+c", "esc":
		m.Aborted = true
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(q.Options)-1 {
			m.Cursor++
		}
	case "enter":
		m.Answers = append(m.Answers, ai.Answer{Question: q.Question, Choice: q.Options[m.Cursor]})
		return m.next()
	case "s", "tab":
		return m.next()
	}
	return m, nil
}

func (m QuestionModel) next() (tea.Model, tea.Cmd) {
	m.Index++
	m.Cursor = 0
	if m.Done() {
		return m, tea.Quit
	}
	return m, nil
}

func (m QuestionModel) View() string {
	if m.Done() {
		return ""
	}
	var b strings.Builder
	q := m.Questions[m.Index]

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Question %d/%d", m.Index+1, len(m.Questions))))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ answer  s skip  q quit"))
	b.WriteString("\n\n")
	b.WriteString(StyleValue.Render(q.Question))
	b.WriteString("\n\n")

	for i, opt := range q.Options {
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render("▸ " + opt))
		} else {
			b.WriteString(listNormalStyle.Render("  " + opt))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// askQuestions runs the picker and returns the chosen answers.
func askQuestions(qs []ai.Question) ([]ai.Answer, error) {
	final, err := tea.NewProgram(NewQuestionModel(qs)).Run()
	if err != nil {
		return nil, fmt.Errorf("question picker: %w", err)
	}
	m := final.(QuestionModel)
	if m.Aborted {
		return nil, errAborted
	}
	return m.Answers, nil
}

// =============================================================================
// Template Table
// =============================================================================

// renderTemplateTable lays out saved templates as a bordered table.
func renderTemplateTable(ts []*templates.Template, now time.Time) string {
	rows := make([][]string, 0, len(ts))
	for _, t := range ts {
		canvas := string(t.Settings.AspectRatio)
		if t.Settings.IsCustomSize {
			canvas = fmt.Sprintf("%s×%s %s", t.Settings.CustomWidth, t.Settings.CustomHeight, t.Settings.CustomUnit)
		}
		target := string(t.Settings.OptimizationTarget)
		if t.Settings.OptimizationTarget == ai.TargetPrint {
			target = fmt.Sprintf("print %d dpi", t.Settings.PrintQuality)
		}
		elements := 0
		if t.Brief != nil {
			elements = len(t.Brief.Layout)
		}
		rows = append(rows, []string{
			shortID(t.ID), t.Name, canvas, target,
			fmt.Sprintf("%d", elements), formatRelativeTime(t.CreatedAt, now),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Canvas", "Target", "Elements", "Saved").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0 || col == 5:
				return listDimStyle
			case col == 1:
				return StyleAccent
			default:
				return listNormalStyle
			}
		}).
		Render()
}

// =============================================================================
// Helpers
// =============================================================================

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
