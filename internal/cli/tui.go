package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/schemadraw/schemadraw/pkg/diagram"
)

var (
	previewBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)

	previewItemStyle = lipgloss.NewStyle().Foreground(colorWhite)
	previewKindStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ConfirmModel - Accept or discard generated preview content
// =============================================================================

// ConfirmModel is the bubbletea model for reviewing generated preview
// content before keeping it. The user accepts with y/enter or discards
// with n/esc.
type ConfirmModel struct {
	Title    string
	Shapes   []*diagram.Shape
	Accepted bool
	Answered bool
}

// NewConfirmModel creates a confirmation model for the given preview shapes.
func NewConfirmModel(title string, shapes []*diagram.Shape) ConfirmModel {
	return ConfirmModel{Title: title, Shapes: shapes}
}

func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "y", "Y", "enter":
			m.Accepted = true
			m.Answered = true
			return m, tea.Quit
		case "n", "N", "q", "esc", "ctrl+c":
			m.Accepted = false
			m.Answered = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ConfirmModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n\n")

	var items []string
	for _, s := range m.Shapes {
		items = append(items, fmt.Sprintf("%s %s",
			previewItemStyle.Render(s.DisplayLabel()),
			previewKindStyle.Render("("+string(s.Type)+")")))
	}
	b.WriteString(previewBoxStyle.Render(strings.Join(items, "\n")))
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render("Keep this content? ") +
		StyleHighlight.Render("y") + StyleDim.Render("/") +
		StyleHighlight.Render("n"))
	b.WriteString("\n")

	return b.String()
}

// confirmPreview runs the confirmation model and reports whether the user
// accepted the preview content.
func confirmPreview(title string, shapes []*diagram.Shape) (bool, error) {
	final, err := tea.NewProgram(NewConfirmModel(title, shapes)).Run()
	if err != nil {
		return false, fmt.Errorf("confirmation prompt: %w", err)
	}
	m, ok := final.(ConfirmModel)
	if !ok || !m.Answered {
		return false, nil
	}
	return m.Accepted, nil
}
