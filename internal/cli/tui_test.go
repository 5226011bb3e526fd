package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/schemadraw/schemadraw/pkg/diagram"
)

func previewShapes() []*diagram.Shape {
	return []*diagram.Shape{
		{ID: "a", Type: diagram.ShapeFlowNode, Label: "Review", Preview: true, FlowNode: &diagram.FlowPayload{}},
		{ID: "b", Type: diagram.ShapeFlowNode, Label: "Deploy", Preview: true, FlowNode: &diagram.FlowPayload{}},
	}
}

func TestConfirmModelAccept(t *testing.T) {
	m := NewConfirmModel("Generated content", previewShapes())

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	got := updated.(ConfirmModel)

	if !got.Answered || !got.Accepted {
		t.Errorf("Answered = %v, Accepted = %v, want both true", got.Answered, got.Accepted)
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
}

func TestConfirmModelReject(t *testing.T) {
	m := NewConfirmModel("Generated content", previewShapes())

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	got := updated.(ConfirmModel)

	if !got.Answered || got.Accepted {
		t.Errorf("Answered = %v, Accepted = %v, want answered and rejected", got.Answered, got.Accepted)
	}
}

func TestConfirmModelIgnoresOtherKeys(t *testing.T) {
	m := NewConfirmModel("Generated content", previewShapes())

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	got := updated.(ConfirmModel)

	if got.Answered {
		t.Error("unrelated key should not answer the prompt")
	}
	if cmd != nil {
		t.Error("unrelated key should not quit")
	}
}

func TestConfirmModelView(t *testing.T) {
	m := NewConfirmModel("Generated content", previewShapes())

	view := m.View()
	for _, want := range []string{"Generated content", "Review", "Deploy"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}
