// Package sequence derives activation geometry for sequence diagrams.
//
// Raw message text carries no explicit activation intervals, so the
// calculator reconstructs them: each lifeline keeps a call stack, a
// non-return message opens an activation on its target, and a return
// message closes the newest still-open activation on its source. The
// resulting intervals drive activation bar placement and the lifeline
// height required to render every message without overlap.
package sequence

import (
	"fmt"

	"github.com/schemadraw/schemadraw/pkg/diagram/anchor"
)

// MessageKind distinguishes calls from returns.
type MessageKind int

// Message kinds.
const (
	KindCall MessageKind = iota
	KindReturn
)

// Message is one arrow in an ordered message list. From and To name
// lifelines; the kind is implied by the arrow notation in dialect text.
type Message struct {
	From  string
	To    string
	Kind  MessageKind
	Label string
}

// Activation is one rendered interval during which a lifeline is
// processing a call. Depth is the nesting level (caller's depth plus one)
// and sets the bar's horizontal offset; Start/End index the opening and
// closing messages.
type Activation struct {
	Lifeline   string
	Depth      int
	StartIndex int
	EndIndex   int
	StartY     float64
	EndY       float64
}

// Inconsistency records a non-fatal problem found while matching returns.
// The diagram still renders; the record exists for diagnostics.
type Inconsistency struct {
	MessageIndex int
	Reason       string
}

// String implements fmt.Stringer.
func (i Inconsistency) String() string {
	return fmt.Sprintf("message %d: %s", i.MessageIndex, i.Reason)
}

// Result holds the derived activation geometry for one message list.
type Result struct {
	// Activations maps each lifeline to its intervals, in opening order.
	Activations map[string][]Activation

	// MaxDepth maps each lifeline to the maximum concurrent nesting depth
	// observed, which sets the reserved rendering width.
	MaxDepth map[string]int

	// Height is the lifeline height needed to place every message.
	Height float64

	// Inconsistencies lists dropped returns and other recoverable issues.
	Inconsistencies []Inconsistency
}

// Vertical layout shared with the lifeline anchor grid: message i sits at
// MessageTopOffset + i*MessageSpacing below the participant box top.
const (
	topOffset  = anchor.MessageTopOffset
	spacing    = anchor.MessageSpacing
	tailMargin = anchor.MessageSpacing
)

// MessageY returns the vertical position of message index i relative to
// the lifeline top.
func MessageY(i int) float64 {
	return topOffset + float64(i)*spacing
}

// RequiredHeight returns the lifeline height needed for n messages.
func RequiredHeight(n int) float64 {
	return topOffset + float64(n)*spacing + tailMargin
}

// Calculate derives activation intervals and the required lifeline height
// from an ordered message list. It never fails: unmatched returns are
// dropped and recorded, and activations still open after the last message
// are closed at its position.
func Calculate(messages []Message) *Result {
	res := &Result{
		Activations: make(map[string][]Activation),
		MaxDepth:    make(map[string]int),
		Height:      RequiredHeight(len(messages)),
	}

	// Per-lifeline stacks of indices into open, keyed by lifeline.
	type open struct {
		lifeline string
		depth    int
		start    int
	}
	stacks := make(map[string][]open)

	// currentDepth returns the depth of the newest open activation on a
	// lifeline, or -1 when it is idle.
	currentDepth := func(lifeline string) int {
		st := stacks[lifeline]
		if len(st) == 0 {
			return -1
		}
		return st[len(st)-1].depth
	}

	closeActivation := func(o open, endIndex int) {
		res.Activations[o.lifeline] = append(res.Activations[o.lifeline], Activation{
			Lifeline:   o.lifeline,
			Depth:      o.depth,
			StartIndex: o.start,
			EndIndex:   endIndex,
			StartY:     MessageY(o.start),
			EndY:       MessageY(endIndex),
		})
	}

	for i, m := range messages {
		switch m.Kind {
		case KindReturn:
			st := stacks[m.From]
			if len(st) == 0 {
				res.Inconsistencies = append(res.Inconsistencies, Inconsistency{
					MessageIndex: i,
					Reason:       fmt.Sprintf("return from %s with no open activation", m.From),
				})
				continue
			}
			top := st[len(st)-1]
			stacks[m.From] = st[:len(st)-1]
			closeActivation(top, i)
		default:
			depth := currentDepth(m.From) + 1
			stacks[m.To] = append(stacks[m.To], open{lifeline: m.To, depth: depth, start: i})
			if depth+1 > res.MaxDepth[m.To] {
				res.MaxDepth[m.To] = depth + 1
			}
		}
	}

	// Implicitly close anything still open at the final message.
	last := len(messages) - 1
	if last < 0 {
		last = 0
	}
	for _, st := range stacks {
		for j := len(st) - 1; j >= 0; j-- {
			closeActivation(st[j], last)
		}
	}

	// Opening order within each lifeline.
	for lifeline := range res.Activations {
		sortActivations(res.Activations[lifeline])
	}
	return res
}

// sortActivations orders intervals by start index, then depth. Insertion
// sort keeps it allocation-free for the short lists involved.
func sortActivations(a []Activation) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0; j-- {
			prev, cur := a[j-1], a[j]
			if prev.StartIndex < cur.StartIndex ||
				(prev.StartIndex == cur.StartIndex && prev.Depth <= cur.Depth) {
				break
			}
			a[j-1], a[j] = cur, prev
		}
	}
}
