package view

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/cureverse/cureverse/internal/model/chat"
	"github.com/cureverse/cureverse/internal/render"
)

// IndicatorText is printed while the assistant is composing.
const IndicatorText = "assistant is typing…"

var (
	userLabelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	botLabelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("35"))
	errorStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	timeStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	indicatorStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("246"))
	cardStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("35")).Padding(0, 1)
	cardTitleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	sectionTitStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
)

// Terminal writes nodes to a line-oriented terminal.
type Terminal struct {
	mu        sync.Mutex
	out       io.Writer
	indicator bool
	// Prompt is reprinted after each drawn message when non-empty.
	Prompt string
}

var _ View = (*Terminal)(nil)

// NewTerminal returns a Terminal writing to out.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

func (t *Terminal) Append(node render.Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.eraseIndicatorLocked()
	fmt.Fprintln(t.out, FormatNode(node))
	if t.indicator {
		t.printIndicatorLocked()
	}
}

func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	// ANSI clear screen + home.
	fmt.Fprint(t.out, "\x1b[2J\x1b[H")
	t.indicator = false
}

// ScrollToBottom is implicit on a terminal; it reprints the prompt.
func (t *Terminal) ScrollToBottom() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Prompt != "" && !t.indicator {
		fmt.Fprint(t.out, t.Prompt)
	}
}

func (t *Terminal) SetIndicator(visible bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if visible == t.indicator {
		return
	}
	if visible {
		t.printIndicatorLocked()
	} else {
		t.eraseIndicatorLocked()
	}
	t.indicator = visible
}

// ClearInput is a no-op: the terminal line discipline consumes the input line.
func (t *Terminal) ClearInput() {}

func (t *Terminal) printIndicatorLocked() {
	fmt.Fprint(t.out, indicatorStyle.Render(IndicatorText))
}

func (t *Terminal) eraseIndicatorLocked() {
	if t.indicator {
		fmt.Fprint(t.out, "\r\x1b[2K")
	}
}

// FormatNode renders node as styled terminal text.
func FormatNode(node render.Node) string {
	var label string
	switch node.Role {
	case chat.RoleUser:
		label = userLabelStyle.Render("You")
	case chat.RoleError:
		label = errorStyle.Render("Error")
	default:
		label = botLabelStyle.Render("Assistant")
	}

	content := node.Content
	if node.Role == chat.RoleError {
		content = errorStyle.Render(content)
	}

	var b strings.Builder
	b.WriteString(label)
	b.WriteString(" ")
	b.WriteString(timeStyle.Render(node.TimeLabel))
	b.WriteString("\n")
	b.WriteString(content)
	if node.Card != nil {
		b.WriteString("\n")
		b.WriteString(formatCard(node.Card))
	}
	return b.String()
}

func formatCard(card *render.InfoCard) string {
	lines := []string{cardTitleStyle.Render(card.Title)}
	for _, s := range card.Sections {
		lines = append(lines, sectionTitStyle.Render(s.Title))
		for _, item := range s.Items {
			lines = append(lines, "  • "+item)
		}
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}
