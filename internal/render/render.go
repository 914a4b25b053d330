// Package render converts transcript messages into display nodes. User and
// error text is escaped and never interpreted; assistant narrative goes through
// an injected markdown Transform, and a structured reply with causes gains an
// info card.
package render

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cureverse/cureverse/internal/model/chat"
)

// DefaultTimeFormat is a two-digit hour:minute label with an AM/PM marker.
const DefaultTimeFormat = "03:04 PM"

// CardTitle heads every info card.
const CardTitle = "Medical Information"

// Section titles in display order.
const (
	SectionCauses = "Possible Causes"
	SectionAdvice = "Medical Advice"
	SectionRemedy = "Ayurvedic Remedies"
	SectionDiet   = "Diet Recommendations"
)

// ContentKind says how Node.Content should be treated by a surface.
type ContentKind string

const (
	// KindPlain content is escaped text.
	KindPlain ContentKind = "plain"
	// KindRich content is the output of the Transform.
	KindRich ContentKind = "rich"
)

// Section is one labelled list of an info card.
type Section struct {
	Title string
	Icon  string
	Items []string
}

// InfoCard is the structured block shown under an assistant bubble.
type InfoCard struct {
	Title    string
	Sections []Section
}

// Node is a surface-independent display element.
type Node struct {
	Role      chat.Role
	Class     string
	Kind      ContentKind
	Content   string
	TimeLabel string
	Card      *InfoCard
}

// Renderer builds Nodes from messages.
type Renderer struct {
	transform  Transform
	escape     func(string) string
	loc        *time.Location
	timeFormat string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTransform sets the markdown transform for assistant text.
func WithTransform(t Transform) Option {
	return func(r *Renderer) {
		if t != nil {
			r.transform = t
		}
	}
}

// WithEscaper sets the escaping applied to user, error and card text.
func WithEscaper(fn func(string) string) Option {
	return func(r *Renderer) {
		if fn != nil {
			r.escape = fn
		}
	}
}

// WithLocation sets the zone used for time labels.
func WithLocation(loc *time.Location) Option {
	return func(r *Renderer) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// WithTimeFormat sets the time label layout.
func WithTimeFormat(layout string) Option {
	return func(r *Renderer) {
		if layout != "" {
			r.timeFormat = layout
		}
	}
}

// New returns a Renderer. Without options it passes markdown through, escapes
// HTML and labels times in the local zone.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		transform:  Noop,
		escape:     HTMLEscape,
		loc:        time.Local,
		timeFormat: DefaultTimeFormat,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render returns the display node for msg.
func (r *Renderer) Render(msg chat.Message) Node {
	node := Node{
		Role:      msg.Role,
		Class:     className(msg.Role),
		TimeLabel: r.TimeLabel(msg.Timestamp),
	}

	if msg.Role != chat.RoleAssistant {
		node.Kind = KindPlain
		node.Content = r.escape(msg.Body.String())
		return node
	}

	payload := msg.Payload()
	node.Kind = KindRich
	node.Content = r.rich(payload.Message)
	node.Card = r.card(payload)
	return node
}

// TimeLabel formats ts in the renderer's zone.
func (r *Renderer) TimeLabel(ts time.Time) string {
	return ts.In(r.loc).Format(r.timeFormat)
}

func (r *Renderer) rich(text string) string {
	out, err := r.transform.Transform(text)
	if err != nil {
		log.Debug().Err(err).Msg("render: transform failed, using raw text")
		return text
	}
	return out
}

func (r *Renderer) card(p chat.AssistantPayload) *InfoCard {
	if !p.HasInfoCard() {
		return nil
	}
	card := &InfoCard{Title: CardTitle}
	add := func(title, icon string, items []string) {
		if len(items) == 0 {
			return
		}
		escaped := make([]string, len(items))
		for i, item := range items {
			escaped[i] = r.escape(item)
		}
		card.Sections = append(card.Sections, Section{Title: title, Icon: icon, Items: escaped})
	}

	add(SectionCauses, "fa-circle-info", p.Causes)
	if p.ConsultationAdvice != "" {
		add(SectionAdvice, "fa-user-doctor", []string{p.ConsultationAdvice})
	}
	add(SectionRemedy, "fa-mortar-pestle", p.AyurvedicRemedies)
	add(SectionDiet, "fa-utensils", p.DietPlan)
	return card
}

func className(role chat.Role) string {
	switch role {
	case chat.RoleUser:
		return "chat-message message-user"
	case chat.RoleError:
		return "chat-message message-error"
	default:
		return "chat-message message-bot"
	}
}
