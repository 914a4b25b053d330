// Package view holds the rendering surfaces the session controller draws on.
package view

import (
	"sync"

	"github.com/cureverse/cureverse/internal/render"
)

// View is a rendering surface.
type View interface {
	Append(node render.Node)
	Clear()
	ScrollToBottom()
	SetIndicator(visible bool)
	ClearInput()
}

// Recorder is an in-memory View that records what was drawn.
type Recorder struct {
	mu         sync.Mutex
	nodes      []render.Node
	indicator  bool
	scrolls    int
	inputClear int
	history    []bool
}

var _ View = (*Recorder)(nil)

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Append(node render.Node) {
	r.mu.Lock()
	r.nodes = append(r.nodes, node)
	r.mu.Unlock()
}

func (r *Recorder) Clear() {
	r.mu.Lock()
	r.nodes = nil
	r.mu.Unlock()
}

func (r *Recorder) ScrollToBottom() {
	r.mu.Lock()
	r.scrolls++
	r.mu.Unlock()
}

func (r *Recorder) SetIndicator(visible bool) {
	r.mu.Lock()
	r.indicator = visible
	r.history = append(r.history, visible)
	r.mu.Unlock()
}

func (r *Recorder) ClearInput() {
	r.mu.Lock()
	r.inputClear++
	r.mu.Unlock()
}

// Nodes returns a copy of the drawn nodes.
func (r *Recorder) Nodes() []render.Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]render.Node(nil), r.nodes...)
}

// Indicator reports whether the typing indicator is visible.
func (r *Recorder) Indicator() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.indicator
}

// IndicatorHistory returns every SetIndicator value in call order.
func (r *Recorder) IndicatorHistory() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.history...)
}

// Scrolls returns the number of ScrollToBottom calls.
func (r *Recorder) Scrolls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scrolls
}

// InputClears returns the number of ClearInput calls.
func (r *Recorder) InputClears() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inputClear
}
