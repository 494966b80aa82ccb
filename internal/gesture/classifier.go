package gesture

import (
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

const (
	// DefaultHoldThreshold is how long a press must stay down and still
	// before it classifies as a hold.
	DefaultHoldThreshold = 500 * time.Millisecond

	// DefaultMoveThreshold is how far a press may travel from its start
	// before it is treated as a drag and stops being a gesture.
	DefaultMoveThreshold = 10.0
)

// Config holds classifier thresholds.
type Config struct {
	HoldThreshold time.Duration
	MoveThreshold float64
}

// setDefaults fills in zero values.
func (c *Config) setDefaults() {
	if c.HoldThreshold <= 0 {
		c.HoldThreshold = DefaultHoldThreshold
	}
	if c.MoveThreshold <= 0 {
		c.MoveThreshold = DefaultMoveThreshold
	}
}

// press tracks one in-flight press from start to end/cancel.
type press struct {
	itemID    string
	startX    float64
	startY    float64
	timer     *clock.Timer
	dragged   bool
	holdFired bool
}

// Classifier turns press streams into tap/hold events. It implements
// PressSink, so any PressSource can feed it. At most one press is coherent
// at a time; a new start discards the previous press without emitting.
type Classifier struct {
	mu       sync.Mutex
	cfg      Config
	clk      clock.Clock
	emit     func(Event)
	current  *press
	suppress map[string]bool // one-shot tap suppression per item, set at hold-fire
}

// NewClassifier creates a classifier that calls emit for each classified
// gesture. A nil clk uses the wall clock.
func NewClassifier(cfg Config, clk clock.Clock, emit func(Event)) *Classifier {
	cfg.setDefaults()
	if clk == nil {
		clk = clock.New()
	}
	return &Classifier{
		cfg:      cfg,
		clk:      clk,
		emit:     emit,
		suppress: make(map[string]bool),
	}
}

// PressStart begins a new press on an item at the given position.
func (c *Classifier) PressStart(itemID string, x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.discardLocked()

	p := &press{itemID: itemID, startX: x, startY: y}
	p.timer = c.clk.AfterFunc(c.cfg.HoldThreshold, func() {
		c.fireHold(p)
	})
	c.current = p
}

// PressMove updates the press position. Crossing the move threshold turns
// the press into a drag: the pending hold is cancelled and the eventual
// release emits nothing.
func (c *Classifier) PressMove(itemID string, x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.current
	if p == nil || p.itemID != itemID || p.dragged {
		return
	}
	if math.Hypot(x-p.startX, y-p.startY) > c.cfg.MoveThreshold {
		p.dragged = true
		p.timer.Stop()
	}
}

// PressEnd releases the press. A still, short press emits a tap unless the
// item's one-shot suppression flag is set; a press whose hold already fired,
// or that dragged, emits nothing.
func (c *Classifier) PressEnd(itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.current
	if p == nil || p.itemID != itemID {
		return
	}
	c.current = nil
	p.timer.Stop()

	if p.holdFired || p.dragged {
		return
	}
	if c.suppress[itemID] {
		// Consume the flag exactly once; the next tap goes through.
		delete(c.suppress, itemID)
		return
	}
	c.emitLocked(Event{Action: ActionTap, ItemID: itemID})
}

// PressCancel abandons the press without emitting anything.
func (c *Classifier) PressCancel(itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.current
	if p == nil || p.itemID != itemID {
		return
	}
	c.discardLocked()
}

// fireHold runs when the hold timer elapses.
func (c *Classifier) fireHold(p *press) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// The press may have been superseded, dragged, or released while the
	// timer callback was scheduled.
	if c.current != p || p.dragged || p.holdFired {
		return
	}
	p.holdFired = true
	c.suppress[p.itemID] = true
	c.emitLocked(Event{Action: ActionHold, ItemID: p.itemID})
}

// discardLocked drops the current press, if any, without emitting.
func (c *Classifier) discardLocked() {
	if c.current == nil {
		return
	}
	c.current.timer.Stop()
	c.current = nil
}

// emitLocked invokes the emit callback. Callers hold the mutex; the callback
// must not call back into the classifier.
func (c *Classifier) emitLocked(ev Event) {
	if c.emit != nil {
		c.emit(ev)
	}
}
