package gesture

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
)

// newTestClassifier returns a classifier on a mock clock plus the slice its
// emitted events land in.
func newTestClassifier(t *testing.T) (*Classifier, *clock.Mock, *[]Event) {
	t.Helper()
	mock := clock.NewMock()
	events := &[]Event{}
	c := NewClassifier(Config{
		HoldThreshold: 500 * time.Millisecond,
		MoveThreshold: 10,
	}, mock, func(ev Event) {
		*events = append(*events, ev)
	})
	return c, mock, events
}

func TestClassifier_ShortPressEmitsTap(t *testing.T) {
	c, mock, events := newTestClassifier(t)

	c.PressStart("genre-28", 100, 100)
	mock.Add(300 * time.Millisecond)
	c.PressEnd("genre-28")

	assert.Equal(t, []Event{{Action: ActionTap, ItemID: "genre-28"}}, *events)
}

func TestClassifier_LongStillPressEmitsHoldAtThreshold(t *testing.T) {
	c, mock, events := newTestClassifier(t)

	c.PressStart("genre-28", 100, 100)
	mock.Add(700 * time.Millisecond)

	// Hold fired when the threshold elapsed, before any release.
	assert.Equal(t, []Event{{Action: ActionHold, ItemID: "genre-28"}}, *events)

	c.PressEnd("genre-28")

	// The release of the hold press adds nothing.
	assert.Len(t, *events, 1)
}

func TestClassifier_MovedPressEmitsNothing(t *testing.T) {
	c, mock, events := newTestClassifier(t)

	c.PressStart("genre-28", 100, 100)
	c.PressMove("genre-28", 120, 100) // 20 units, threshold is 10
	mock.Add(300 * time.Millisecond)
	c.PressEnd("genre-28")

	assert.Empty(t, *events)
}

func TestClassifier_MoveCancelsPendingHold(t *testing.T) {
	c, mock, events := newTestClassifier(t)

	c.PressStart("genre-28", 100, 100)
	mock.Add(200 * time.Millisecond)
	c.PressMove("genre-28", 100, 130)
	mock.Add(time.Second)

	assert.Empty(t, *events)
}

func TestClassifier_SmallMoveStillCounts(t *testing.T) {
	c, mock, events := newTestClassifier(t)

	c.PressStart("genre-28", 100, 100)
	c.PressMove("genre-28", 104, 103) // within threshold
	mock.Add(100 * time.Millisecond)
	c.PressEnd("genre-28")

	assert.Equal(t, []Event{{Action: ActionTap, ItemID: "genre-28"}}, *events)
}

func TestClassifier_CancelEmitsNothing(t *testing.T) {
	c, mock, events := newTestClassifier(t)

	c.PressStart("genre-28", 100, 100)
	mock.Add(200 * time.Millisecond)
	c.PressCancel("genre-28")
	mock.Add(time.Second)

	assert.Empty(t, *events)
}

func TestClassifier_HoldSuppressesNextTapExactlyOnce(t *testing.T) {
	c, mock, events := newTestClassifier(t)

	// Hold on the item.
	c.PressStart("genre-28", 100, 100)
	mock.Add(600 * time.Millisecond)
	c.PressEnd("genre-28")
	assert.Equal(t, []Event{{Action: ActionHold, ItemID: "genre-28"}}, *events)

	// The synthetic click the input layer raises after the hold: suppressed.
	c.PressStart("genre-28", 100, 100)
	c.PressEnd("genre-28")
	assert.Len(t, *events, 1)

	// A genuine second tap goes through.
	c.PressStart("genre-28", 100, 100)
	c.PressEnd("genre-28")
	assert.Equal(t, Event{Action: ActionTap, ItemID: "genre-28"}, (*events)[1])
}

func TestClassifier_SuppressionIsPerItem(t *testing.T) {
	c, mock, events := newTestClassifier(t)

	c.PressStart("genre-28", 100, 100)
	mock.Add(600 * time.Millisecond)
	c.PressEnd("genre-28")

	// A tap on a different item is unaffected.
	c.PressStart("genre-35", 50, 50)
	c.PressEnd("genre-35")

	assert.Equal(t, []Event{
		{Action: ActionHold, ItemID: "genre-28"},
		{Action: ActionTap, ItemID: "genre-35"},
	}, *events)
}

func TestClassifier_NewPressDiscardsPrevious(t *testing.T) {
	c, mock, events := newTestClassifier(t)

	c.PressStart("genre-28", 100, 100)
	c.PressStart("genre-35", 50, 50)
	mock.Add(time.Second)

	// Only the second press's hold fires.
	assert.Equal(t, []Event{{Action: ActionHold, ItemID: "genre-35"}}, *events)
}

func TestClassifier_MismatchedItemEventsIgnored(t *testing.T) {
	c, mock, events := newTestClassifier(t)

	c.PressStart("genre-28", 100, 100)
	c.PressMove("genre-35", 500, 500) // different item, ignored
	c.PressEnd("genre-35")            // ignored
	mock.Add(100 * time.Millisecond)
	c.PressEnd("genre-28")

	assert.Equal(t, []Event{{Action: ActionTap, ItemID: "genre-28"}}, *events)
}

func TestClassifier_DefaultsApplied(t *testing.T) {
	c := NewClassifier(Config{}, clock.NewMock(), nil)

	assert.Equal(t, DefaultHoldThreshold, c.cfg.HoldThreshold)
	assert.Equal(t, DefaultMoveThreshold, c.cfg.MoveThreshold)
}
