package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectModalities(t *testing.T) {
	tests := []struct {
		name string
		caps Capabilities
		want []Modality
	}{
		{
			name: "pointer preferred",
			caps: Capabilities{Pointer: true, Touch: true, Mouse: true},
			want: []Modality{ModalityPointer},
		},
		{
			name: "unreliable pointer cancel falls back to touch and mouse",
			caps: Capabilities{Pointer: true, Touch: true, Mouse: true, UnreliablePointerCancel: true},
			want: []Modality{ModalityTouch, ModalityMouse},
		},
		{
			name: "touch only",
			caps: Capabilities{Touch: true},
			want: []Modality{ModalityTouch},
		},
		{
			name: "mouse only",
			caps: Capabilities{Mouse: true},
			want: []Modality{ModalityMouse},
		},
		{
			name: "nothing available",
			caps: Capabilities{},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectModalities(tt.caps))
		})
	}
}

// recordingSink records which sink methods were called.
type recordingSink struct {
	starts, moves, ends, cancels int
}

func (r *recordingSink) PressStart(string, float64, float64) { r.starts++ }
func (r *recordingSink) PressMove(string, float64, float64)  { r.moves++ }
func (r *recordingSink) PressEnd(string)                     { r.ends++ }
func (r *recordingSink) PressCancel(string)                  { r.cancels++ }

func TestAttach_OnlySelectedSourcesExist(t *testing.T) {
	sink := &recordingSink{}

	sources := Attach(Capabilities{Pointer: true, Touch: true, Mouse: true}, sink)

	assert.Len(t, sources, 1)
	assert.Equal(t, ModalityPointer, sources[0].Modality())
}

func TestAttach_SourcesForwardToSink(t *testing.T) {
	sink := &recordingSink{}
	sources := Attach(Capabilities{Touch: true, Mouse: true}, sink)
	assert.Len(t, sources, 2)

	touch := sources[0].(*TouchSource)
	touch.Start("item", 0, 0)
	touch.Move("item", 1, 1)
	touch.End("item")
	touch.Cancel("item")

	mouse := sources[1].(*MouseSource)
	mouse.Down("item", 0, 0)
	mouse.Move("item", 1, 1)
	mouse.Up("item")

	assert.Equal(t, 2, sink.starts)
	assert.Equal(t, 2, sink.moves)
	assert.Equal(t, 2, sink.ends)
	assert.Equal(t, 1, sink.cancels)
}

func TestClassifierSatisfiesPressSink(t *testing.T) {
	var _ PressSink = (*Classifier)(nil)
}
