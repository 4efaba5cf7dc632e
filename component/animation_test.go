package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zombieAnimator() *Animator {
	return NewAnimator(AnimatorSpec{
		Clips: []Clip{
			{Name: "Idle", Frames: 4, FPS: 60, Loop: true},
			{Name: "Walk", Frames: 4, FPS: 60, Loop: true, Events: AnimationEventMap{1: {"Footstep"}}},
			{Name: "Attack", Frames: 3, FPS: 60, Events: AnimationEventMap{2: {"Attack"}}},
		},
		Layers:   []AnimatorLayer{{Default: "Idle", Bools: map[string]string{"Walk": "Walk"}}},
		Triggers: map[string]string{"Attack": "Attack"},
	})
}

func TestAnimatorTriggerPlaysOneShot(t *testing.T) {
	a := zombieAnimator()
	var events []AnimationEvent
	a.Events.Handlers = append(a.Events.Handlers, func(evt AnimationEvent) { events = append(events, evt) })

	require.True(t, a.IsAnimation(0, "Idle"))
	a.SetTrigger("Attack")
	assert.True(t, a.IsAnimation(0, "Attack"))
	assert.False(t, a.Finished(0))

	a.Step()
	a.Step()
	require.Len(t, events, 1)
	assert.Equal(t, AnimationEvent{Layer: 0, Clip: "Attack", Frame: 2, Name: "Attack"}, events[0])
	assert.False(t, a.Finished(0))

	a.Step()
	assert.True(t, a.Finished(0))
	assert.True(t, a.IsAnimation(0, "Idle"), "layer falls back to its resting clip")

	a.SetTrigger("Attack")
	assert.False(t, a.Finished(0), "a new one-shot clears the finished flag")
}

func TestAnimatorBoolsSwapRestingClip(t *testing.T) {
	a := zombieAnimator()
	var names []string
	a.Events.Handlers = append(a.Events.Handlers, func(evt AnimationEvent) { names = append(names, evt.Name) })

	a.SetBool("Walk", true)
	a.Step()
	assert.True(t, a.IsAnimation(0, "Walk"))
	a.Step()
	assert.Equal(t, []string{"Footstep"}, names)

	a.SetBool("Walk", false)
	a.Step()
	assert.True(t, a.IsAnimation(0, "Idle"))
}

func TestAnimatorUnknownNames(t *testing.T) {
	a := zombieAnimator()
	a.SetTrigger("Scream")
	assert.True(t, a.IsAnimation(0, "Idle"))
	assert.False(t, a.Play(0, "Scream"))
	assert.False(t, a.Play(3, "Attack"))
	assert.False(t, a.IsAnimation(5, "Idle"))

	a.SetFloat("Speed", 2.5)
	assert.Equal(t, 2.5, a.Float("Speed"))
}

func TestClipDuration(t *testing.T) {
	tests := []struct {
		name string
		clip Clip
		want int
	}{
		{name: "sixty_fps", clip: Clip{Frames: 3, FPS: 60}, want: 3},
		{name: "twelve_fps", clip: Clip{Frames: 6, FPS: 12}, want: 30},
		{name: "default_fps", clip: Clip{Frames: 2}, want: 10},
		{name: "empty", clip: Clip{FPS: 30}, want: 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.clip.Duration())
		})
	}
}
