package cleanup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoordinator_FireTwice(t *testing.T) {
	c := New(nil)

	var calls, hookCalls int
	c.Arm(func() { calls++ })
	c.AtExit(func() { hookCalls++ })

	assert.False(t, c.Fired())
	c.Fire() // signal path
	c.Fire() // exit path

	assert.True(t, c.Fired())
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, hookCalls)
}

func TestCoordinator_HooksRunLastFirst(t *testing.T) {
	c := New(nil)
	var order []string
	c.Arm(func() { order = append(order, "cleanup") })
	c.AtExit(func() { order = append(order, "first") })
	c.AtExit(func() { order = append(order, "second") })

	c.Fire()

	assert.Equal(t, []string{"cleanup", "second", "first"}, order)
}

func TestCoordinator_UnarmedFire(t *testing.T) {
	c := New(nil)
	assert.NotPanics(t, c.Fire)
	assert.True(t, c.Fired())
}

func TestCoordinator_PanicInCallback(t *testing.T) {
	c := New(nil)
	var hookRan bool
	c.Arm(func() { panic("driver already closed") })
	c.AtExit(func() { hookRan = true })

	assert.NotPanics(t, c.Fire)
	assert.True(t, hookRan, "hooks still run after a failing callback")
}
