package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func waitDone(f func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		f()
		close(done)
	}()
	return done
}

func TestControl_PauseAndResume(t *testing.T) {
	c := newControl()
	assert.True(t, c.apply("pause"))
	assert.True(t, c.isPaused())

	done := waitDone(c.waitWhilePaused)
	select {
	case <-done:
		t.Fatal("wait returned while paused")
	case <-time.After(50 * time.Millisecond):
	}

	assert.True(t, c.apply("resume"))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("wait did not return after resume")
	}
	assert.False(t, c.isPaused())
}

func TestControl_StopReleasesPause(t *testing.T) {
	c := newControl()
	c.setPaused(true)

	done := waitDone(c.waitWhilePaused)
	assert.True(t, c.apply("stop"))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("wait did not return after stop")
	}
	assert.True(t, c.isStopped())
}

func TestControl_StopInterruptsSleep(t *testing.T) {
	c := newControl()
	done := waitDone(func() { c.sleep(time.Hour) })

	c.stop()
	c.stop() // idempotent

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sleep did not return after stop")
	}
}

func TestControl_UnknownCommand(t *testing.T) {
	c := newControl()
	assert.False(t, c.apply("rewind"))
	assert.False(t, c.isStopped())
	assert.False(t, c.isPaused())

	c.waitWhilePaused()
	c.sleep(0)
}
