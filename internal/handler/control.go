package handler

import (
	"sync"
	"time"
)

// control holds the client's stop and pause requests. The socket reader sets
// them and the playback goroutine consults them.
type control struct {
	mu      sync.Mutex
	cond    *sync.Cond
	stopped bool
	paused  bool
	done    chan struct{}
}

func newControl() *control {
	c := &control{done: make(chan struct{})}
	c.cond = sync.NewCond(&c.mu)
	return c
}

func (c *control) stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	close(c.done)
	c.cond.Broadcast()
}

func (c *control) setPaused(p bool) {
	c.mu.Lock()
	c.paused = p
	c.mu.Unlock()
	c.cond.Broadcast()
}

func (c *control) isStopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

func (c *control) isPaused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// waitWhilePaused blocks until playback is resumed or stopped.
func (c *control) waitWhilePaused() {
	c.mu.Lock()
	for c.paused && !c.stopped {
		c.cond.Wait()
	}
	c.mu.Unlock()
}

// sleep waits for d or until playback is stopped, whichever comes first.
func (c *control) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-c.done:
	}
}

// apply handles one client command and reports whether it was recognized.
func (c *control) apply(cmd string) bool {
	switch cmd {
	case "stop":
		c.stop()
	case "pause":
		c.setPaused(true)
	case "resume":
		c.setPaused(false)
	default:
		return false
	}
	return true
}
