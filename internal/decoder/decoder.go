// Package decoder controls the external decoder process that actually
// produces audio output. Exactly one process runs per track; it is driven
// through plain process signals (terminate, kill, suspend, resume) and
// polled for exit, never waited on from the control loop.
package decoder

import (
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// stopGrace bounds how long a graceful termination may take before the
// process is force-killed.
const stopGrace = 2 * time.Second

// Process is a running decoder.
type Process interface {
	// Suspend stops execution without terminating (pause).
	Suspend() error
	// Resume continues a suspended process.
	Resume() error
	// Stop terminates the process: graceful first, force-kill after the
	// grace period. Idempotent.
	Stop()
	// Finished reports whether the process exited on its own. It returns
	// false for a process that was stopped via Stop, and never blocks.
	Finished() bool
}

// Starter spawns a decoder process for a track file.
type Starter interface {
	Start(path string) (Process, error)
}

// ExecStarter starts the configured decoder binary with the track path as
// its sole argument. Output is discarded.
type ExecStarter struct {
	Bin string
}

var _ Starter = ExecStarter{}

func (s ExecStarter) Start(path string) (Process, error) {
	cmd := exec.Command(s.Bin, path)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start decoder %s: %w", s.Bin, err)
	}

	p := &execProcess{
		cmd:  cmd,
		done: make(chan struct{}),
	}
	go func() {
		// Reaps the child; exit status itself is not interesting here.
		_ = cmd.Wait()
		close(p.done)
	}()

	slog.Debug("decoder started", "bin", s.Bin, "path", path, "pid", cmd.Process.Pid)
	return p, nil
}

type execProcess struct {
	cmd  *exec.Cmd
	done chan struct{}

	mu      sync.Mutex
	stopped bool // Stop was requested; exit is ours, not the track ending
}

func (p *execProcess) Suspend() error {
	return p.signal(unix.SIGSTOP)
}

func (p *execProcess) Resume() error {
	return p.signal(unix.SIGCONT)
}

func (p *execProcess) signal(sig unix.Signal) error {
	select {
	case <-p.done:
		return nil
	default:
	}
	return p.cmd.Process.Signal(sig)
}

func (p *execProcess) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		p.awaitExit()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	select {
	case <-p.done:
		return
	default:
	}

	// A suspended process cannot act on SIGTERM, wake it first.
	_ = p.cmd.Process.Signal(unix.SIGCONT)
	_ = p.cmd.Process.Signal(unix.SIGTERM)
	p.awaitExit()
}

func (p *execProcess) awaitExit() {
	select {
	case <-p.done:
	case <-time.After(stopGrace):
		slog.Warn("decoder ignored SIGTERM, killing", "pid", p.cmd.Process.Pid)
		_ = p.cmd.Process.Kill()
		<-p.done
	}
}

func (p *execProcess) Finished() bool {
	p.mu.Lock()
	stopped := p.stopped
	p.mu.Unlock()
	if stopped {
		return false
	}

	select {
	case <-p.done:
		return true
	default:
		return false
	}
}
