// Package input bridges blocking keyboard reads into a channel the control
// loop can drain without blocking. Without an interactive terminal the
// listener simply stays silent: the box keeps running on auto-play alone.
package input

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/term"
)

// Buffered enough that a burst of key presses between two ticks is never
// dropped in practice; overflow drops rather than blocks the reader.
const eventBufferSize = 64

type Listener struct {
	f      *os.File
	events chan byte

	mu       sync.Mutex
	oldState *term.State
	started  bool
}

func New() *Listener {
	return NewFrom(os.Stdin)
}

func NewFrom(f *os.File) *Listener {
	return &Listener{
		f:      f,
		events: make(chan byte, eventBufferSize),
	}
}

// Events returns the channel of raw key bytes. It is never closed; the
// consumer drains whatever is buffered and moves on.
func (l *Listener) Events() <-chan byte {
	return l.events
}

// Start switches the terminal to raw mode and begins reading single bytes
// in the background. A non-terminal stdin is degraded-input mode, not an
// error.
func (l *Listener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return nil
	}

	fd := int(l.f.Fd())
	if !term.IsTerminal(fd) {
		slog.Info("stdin is not a terminal, keyboard input disabled")
		return nil
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		slog.Warn("could not enter raw mode, keyboard input disabled", "error", err)
		return nil
	}
	l.oldState = oldState
	l.started = true

	go l.readLoop(l.f)
	return nil
}

func (l *Listener) readLoop(r io.Reader) {
	reader := bufio.NewReader(r)
	for {
		b, err := reader.ReadByte()
		if err != nil {
			return
		}
		select {
		case l.events <- b:
		default:
			// Consumer is behind; dropping beats blocking the reader.
		}
	}
}

// Stop restores the terminal mode. Safe to call multiple times and on a
// listener that never started; the app defers it on every exit path.
func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.oldState == nil {
		return
	}
	if err := term.Restore(int(l.f.Fd()), l.oldState); err != nil {
		slog.Warn("failed to restore terminal state", "error", err)
	}
	l.oldState = nil
}
