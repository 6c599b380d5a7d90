package display

import (
	"fmt"
	"io"
	"os"
)

// Sink receives one snapshot per tick. Render cost is allowed to be
// sub-second; the control loop absorbs it within the tick interval.
type Sink interface {
	Init() error
	Render(s Snapshot) error
	Close() error
}

// PanelSink rasterizes snapshots and writes the packed framebuffer to the
// display device file; the e-paper driver picks it up from there.
type PanelSink struct {
	device   string
	renderer *Renderer
	f        *os.File
}

var _ Sink = (*PanelSink)(nil)

func NewPanelSink(width, height int, device string) *PanelSink {
	return &PanelSink{
		device:   device,
		renderer: NewRenderer(width, height),
	}
}

// Init opens the display device. Failure here is fatal for the caller: the
// panel is the only user-facing surface the box has.
func (p *PanelSink) Init() error {
	f, err := os.OpenFile(p.device, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open display device: %w", err)
	}
	p.f = f
	return nil
}

func (p *PanelSink) Render(s Snapshot) error {
	if p.f == nil {
		return fmt.Errorf("display device not initialized")
	}
	buf := Pack1bpp(p.renderer.Render(s))
	if _, err := p.f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	_, err := p.f.Write(buf)
	return err
}

func (p *PanelSink) Close() error {
	if p.f == nil {
		return nil
	}
	err := p.f.Close()
	p.f = nil
	return err
}

// MockSink records rendered snapshots for tests.
type MockSink struct {
	InitErr   error
	RenderErr error

	Snapshots []Snapshot
	Closed    bool
}

var _ Sink = (*MockSink)(nil)

func (m *MockSink) Init() error { return m.InitErr }

func (m *MockSink) Render(s Snapshot) error {
	if m.RenderErr != nil {
		return m.RenderErr
	}
	m.Snapshots = append(m.Snapshots, s)
	return nil
}

func (m *MockSink) Close() error {
	m.Closed = true
	return nil
}

// Last returns the most recently rendered snapshot, or a zero value.
func (m *MockSink) Last() Snapshot {
	if len(m.Snapshots) == 0 {
		return Snapshot{}
	}
	return m.Snapshots[len(m.Snapshots)-1]
}
