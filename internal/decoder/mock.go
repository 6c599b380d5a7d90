package decoder

// MockStarter is a test double that hands out MockProcess instances.
type MockStarter struct {
	StartErr error

	started []string
	procs   []*MockProcess
}

var _ Starter = (*MockStarter)(nil)

func (s *MockStarter) Start(path string) (Process, error) {
	if s.StartErr != nil {
		return nil, s.StartErr
	}
	s.started = append(s.started, path)
	p := &MockProcess{}
	s.procs = append(s.procs, p)
	return p, nil
}

// Started returns the paths passed to Start, in order.
func (s *MockStarter) Started() []string { return s.started }

// Last returns the most recently started process, or nil.
func (s *MockStarter) Last() *MockProcess {
	if len(s.procs) == 0 {
		return nil
	}
	return s.procs[len(s.procs)-1]
}

// MockProcess records lifecycle calls.
type MockProcess struct {
	Suspended bool
	StopCalls int

	finished bool
	stopped  bool
}

var _ Process = (*MockProcess)(nil)

func (p *MockProcess) Suspend() error {
	p.Suspended = true
	return nil
}

func (p *MockProcess) Resume() error {
	p.Suspended = false
	return nil
}

func (p *MockProcess) Stop() {
	p.stopped = true
	p.StopCalls++
}

func (p *MockProcess) Finished() bool {
	return p.finished && !p.stopped
}

// SimulateFinished marks the process as having exited on its own.
func (p *MockProcess) SimulateFinished() { p.finished = true }

// Stopped reports whether Stop was called.
func (p *MockProcess) Stopped() bool { return p.stopped }
