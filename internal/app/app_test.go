package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfiaux/inkamp/internal/catalog"
	"github.com/pfiaux/inkamp/internal/config"
	"github.com/pfiaux/inkamp/internal/decoder"
	"github.com/pfiaux/inkamp/internal/display"
	"github.com/pfiaux/inkamp/internal/engine"
)

type fakeInput struct {
	ch       chan byte
	stopped  bool
	startErr error
}

func newFakeInput(keys ...byte) *fakeInput {
	f := &fakeInput{ch: make(chan byte, 64)}
	for _, k := range keys {
		f.ch <- k
	}
	return f
}

func (f *fakeInput) Start() error        { return f.startErr }
func (f *fakeInput) Events() <-chan byte { return f.ch }
func (f *fakeInput) Stop()               { f.stopped = true }

type stubCoord struct {
	autoID    string
	scanID    string
	scanCalls int
}

func (s *stubCoord) AutoConnect(context.Context) (string, bool) {
	return s.autoID, s.autoID != ""
}

func (s *stubCoord) ScanAndPair(context.Context, time.Duration) (string, bool) {
	s.scanCalls++
	return s.scanID, s.scanID != ""
}

func musicDir(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	names := []string{"01 first.mp3", "02 second.mp3", "03 third.mp3", "04 fourth.mp3"}
	require.LessOrEqual(t, n, len(names))
	for i := 0; i < n; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, names[i]), []byte("x"), 0o644))
	}
	return dir
}

func testConfig(dir string) *config.Config {
	return &config.Config{
		MusicDir:    dir,
		Decoder:     "mpg123",
		TickSeconds: 0.01,
		Bluetooth:   config.BluetoothConfig{ScanTimeoutSeconds: 1},
	}
}

func newTestApp(cfg *config.Config, in *fakeInput, coord *stubCoord) (*App, *decoder.MockStarter, *display.MockSink) {
	starter := &decoder.MockStarter{}
	sink := &display.MockSink{}
	a := New(cfg, starter, in, coord, sink)
	a.sleep = func(context.Context, time.Duration) {}
	return a, starter, sink
}

// quitAfter arranges for 'q' to be injected once n full ticks have slept.
func quitAfter(a *App, in *fakeInput, n int) {
	ticks := 0
	a.sleep = func(context.Context, time.Duration) {
		ticks++
		if ticks == n {
			in.ch <- 'q'
		}
	}
}

func TestRun_EmptyCatalog(t *testing.T) {
	in := newFakeInput()
	a, starter, sink := newTestApp(testConfig(musicDir(t, 0)), in, &stubCoord{})

	require.NoError(t, a.Run(context.Background()))

	require.Len(t, sink.Snapshots, 1)
	assert.Equal(t, "No tracks", sink.Snapshots[0].Title)
	assert.Equal(t, "BT: none", sink.Snapshots[0].BTStatus)
	assert.Empty(t, starter.Started())
	assert.True(t, sink.Closed)
}

func TestRun_QuitKeyCleansUp(t *testing.T) {
	in := newFakeInput('q')
	a, starter, sink := newTestApp(testConfig(musicDir(t, 2)), in, &stubCoord{})

	require.NoError(t, a.Run(context.Background()))

	require.NotNil(t, starter.Last())
	assert.True(t, starter.Last().Stopped(), "decoder must be terminated on exit")
	assert.True(t, in.stopped, "terminal must be restored on exit")
	assert.True(t, sink.Closed)
}

func TestRun_QuitHaltsMidDrain(t *testing.T) {
	// 'n' is queued behind 'q' in the same batch and must never be acted on.
	in := newFakeInput('q', 'n')
	a, starter, _ := newTestApp(testConfig(musicDir(t, 2)), in, &stubCoord{})

	require.NoError(t, a.Run(context.Background()))

	assert.Len(t, starter.Started(), 1, "only the startup track may have been played")
}

func TestRun_DisplayInitIsFatal(t *testing.T) {
	in := newFakeInput()
	a, starter, sink := newTestApp(testConfig(musicDir(t, 1)), in, &stubCoord{})
	sink.InitErr = errors.New("no panel driver")

	assert.Error(t, a.Run(context.Background()))
	assert.Empty(t, starter.Started())
}

func TestRun_SpawnFailureIsFatal(t *testing.T) {
	in := newFakeInput()
	a, starter, _ := newTestApp(testConfig(musicDir(t, 1)), in, &stubCoord{})
	starter.StartErr = errors.New("exec: mpg123: not found")

	assert.Error(t, a.Run(context.Background()))
	assert.True(t, in.stopped)
}

func TestRun_AutoConnectShownOnDisplay(t *testing.T) {
	in := newFakeInput()
	a, _, sink := newTestApp(testConfig(musicDir(t, 1)), in, &stubCoord{autoID: "AA:BB"})
	quitAfter(a, in, 1)

	require.NoError(t, a.Run(context.Background()))

	require.NotEmpty(t, sink.Snapshots)
	assert.Equal(t, "BT: AA:BB", sink.Last().BTStatus)
	assert.Equal(t, "01 first", sink.Snapshots[0].Title)
}

func TestRun_CancelledContextStopsLoop(t *testing.T) {
	in := newFakeInput()
	a, starter, _ := newTestApp(testConfig(musicDir(t, 1)), in, &stubCoord{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, a.Run(ctx))
	require.NotNil(t, starter.Last())
	assert.True(t, starter.Last().Stopped())
}

// tickApp builds an app mid-flight for single-tick tests.
func tickApp(t *testing.T, tracks []catalog.Track, in *fakeInput, coord *stubCoord) (*App, *decoder.MockStarter, *display.MockSink) {
	t.Helper()
	a, starter, sink := newTestApp(testConfig("unused"), in, coord)
	a.eng = engine.New(tracks, starter)
	require.NoError(t, a.eng.PlayCurrent())
	return a, starter, sink
}

func threeTracks() []catalog.Track {
	return []catalog.Track{
		{Path: "/m/a.mp3", Title: "A", Duration: 30},
		{Path: "/m/b.mp3", Title: "B", Duration: 45},
		{Path: "/m/c.mp3", Title: "C", Duration: 60},
	}
}

func TestTick_AutoAdvanceExactlyOnce(t *testing.T) {
	in := newFakeInput()
	a, starter, _ := tickApp(t, threeTracks(), in, &stubCoord{})

	starter.Last().SimulateFinished()
	require.NoError(t, a.tick(context.Background()))
	assert.Equal(t, 1, a.eng.Cursor())

	// The fresh decoder has not finished: no further advance.
	require.NoError(t, a.tick(context.Background()))
	assert.Equal(t, 1, a.eng.Cursor())
}

func TestTick_NextKey(t *testing.T) {
	in := newFakeInput('n')
	a, _, sink := tickApp(t, threeTracks(), in, &stubCoord{})

	require.NoError(t, a.tick(context.Background()))

	assert.Equal(t, 1, a.eng.Cursor())
	assert.Equal(t, "B", sink.Last().Title)
	assert.Equal(t, "Next track", sink.Last().Info)

	// Info messages are single-shot.
	require.NoError(t, a.tick(context.Background()))
	assert.Empty(t, sink.Last().Info)
}

func TestTick_PreviousKeyWrapsAround(t *testing.T) {
	in := newFakeInput('P')
	a, _, sink := tickApp(t, threeTracks(), in, &stubCoord{})

	require.NoError(t, a.tick(context.Background()))

	assert.Equal(t, 2, a.eng.Cursor())
	assert.Equal(t, "Previous track", sink.Last().Info)
}

func TestTick_SpaceTogglesPause(t *testing.T) {
	in := newFakeInput(' ')
	a, starter, sink := tickApp(t, threeTracks(), in, &stubCoord{})

	require.NoError(t, a.tick(context.Background()))

	assert.True(t, starter.Last().Suspended)
	assert.Equal(t, "Play/Pause", sink.Last().Info)
}

func TestTick_UnknownKeysIgnored(t *testing.T) {
	in := newFakeInput('x', '?', 0x1b)
	a, _, _ := tickApp(t, threeTracks(), in, &stubCoord{})

	require.NoError(t, a.tick(context.Background()))
	assert.Equal(t, 0, a.eng.Cursor())
	assert.False(t, a.quit)
}

func TestTick_ScanSuccess(t *testing.T) {
	in := newFakeInput('s')
	coord := &stubCoord{scanID: "NE:W1"}
	a, _, sink := tickApp(t, threeTracks(), in, coord)

	require.NoError(t, a.tick(context.Background()))

	require.GreaterOrEqual(t, len(sink.Snapshots), 2)
	// Interim snapshot goes out before the blocking scan.
	assert.Equal(t, "Scanning...", sink.Snapshots[0].Info)
	assert.Equal(t, 1, coord.scanCalls)
	assert.Equal(t, "NE:W1", a.device)
	assert.Equal(t, "Connected NE:W1", sink.Last().Info)
	assert.Equal(t, "BT: NE:W1", sink.Last().BTStatus)
}

func TestTick_ScanFailure(t *testing.T) {
	in := newFakeInput('S')
	a, _, sink := tickApp(t, threeTracks(), in, &stubCoord{})
	a.device = "AA:BB" // previously connected

	require.NoError(t, a.tick(context.Background()))

	assert.Empty(t, a.device)
	assert.Equal(t, "No BT device found", sink.Last().Info)
	assert.Equal(t, "BT: none", sink.Last().BTStatus)
}

func TestTick_NextSpawnFailurePropagates(t *testing.T) {
	in := newFakeInput('n')
	a, starter, _ := tickApp(t, threeTracks(), in, &stubCoord{})
	starter.StartErr = errors.New("decoder gone")

	assert.Error(t, a.tick(context.Background()))
}
