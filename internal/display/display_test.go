package display

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatClock(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{0, "0:00"},
		{9, "0:09"},
		{61, "1:01"},
		{600, "10:00"},
		{-3, "0:00"},
	}
	for _, tt := range tests {
		if got := FormatClock(tt.secs); got != tt.want {
			t.Errorf("FormatClock(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestSnapshot_Timeline(t *testing.T) {
	s := Snapshot{Elapsed: 75, Duration: 210}
	assert.Equal(t, "1:15 / 3:30", s.Timeline())

	s.Duration = 0
	assert.Equal(t, "1:15 / --:--", s.Timeline())
}

func TestRenderer_DrawsInk(t *testing.T) {
	r := NewRenderer(250, 122)
	img := r.Render(Snapshot{
		Title:    "Some Song",
		Elapsed:  42,
		Duration: 180,
		BTStatus: "BT: none",
	})

	bounds := img.Bounds()
	assert.Equal(t, 250, bounds.Dx())
	assert.Equal(t, 122, bounds.Dy())

	// Text must leave at least some black pixels behind.
	ink := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if c := color.GrayModel.Convert(img.At(x, y)).(color.Gray); c.Y < 128 {
				ink++
			}
		}
	}
	assert.Greater(t, ink, 50)
}

func TestRenderer_FitTruncates(t *testing.T) {
	r := NewRenderer(70, 122) // 62/7 = 8 chars
	assert.Equal(t, "a much l", r.fit("a much longer title than fits"))
	assert.Equal(t, "short", r.fit("short"))
}

func TestPack1bpp(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 16, 2))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetGray(0, 0, color.Gray{Y: 0})  // first pixel, first row
	img.SetGray(15, 1, color.Gray{Y: 0}) // last pixel, second row

	buf := Pack1bpp(img)
	require.Len(t, buf, 4) // 2 bytes per row, 2 rows
	assert.Equal(t, []byte{0x7f, 0xff, 0xff, 0xfe}, buf)
}

func TestPanelSink_WritesPackedFrame(t *testing.T) {
	device := filepath.Join(t.TempDir(), "fb1")
	require.NoError(t, os.WriteFile(device, nil, 0o644))

	sink := NewPanelSink(250, 122, device)
	require.NoError(t, sink.Init())
	defer sink.Close()

	require.NoError(t, sink.Render(Snapshot{Title: "x"}))

	data, err := os.ReadFile(device)
	require.NoError(t, err)
	assert.Len(t, data, ((250+7)/8)*122)
}

func TestPanelSink_InitFailsOnMissingDevice(t *testing.T) {
	sink := NewPanelSink(250, 122, filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, sink.Init())
}
