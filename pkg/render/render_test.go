package render

import (
	"context"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/emgplot/pkg/config"
	"github.com/itohio/emgplot/pkg/scalebar"
	"github.com/itohio/emgplot/pkg/trace"
)

const testCSV = `recording_index,channel_index,time_point,amplitude_mV,stimulus_V
0,1,-1.0,0.5,1.0
0,1,0.0,2.0,1.0
0,1,1.0,-1.0,1.0
0,1,2.0,0.0,1.0
1,1,-1.0,0.1,1.5
1,1,0.0,4.0,1.5
1,1,1.0,-2.0,1.5
1,1,2.0,0.0,1.5
2,1,-1.0,0.0,2.0
2,1,0.0,6.0,2.0
2,1,1.0,-3.0,2.0
2,1,2.0,0.0,2.0
0,2,0.0,9.0,1.0
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func ptr(v float64) *float64 { return &v }

// newTestRequest returns a small request so rendering stays fast.
func newTestRequest(t *testing.T, csvPath string) Request {
	t.Helper()
	cfg := config.Default()
	cfg.Plot.Width, cfg.Plot.Height, cfg.Plot.DPI = 2, 1, 50
	cfg.Preview.DPI = 50
	req, err := NewRequest(cfg, csvPath)
	require.NoError(t, err)
	return req
}

func TestNewRequest(t *testing.T) {
	cfg := config.Default()
	req, err := NewRequest(cfg, "data.csv")
	require.NoError(t, err)

	assert.Equal(t, "data.csv", req.CSVPath)
	assert.Equal(t, 1, req.Channel)
	assert.Equal(t, Single{Recording: 0, Color: "gold", FixedY: true}, req.Mode)
	assert.Equal(t, Figure{Width: 10, Height: 4, DPI: 300}, req.Figure)
	assert.True(t, req.HideAxes)
	assert.True(t, req.Transparent)
	assert.True(t, req.AxesFile)
	assert.Nil(t, req.ScaleBars)

	cfg.Plot.Overlay = true
	cfg.ScaleBar.OnTrace = true
	cfg.ScaleBar.Corner = "upper-right"
	req, err = NewRequest(cfg, "data.csv")
	require.NoError(t, err)
	assert.Equal(t, Overlay{StimulusColumn: "stimulus_V", ColorMap: "viridis", Colorbar: false}, req.Mode)
	require.NotNil(t, req.ScaleBars)
	assert.Equal(t, scalebar.UpperRight, req.ScaleBars.Corner)

	cfg.ScaleBar.Corner = "middle"
	_, err = NewRequest(cfg, "data.csv")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := newTestRequest(t, "data.csv")
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		modify func(r *Request)
	}{
		{name: "no csv", modify: func(r *Request) { r.CSVPath = "" }},
		{name: "no mode", modify: func(r *Request) { r.Mode = nil }},
		{name: "zero line width", modify: func(r *Request) { r.LineWidth = 0 }},
		{name: "NaN line width", modify: func(r *Request) { r.LineWidth = math.NaN() }},
		{name: "zero width", modify: func(r *Request) { r.Figure.Width = 0 }},
		{name: "zero dpi", modify: func(r *Request) { r.Figure.DPI = 0 }},
		{name: "unsupported format", modify: func(r *Request) { r.Output = "trace.bmp" }},
		{name: "bad axes figure", modify: func(r *Request) { r.Output = "trace.png"; r.AxesFigure.Height = -1 }},
		{
			name: "color min above max",
			modify: func(r *Request) {
				r.Mode = Overlay{ColorMap: "viridis", CMin: ptr(3), CMax: ptr(1)}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.modify(&req)
			assert.Error(t, req.Validate())
		})
	}
}

func TestValidate_AxesFigureIgnoredForPreview(t *testing.T) {
	req := newTestRequest(t, "data.csv")
	req.AxesFigure = Figure{}
	assert.NoError(t, req.Validate())
}

func TestAxesPath(t *testing.T) {
	tests := []struct {
		output string
		want   string
	}{
		{output: "trace.png", want: "trace_axes.svg"},
		{output: filepath.Join("out", "trace.pdf"), want: filepath.Join("out", "trace_axes.svg")},
		{output: "my.trace.svg", want: "my.trace_axes.svg"},
		{output: "trace", want: "trace_axes.svg"},
	}

	for _, tt := range tests {
		t.Run(tt.output, func(t *testing.T) {
			assert.Equal(t, tt.want, AxesPath(tt.output))
		})
	}
}

func TestRender_Preview(t *testing.T) {
	csvPath := writeCSV(t, testCSV)
	req := newTestRequest(t, csvPath)

	res, err := Render(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, res.Image)
	assert.Empty(t, res.Files)
	b := res.Image.Bounds()
	assert.Equal(t, 100, b.Dx())
	assert.Equal(t, 50, b.Dy())

	entries, err := os.ReadDir(filepath.Dir(csvPath))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "preview must not write files")
}

func TestRender_Single(t *testing.T) {
	out := filepath.Join(t.TempDir(), "plots", "trace.png")
	req := newTestRequest(t, writeCSV(t, testCSV))
	req.Mode = Single{Recording: 1, Color: "red", FixedY: true}
	req.Output = out

	res, err := Render(context.Background(), req)
	require.NoError(t, err)

	assert.Nil(t, res.Image)
	assert.Equal(t, []string{out, AxesPath(out)}, res.Files)
	assert.FileExists(t, out)
	assert.FileExists(t, AxesPath(out))

	require.Len(t, res.Traces, 1)
	assert.Equal(t, 1, res.Traces[0].Recording)
	assert.Equal(t, 4, res.Traces[0].Points)
	assert.True(t, math.IsNaN(res.Traces[0].Stimulus))

	// Channel 1 amplitudes span [-3, 6] across all recordings.
	assert.True(t, res.FixedY)
	assert.InDelta(t, -3.45, res.YMin, 1e-9)
	assert.InDelta(t, 6.45, res.YMax, 1e-9)
}

func TestRender_NoAxesFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "trace.svg")
	req := newTestRequest(t, writeCSV(t, testCSV))
	req.AxesFile = false
	req.Output = out

	res, err := Render(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{out}, res.Files)
	assert.NoFileExists(t, AxesPath(out))
}

func TestRender_FixedYDisabled(t *testing.T) {
	req := newTestRequest(t, writeCSV(t, testCSV))
	req.Mode = Single{Recording: 0, Color: "k", FixedY: false}

	res, err := Render(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, res.FixedY)
}

func TestRender_Overlay(t *testing.T) {
	out := filepath.Join(t.TempDir(), "overlay.pdf")
	req := newTestRequest(t, writeCSV(t, testCSV))
	req.Mode = Overlay{ColorMap: "viridis", Colorbar: true}
	req.Output = out

	res, err := Render(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, res.Traces, 3)
	assert.Equal(t, 1.0, res.ColorMin)
	assert.Equal(t, 2.0, res.ColorMax)
	assert.Equal(t, "stimulus_V", res.ColorbarLabel)

	seen := map[color.RGBA]bool{}
	for i, tr := range res.Traces {
		assert.Equal(t, i, tr.Recording)
		r, g, b, a := tr.Color.RGBA()
		seen[color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}] = true
	}
	assert.Len(t, seen, 3, "each stimulus gets its own color")
	assert.Equal(t, []float64{1, 1.5, 2}, []float64{res.Traces[0].Stimulus, res.Traces[1].Stimulus, res.Traces[2].Stimulus})
	assert.FileExists(t, out)
}

func TestRender_OverlayColorBounds(t *testing.T) {
	req := newTestRequest(t, writeCSV(t, testCSV))
	req.Mode = Overlay{ColorMap: "viridis", CMin: ptr(0), CMax: ptr(10)}

	res, err := Render(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.ColorMin)
	assert.Equal(t, 10.0, res.ColorMax)
}

func TestRender_OverlaySingleStimulus(t *testing.T) {
	csv := "recording_index,channel_index,time_point,amplitude_mV,stimulus_V\n" +
		"0,1,0,1,2.0\n0,1,1,2,2.0\n1,1,0,3,2.0\n1,1,1,4,2.0\n"
	out := filepath.Join(t.TempDir(), "flat.png")
	req := newTestRequest(t, writeCSV(t, csv))
	req.Mode = Overlay{ColorMap: "plasma", Colorbar: true}
	req.Output = out

	res, err := Render(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Traces, 2)
	assert.Equal(t, res.Traces[0].Color, res.Traces[1].Color)
	assert.FileExists(t, out)
}

func TestRender_OverlayMissingStimulus(t *testing.T) {
	csv := "recording_index,channel_index,time_point,amplitude_mV,stimulus_V\n" +
		"0,1,0,1,1.0\n0,1,1,2,1.0\n" +
		"1,1,0,3,\n1,1,1,4,2.0\n" +
		"2,1,0,5,2.0\n2,1,1,6,2.0\n"
	out := filepath.Join(t.TempDir(), "gray.png")
	req := newTestRequest(t, writeCSV(t, csv))
	req.Mode = Overlay{ColorMap: "viridis", Colorbar: true}
	req.Output = out

	res, err := Render(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Traces, 3)

	assert.True(t, math.IsNaN(res.Traces[1].Stimulus))
	assert.Equal(t, noStimulusColor, res.Traces[1].Color)
	assert.NotEqual(t, noStimulusColor, res.Traces[0].Color)
	assert.NotEqual(t, res.Traces[0].Color, res.Traces[2].Color)
	assert.Equal(t, 2, res.Traces[1].Points)
	assert.FileExists(t, out)
}

func TestRender_EmptySelection(t *testing.T) {
	out := filepath.Join(t.TempDir(), "empty.png")
	req := newTestRequest(t, writeCSV(t, testCSV))
	req.Channel = 7
	req.Output = out

	res, err := Render(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Traces[0].Points)
	assert.FileExists(t, out)
	assert.FileExists(t, AxesPath(out))
}

func TestRender_TimeWindow(t *testing.T) {
	req := newTestRequest(t, writeCSV(t, testCSV))
	req.TMin, req.TMax = ptr(0), ptr(1)
	req.Mode = Overlay{ColorMap: "coolwarm"}

	res, err := Render(context.Background(), req)
	require.NoError(t, err)
	for _, tr := range res.Traces {
		assert.Equal(t, 2, tr.Points, "recording %d", tr.Recording)
	}
}

func TestRender_TimeWindowAxesFile(t *testing.T) {
	csv := "recording_index,channel_index,time_point,amplitude_mV,stimulus_V\n" +
		"0,1,0,0,1\n0,1,10,1,1\n0,1,20,2,1\n0,1,80,50,1\n0,1,100,0,1\n" +
		"1,1,0,-10,2\n1,1,100,0,2\n"
	out := filepath.Join(t.TempDir(), "window.png")
	req := newTestRequest(t, writeCSV(t, csv))
	req.Mode = Single{Recording: 0, Color: "k", FixedY: true}
	req.TMin, req.TMax = ptr(0), ptr(20)
	req.Output = out

	res, err := Render(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Traces, 1)
	assert.Equal(t, 3, res.Traces[0].Points)

	// Vertical limits come from the whole channel, [-10, 50] padded by 5%.
	assert.True(t, res.FixedY)
	assert.InDelta(t, -13.0, res.YMin, 1e-9)
	assert.InDelta(t, 53.0, res.YMax, 1e-9)

	// The axes file is sized from the windowed rows: 20 ms by 2 mV.
	data, err := os.ReadFile(AxesPath(out))
	require.NoError(t, err)
	svg := string(data)
	assert.Contains(t, svg, scalebar.Format(scalebar.Nice(20), "ms"))
	assert.Contains(t, svg, scalebar.Format(scalebar.Nice(2), "mV"))
	assert.NotContains(t, svg, scalebar.Format(scalebar.Nice(100), "ms"))
	assert.NotContains(t, svg, scalebar.Format(scalebar.Nice(60), "mV"))
}

func TestRender_NaNSamples(t *testing.T) {
	csv := "recording_index,channel_index,time_point,amplitude_mV\n" +
		"0,1,0,1\n0,1,1,bad\n0,1,2,3\n0,1,3,4\n"
	out := filepath.Join(t.TempDir(), "gaps.png")
	req := newTestRequest(t, writeCSV(t, csv))
	req.Output = out

	_, err := Render(context.Background(), req)
	require.NoError(t, err)
	assert.FileExists(t, out)
}

func TestRender_ScaleBars(t *testing.T) {
	out := filepath.Join(t.TempDir(), "bars.svg")
	req := newTestRequest(t, writeCSV(t, testCSV))
	req.ScaleBars = &ScaleBars{Corner: scalebar.LowerRight, Color: "#336699"}
	req.Output = out

	_, err := Render(context.Background(), req)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ms")
	assert.Contains(t, string(data), "mV")
}

func TestRender_Errors(t *testing.T) {
	csvPath := writeCSV(t, testCSV)
	noStim := writeCSV(t, "recording_index,channel_index,time_point,amplitude_mV\n0,1,0,1\n")

	tests := []struct {
		name   string
		modify func(r *Request)
		want   string
	}{
		{
			name:   "missing file",
			modify: func(r *Request) { r.CSVPath = filepath.Join(t.TempDir(), "nope.csv") },
		},
		{
			name:   "unknown colormap",
			modify: func(r *Request) { r.Mode = Overlay{ColorMap: "rainbowz"} },
			want:   "rainbowz",
		},
		{
			name:   "invalid color",
			modify: func(r *Request) { r.Mode = Single{Color: "not-a-color"} },
			want:   "not-a-color",
		},
		{
			name: "missing stimulus column",
			modify: func(r *Request) {
				r.CSVPath = noStim
				r.Mode = Overlay{ColorMap: "viridis"}
			},
			want: "stimulus_V",
		},
		{
			name:   "custom stimulus column missing",
			modify: func(r *Request) { r.Mode = Overlay{StimulusColumn: "stim_mA", ColorMap: "viridis"} },
			want:   "stim_mA",
		},
		{
			name:   "unsupported format",
			modify: func(r *Request) { r.Output = filepath.Join(t.TempDir(), "trace.gif") },
			want:   "gif",
		},
		{
			name: "invalid scale bar color",
			modify: func(r *Request) {
				r.ScaleBars = &ScaleBars{Color: "blurple-ish"}
			},
			want: "blurple-ish",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newTestRequest(t, csvPath)
			tt.modify(&req)

			res, err := Render(context.Background(), req)
			require.Error(t, err)
			assert.Nil(t, res)
			if tt.want != "" {
				assert.Contains(t, err.Error(), tt.want)
			}
		})
	}
}

func TestRender_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := newTestRequest(t, writeCSV(t, testCSV))
	req.Output = filepath.Join(t.TempDir(), "trace.png")

	_, err := Render(ctx, req)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, req.Output)
}

func TestSegments(t *testing.T) {
	rows := []struct{ t, a float64 }{
		{0, 1}, {1, math.NaN()}, {2, 3}, {3, 4}, {math.Inf(1), 5}, {5, 6},
	}
	recs := make([]trace.Record, 0, len(rows))
	for _, r := range rows {
		recs = append(recs, trace.Record{TimePoint: r.t, Amplitude: r.a})
	}

	segs := segments(recs)
	require.Len(t, segs, 3)
	assert.Len(t, segs[0], 1)
	assert.Len(t, segs[1], 2)
	assert.Len(t, segs[2], 1)
	assert.Empty(t, segments(nil))
}

func TestRender_AllFormats(t *testing.T) {
	csvPath := writeCSV(t, testCSV)
	dir := t.TempDir()

	for _, ext := range Formats() {
		t.Run(ext, func(t *testing.T) {
			req := newTestRequest(t, csvPath)
			req.AxesFile = false
			req.Transparent = ext != "jpg"
			req.Output = filepath.Join(dir, "trace."+ext)

			_, err := Render(context.Background(), req)
			require.NoError(t, err)

			info, err := os.Stat(req.Output)
			require.NoError(t, err)
			assert.Greater(t, info.Size(), int64(0))
		})
	}
}

func TestRender_AxesFileContent(t *testing.T) {
	out := filepath.Join(t.TempDir(), "trace.png")
	req := newTestRequest(t, writeCSV(t, testCSV))
	req.Labels = Labels{X: "Latency (s)", Y: "Signal (uV)"}
	req.Output = out

	_, err := Render(context.Background(), req)
	require.NoError(t, err)

	data, err := os.ReadFile(AxesPath(out))
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
	assert.Contains(t, string(data), "uV")
}
