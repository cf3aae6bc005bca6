// Command plot-emg renders EMG traces from a CSV export to an image file,
// or shows them in a preview window when no output is given.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/sirupsen/logrus"

	"github.com/itohio/emgplot/pkg/config"
	"github.com/itohio/emgplot/pkg/preview"
	"github.com/itohio/emgplot/pkg/render"
	"github.com/itohio/emgplot/pkg/trace"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "plot-emg: %v\n", err)
		return 2
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "plot-emg: failed to load configuration: %v\n", err)
		return 1
	}
	opts.apply(cfg)
	if err := cfg.Log.ApplyLogging(); err != nil {
		fmt.Fprintf(stderr, "plot-emg: %v\n", err)
		return 2
	}
	logrus.SetOutput(stderr)
	logger := logrus.WithField("tag", "plot-emg")

	if opts.info {
		summary, err := trace.SummarizeFile(opts.csvPath, cfg.Plot.StimulusColumn, trace.DefaultSummaryRows)
		if err != nil {
			logger.WithError(err).Error("failed to read CSV")
			return 1
		}
		fmt.Fprintln(stdout, summary.String())
		return 0
	}

	req, err := opts.request(cfg)
	if err != nil {
		logger.WithError(err).Error("invalid options")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := render.Render(ctx, req)
	if err != nil {
		logger.WithError(err).Error("failed to plot EMG trace")
		return 1
	}

	if req.Output == "" {
		showPreview(cfg, opts.csvPath, res)
		return 0
	}

	fmt.Fprintf(stdout, "Saved EMG trace to %s\n", res.Files[0])
	for _, f := range res.Files[1:] {
		fmt.Fprintf(stdout, "Saved axes to %s\n", f)
	}
	return 0
}

// showPreview opens a window with the rendered image and blocks until it
// is closed.
func showPreview(cfg *config.Config, title string, res *render.Result) {
	application := app.NewWithID("com.itohio.emgplot.cli")
	window := application.NewWindow(fmt.Sprintf("EMG trace - %s", title))

	w := preview.New(fyne.NewSize(float32(cfg.Preview.Width), float32(cfg.Preview.Height)))
	w.SetResult(res)

	window.SetContent(w)
	window.Resize(fyne.NewSize(float32(cfg.Preview.Width), float32(cfg.Preview.Height)))
	window.CenterOnScreen()
	window.ShowAndRun()
}
