package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"github.com/itohio/emgplot/pkg/config"
	"github.com/itohio/emgplot/pkg/preview"
	"github.com/itohio/emgplot/pkg/render"
	"github.com/itohio/emgplot/pkg/trace"
	"github.com/itohio/emgplot/pkg/worker"
)

func main() {
	var (
		configFlag   = flag.String("config", "config.yaml", "Configuration file path")
		logLevelFlag = flag.String("log-level", "", "Log level override (debug, info, warn, error)")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *logLevelFlag != "" {
		cfg.Log.Level = *logLevelFlag
	}
	if err := cfg.Log.ApplyLogging(); err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	application := app.NewWithID("com.itohio.emgplot")

	window := application.NewWindow("EMG Trace Plotter")
	window.Resize(fyne.NewSize(1100, 750))
	window.CenterOnScreen()

	state := &appState{
		cfg:     cfg,
		cfgPath: *configFlag,
		window:  window,
		runner:  worker.New(nil),
		form:    newForm(),
		log:     newStatusLog(),
		preview: preview.New(fyne.NewSize(float32(cfg.Preview.Width), float32(cfg.Preview.Height))),
		logger:  logrus.WithField("tag", "gui"),
	}
	window.SetContent(state.layout())
	state.form.write(optionsFromConfig(cfg))
	if args := flag.Args(); len(args) > 0 {
		state.selectCSV(args[0])
	}
	window.SetCloseIntercept(state.onClose)
	state.log.add("Ready")
	window.ShowAndRun()
}

// appState holds the application state.
type appState struct {
	cfg     *config.Config
	cfgPath string
	window  fyne.Window
	runner  *worker.Runner
	logger  *logrus.Entry

	form     *form
	log      *statusLog
	preview  *preview.Widget
	summary  *widget.Label
	progress *widget.ProgressBarInfinite

	previewBtn  *widget.Button
	generateBtn *widget.Button
}

func (s *appState) layout() fyne.CanvasObject {
	s.summary = widget.NewLabel("No file selected")
	s.summary.Wrapping = fyne.TextWrapWord

	browseCSV := widget.NewButtonWithIcon("", theme.FolderOpenIcon(), s.browseCSV)
	filePanel := widget.NewCard("Data", "", container.NewVBox(
		container.NewBorder(nil, nil, nil, browseCSV, s.form.csvPath),
		s.summary,
	))

	browseOutput := widget.NewButtonWithIcon("", theme.DocumentSaveIcon(), s.browseOutput)
	outputPanel := widget.NewCard("Output", "", container.NewVBox(
		container.NewBorder(nil, nil, nil, browseOutput, s.form.output),
		s.form.showOnly,
	))

	s.previewBtn = widget.NewButtonWithIcon("Preview", theme.VisibilityIcon(), s.onPreview)
	s.generateBtn = widget.NewButtonWithIcon("Generate", theme.MediaPlayIcon(), s.onGenerate)
	s.generateBtn.Importance = widget.HighImportance
	saveBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), s.onSaveDefaults)

	s.progress = widget.NewProgressBarInfinite()
	s.progress.Stop()
	s.progress.Hide()

	controls := container.NewVBox(
		filePanel,
		s.form.tabs,
		outputPanel,
		container.NewBorder(nil, nil, saveBtn, nil, container.NewGridWithColumns(2, s.previewBtn, s.generateBtn)),
		s.progress,
	)

	logScroll := container.NewVScroll(s.log.label)
	logScroll.SetMinSize(fyne.NewSize(0, 120))

	split := container.NewHSplit(
		container.NewVScroll(controls),
		container.NewBorder(nil, logScroll, nil, nil, s.preview),
	)
	split.Offset = 0.4
	return split
}

// selectCSV sets the CSV path, suggests an output name and loads the
// summary in the background.
func (s *appState) selectCSV(path string) {
	s.form.csvPath.SetText(path)
	if s.form.output.Text == "" {
		s.form.output.SetText(defaultOutput(path))
	}
	s.summary.SetText("Reading " + filepath.Base(path) + "...")

	stimCol := s.form.stimulusColumn.Text
	go func() {
		summary, err := trace.SummarizeFile(path, stimCol, trace.DefaultSummaryRows)
		fyne.Do(func() {
			if err != nil {
				s.summary.SetText(fmt.Sprintf("Error reading file: %v", err))
				s.log.add(fmt.Sprintf("Failed to read %s: %v", path, err))
				return
			}
			s.summary.SetText(summary.String())
			s.log.add("Loaded " + filepath.Base(path))
		})
	}()
}

// defaultOutput derives "<dir>/<name>_trace.png" from a CSV path.
func defaultOutput(csvPath string) string {
	base := strings.TrimSuffix(csvPath, filepath.Ext(csvPath))
	return base + "_trace.png"
}

func (s *appState) browseCSV() {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, s.window)
			return
		}
		if rc == nil {
			return
		}
		defer rc.Close()
		s.selectCSV(rc.URI().Path())
	}, s.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".csv"}))
	d.Show()
}

func (s *appState) browseOutput() {
	d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, s.window)
			return
		}
		if wc == nil {
			return
		}
		// The renderer creates the file itself.
		path := wc.URI().Path()
		wc.Close()
		s.form.output.SetText(path)
		s.form.showOnly.SetChecked(false)
	}, s.window)
	d.SetFilter(storage.NewExtensionFileFilter(extensions()))
	if s.form.output.Text != "" {
		d.SetFileName(filepath.Base(s.form.output.Text))
	}
	d.Show()
}

func extensions() []string {
	var exts []string
	for _, f := range render.Formats() {
		exts = append(exts, "."+f)
	}
	return exts
}

func (s *appState) setBusy(busy bool) {
	if busy {
		s.previewBtn.Disable()
		s.generateBtn.Disable()
		s.progress.Show()
		s.progress.Start()
		return
	}
	s.previewBtn.Enable()
	s.generateBtn.Enable()
	s.progress.Stop()
	s.progress.Hide()
}

func (s *appState) showError(err error) {
	s.logger.WithError(err).Warn("operation failed")
	s.log.add("Error: " + err.Error())
	dialog.ShowError(err, s.window)
}

func (s *appState) onPreview() {
	req, err := s.form.read().buildRequest(s.cfg, false)
	if err != nil {
		s.showError(err)
		return
	}
	s.renderInline(req)
}

// renderInline renders to the preview pane without the worker.
func (s *appState) renderInline(req render.Request) {
	s.setBusy(true)
	s.log.add("Rendering preview...")
	go func() {
		res, err := render.Render(context.Background(), req)
		fyne.Do(func() {
			s.setBusy(false)
			if err != nil {
				s.showError(fmt.Errorf("failed to render preview: %w", err))
				return
			}
			s.preview.SetResult(res)
			s.log.add("Preview: " + preview.Caption(res))
		})
	}()
}

func (s *appState) onGenerate() {
	req, err := s.form.read().buildRequest(s.cfg, true)
	if err != nil {
		s.showError(err)
		return
	}
	if req.Output == "" {
		s.renderInline(req)
		return
	}

	job, err := s.runner.Start(context.Background(), req)
	if err != nil {
		s.showError(err)
		return
	}
	s.setBusy(true)
	s.logger.WithFields(logrus.Fields{"job": job.ID, "output": req.Output}).Info("generating")

	go func() {
		for ev := range job.Events() {
			fyne.Do(func() {
				s.handleEvent(ev)
			})
		}
	}()
}

func (s *appState) handleEvent(ev worker.Event) {
	switch ev.Kind {
	case worker.Progress:
		s.log.add(ev.Message)
	case worker.Done:
		s.setBusy(false)
		for _, f := range ev.Result.Files {
			s.log.add("Saved " + f)
		}
	case worker.Failed:
		s.setBusy(false)
		s.showError(fmt.Errorf("failed to generate plot: %w", ev.Err))
	}
}

// onSaveDefaults stores the current form as the configuration defaults.
func (s *appState) onSaveDefaults() {
	cfg, err := s.form.read().toConfig(s.cfg)
	if err != nil {
		s.showError(err)
		return
	}
	if err := cfg.Save(s.cfgPath); err != nil {
		s.showError(fmt.Errorf("failed to save config: %w", err))
		return
	}
	s.cfg = cfg
	s.log.add("Saved defaults to " + s.cfgPath)
}

// onClose asks before abandoning a running job.
func (s *appState) onClose() {
	if !s.runner.Running() {
		s.window.Close()
		return
	}
	dialog.ShowConfirm("Quit", "A plot is still being generated. Quit anyway?", func(ok bool) {
		if !ok {
			return
		}
		s.runner.Cancel()
		s.window.Close()
	}, s.window)
}
