package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultSummaryRows is how many data rows Summarize inspects by default.
const DefaultSummaryRows = 1000

// Summary describes the head of a CSV file for display before plotting.
type Summary struct {
	File       string
	Columns    []string
	Rows       int   // Rows inspected
	Recordings int   // -1 when recording_index is absent
	Channels   []int // nil when channel_index is absent

	HasStimulus              bool
	StimulusMin, StimulusMax float64
	HasTime                  bool
	TimeMin, TimeMax         float64
}

// SummarizeFile summarizes the first maxRows rows of path.
func SummarizeFile(path, stimulusColumn string, maxRows int) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	s, err := Summarize(f, stimulusColumn, maxRows)
	if err != nil {
		return nil, err
	}
	s.File = filepath.Base(path)
	return s, nil
}

// Summarize reads at most maxRows data rows (DefaultSummaryRows when <= 0).
// Unlike Load it tolerates missing columns and reports what it finds.
func Summarize(r io.Reader, stimulusColumn string, maxRows int) (*Summary, error) {
	if maxRows <= 0 {
		maxRows = DefaultSummaryRows
	}
	if stimulusColumn == "" {
		stimulusColumn = DefaultStimulusColumn
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	col := func(name string) int {
		for i, c := range header {
			if c == name {
				return i
			}
		}
		return -1
	}
	recCol, chCol, stimCol, timeCol := col(ColRecording), col(ColChannel), col(stimulusColumn), col(ColTime)

	s := &Summary{Columns: header, Recordings: -1}
	recordings := map[int]struct{}{}
	channels := map[int]struct{}{}
	stimLo, stimHi := math.Inf(1), math.Inf(-1)
	timeLo, timeHi := math.Inf(1), math.Inf(-1)

	for s.Rows < maxRows {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", s.Rows+1, err)
		}
		s.Rows++

		if recCol >= 0 {
			if v, err := parseIndex(record[recCol]); err == nil {
				recordings[v] = struct{}{}
			}
		}
		if chCol >= 0 {
			if v, err := parseIndex(record[chCol]); err == nil {
				channels[v] = struct{}{}
			}
		}
		if stimCol >= 0 {
			if v, ok := parseFloat(record[stimCol]); ok && !math.IsNaN(v) {
				stimLo, stimHi = math.Min(stimLo, v), math.Max(stimHi, v)
			}
		}
		if timeCol >= 0 {
			if v, ok := parseFloat(record[timeCol]); ok && !math.IsNaN(v) {
				timeLo, timeHi = math.Min(timeLo, v), math.Max(timeHi, v)
			}
		}
	}

	if recCol >= 0 {
		s.Recordings = len(recordings)
	}
	if chCol >= 0 {
		s.Channels = make([]int, 0, len(channels))
		for c := range channels {
			s.Channels = append(s.Channels, c)
		}
		sort.Ints(s.Channels)
	}
	if stimLo <= stimHi {
		s.HasStimulus, s.StimulusMin, s.StimulusMax = true, stimLo, stimHi
	}
	if timeLo <= timeHi {
		s.HasTime, s.TimeMin, s.TimeMax = true, timeLo, timeHi
	}
	return s, nil
}

// String renders the summary the way the file panel shows it.
func (s *Summary) String() string {
	var b strings.Builder
	if s.File != "" {
		fmt.Fprintf(&b, "File: %s\n", s.File)
	}
	fmt.Fprintf(&b, "Columns: %s\n", strings.Join(s.Columns, ", "))
	if s.Recordings >= 0 {
		fmt.Fprintf(&b, "Number of recordings: %d\n", s.Recordings)
	}
	if s.Channels != nil {
		fmt.Fprintf(&b, "Available channels: %v\n", s.Channels)
	}
	if s.HasStimulus {
		fmt.Fprintf(&b, "Stimulus range: %.2f - %.2f V\n", s.StimulusMin, s.StimulusMax)
	}
	if s.HasTime {
		fmt.Fprintf(&b, "Time range: %.1f - %.1f ms", s.TimeMin, s.TimeMax)
	}
	return strings.TrimRight(b.String(), "\n")
}
