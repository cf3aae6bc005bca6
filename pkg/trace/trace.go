package trace

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Column names every input file must carry.
const (
	ColRecording = "recording_index"
	ColChannel   = "channel_index"
	ColTime      = "time_point"
	ColAmplitude = "amplitude_mV"

	DefaultStimulusColumn = "stimulus_V"
)

// Record is one row of an EMG export.
type Record struct {
	RecordingIndex int
	ChannelIndex   int
	TimePoint      float64 // ms relative to the trigger
	Amplitude      float64 // mV
	Stimulus       float64 // NaN when the stimulus column is absent
}

// Table holds every record of a file in file order.
type Table struct {
	Columns        []string
	StimulusColumn string
	Records        []Record
}

// LoadOptions controls how the stimulus column is read.
type LoadOptions struct {
	StimulusColumn  string // Defaults to DefaultStimulusColumn
	RequireStimulus bool   // Overlay rendering needs it
}

// LoadFile opens path and reads it with Load.
func LoadFile(path string, opts LoadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	t, err := Load(f, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return t, nil
}

// Load parses an EMG CSV export. The first line is the header.
func Load(r io.Reader, opts LoadOptions) (*Table, error) {
	if opts.StimulusColumn == "" {
		opts.StimulusColumn = DefaultStimulusColumn
	}
	logger := logrus.WithField("tag", "trace.Load")

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("empty CSV: missing header")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}

	required := []string{ColChannel, ColTime, ColAmplitude, ColRecording}
	if opts.RequireStimulus {
		required = append(required, opts.StimulusColumn)
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}
	stimIdx, hasStim := idx[opts.StimulusColumn]

	t := &Table{
		Columns:        header,
		StimulusColumn: opts.StimulusColumn,
	}

	badFloats := make(map[string]int)
	parseF := func(record []string, col string) float64 {
		v, ok := parseFloat(record[idx[col]])
		if !ok {
			badFloats[col]++
		}
		return v
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}

		rec := Record{Stimulus: math.NaN()}
		if rec.ChannelIndex, err = parseIndex(record[idx[ColChannel]]); err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", line, ColChannel, err)
		}
		if rec.RecordingIndex, err = parseIndex(record[idx[ColRecording]]); err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", line, ColRecording, err)
		}
		rec.TimePoint = parseF(record, ColTime)
		rec.Amplitude = parseF(record, ColAmplitude)
		if hasStim {
			v, ok := parseFloat(record[stimIdx])
			if !ok {
				badFloats[opts.StimulusColumn]++
			}
			rec.Stimulus = v
		}

		t.Records = append(t.Records, rec)
	}

	for col, n := range badFloats {
		logger.WithFields(logrus.Fields{"column": col, "cells": n}).Warn("non-numeric cells read as NaN")
	}
	logger.WithFields(logrus.Fields{"rows": len(t.Records), "columns": len(header)}).Debug("loaded CSV")

	return t, nil
}

// Channel returns the rows of one channel in file order.
func (t *Table) Channel(channel int) []Record {
	var out []Record
	for _, r := range t.Records {
		if r.ChannelIndex == channel {
			out = append(out, r)
		}
	}
	return out
}

// HasColumn reports whether the header carries name.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// parseFloat reads a float cell. Empty and unparsable cells yield NaN.
func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN(), false
	}
	return v, true
}

// parseIndex reads an integer cell, accepting integral floats such as "2.0".
func parseIndex(s string) (int, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int(f), nil
}
