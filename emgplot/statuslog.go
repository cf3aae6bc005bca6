package main

import (
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2/widget"
)

const maxLogLines = 200

// statusLog is the timestamped message list under the controls.
type statusLog struct {
	mu    sync.Mutex
	lines []string
	now   func() time.Time

	label *widget.Label
}

func newStatusLog() *statusLog {
	l := &statusLog{now: time.Now, label: widget.NewLabel("")}
	return l
}

// add appends msg. Call from the UI goroutine.
func (l *statusLog) add(msg string) {
	l.mu.Lock()
	l.lines = append(l.lines, "["+l.now().Format("15:04:05")+"] "+msg)
	if len(l.lines) > maxLogLines {
		l.lines = l.lines[len(l.lines)-maxLogLines:]
	}
	text := strings.Join(l.lines, "\n")
	l.mu.Unlock()

	l.label.SetText(text)
}

func (l *statusLog) text() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return strings.Join(l.lines, "\n")
}
