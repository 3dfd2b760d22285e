package acmonitor

const lineWindowSize = 10

// LineWindow keeps the most recent raw log lines, newest first. It exists so
// the classifier can correlate a lap-completion marker with the LAP detail
// line that precedes it.
type LineWindow struct {
	capacity int
	lines    []string
}

func NewLineWindow(capacity int) *LineWindow {
	return &LineWindow{capacity: capacity}
}

func (w *LineWindow) Push(line string) {
	w.lines = append([]string{line}, w.lines...)

	if len(w.lines) > w.capacity {
		w.lines = w.lines[:w.capacity]
	}
}

// At returns the ith most recent line (0 = the line just pushed). Lines
// outside the window are returned as "".
func (w *LineWindow) At(i int) string {
	if i < 0 || i >= len(w.lines) {
		return ""
	}

	return w.lines[i]
}

// Scan visits lines newest first and returns the first one the match
// function accepts.
func (w *LineWindow) Scan(match func(line string) bool) (string, bool) {
	for _, line := range w.lines {
		if match(line) {
			return line, true
		}
	}

	return "", false
}

func (w *LineWindow) Len() int {
	return len(w.lines)
}
