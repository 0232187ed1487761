package present

// LogView holds the job log as last reported by the server.
type LogView struct {
	lines []string
}

// Replace swaps the held log for lines. When lines extends the previous log,
// appended holds only the new tail; otherwise rewritten is true and appended
// holds every line.
func (v *LogView) Replace(lines []string) (appended []string, rewritten bool) {
	prev := v.lines
	v.lines = append([]string(nil), lines...)

	if len(lines) < len(prev) {
		return v.lines, true
	}
	for i := range prev {
		if prev[i] != lines[i] {
			return v.lines, true
		}
	}
	return v.lines[len(prev):], false
}

// Lines returns the current log.
func (v *LogView) Lines() []string {
	return v.lines
}

// Clear empties the log.
func (v *LogView) Clear() {
	v.lines = nil
}
