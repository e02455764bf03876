package textproc

// Context exposes the neighbors of the line being classified. Classification
// needs one line of lookbehind (headers announcing the next line's meaning)
// and nothing else, so the scan state lives here instead of on the
// classifier, keeping per-document scans isolated.
type Context struct {
	lines []string
	index int
}

// NewContext builds a context for lines[index].
func NewContext(lines []string, index int) Context {
	return Context{lines: lines, index: index}
}

// Prev returns the previous line in the scan, if any.
func (c Context) Prev() (string, bool) {
	if c.index > 0 {
		return c.lines[c.index-1], true
	}
	return "", false
}

// Next returns the following line in the scan, if any.
func (c Context) Next() (string, bool) {
	if c.index+1 < len(c.lines) {
		return c.lines[c.index+1], true
	}
	return "", false
}
