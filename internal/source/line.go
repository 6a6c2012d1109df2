package source

// MemoryFile names lines that did not come from a file on disk.
const MemoryFile = "#Memory#"

// Extension is appended to import paths that carry none.
const Extension = ".ynt"

// Line is one physical source line. Content is what the engine dispatches;
// FileName and Index only feed diagnostics.
type Line struct {
	Content  string
	FileName string
	Index    int
}

// FromStrings wraps in-memory text as lines of MemoryFile.
func FromStrings(texts ...string) []Line {
	lines := make([]Line, len(texts))
	for i, text := range texts {
		lines[i] = Line{Content: text, FileName: MemoryFile, Index: i}
	}
	return lines
}

// Clone returns a copy of lines that shares nothing with the input slice.
func Clone(lines []Line) []Line {
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}
