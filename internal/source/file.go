package source

// FileID names a file within one FileSet.
type FileID uint32

// FileFlags records how a file's bytes were produced.
type FileFlags uint8

const (
	FileVirtual FileFlags = 1 << iota // added from memory
	FileHadBOM
	FileNormalizedCRLF
)

// File is one assembler source with its newline index.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	Flags   FileFlags

	newlines []uint32
}

// LineCol is a 1-based line and byte column.
type LineCol struct {
	Line uint32
	Col  uint32
}

// Position converts a byte offset of the file into a line and column.
func (f *File) Position(off uint32) LineCol {
	return toLineCol(f.newlines, off)
}

// GetLine returns line n (1-based) without its newline, or "" when the
// file has no such line.
func (f *File) GetLine(n uint32) string {
	if n == 0 || int(n) > len(f.newlines)+1 {
		return ""
	}
	start, end := 0, len(f.Content)
	if n > 1 {
		start = int(f.newlines[n-2]) + 1
	}
	if int(n) <= len(f.newlines) {
		end = int(f.newlines[n-1])
	}
	if start > end {
		return ""
	}
	return string(f.Content[start:end])
}

// LineCount reports how many lines the file has. An empty file has one.
func (f *File) LineCount() int { return len(f.newlines) + 1 }
