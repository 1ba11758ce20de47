// Package source reads compiler input files and serves 0-based line lookup
// for diagnostic rendering. It is the thin external collaborator spec §6
// calls "source-file I/O and line buffering" — out of scope for the
// semantic core, but still needed to drive it end to end.
package source

import (
	"os"
	"strings"
)

// File holds the decoded text of one translation unit plus its line index.
type File struct {
	Path  string
	Text  string
	lines []string
}

// Read loads path, appending a synthetic trailing "\n" so the lexer always
// terminates cleanly on a newline (spec §6 "Source file format").
func Read(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := string(data)
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return &File{
		Path:  path,
		Text:  text,
		lines: strings.Split(text, "\n"),
	}, nil
}

// FromString builds a File from in-memory text, for tests and for the
// `lex`/`parse` CLI subcommands reading inline `-e` text.
func FromString(path, text string) *File {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return &File{
		Path:  path,
		Text:  text,
		lines: strings.Split(text, "\n"),
	}
}

// Line returns the 0-based row's text, or "" if out of range.
func (f *File) Line(row int) string {
	if row < 0 || row >= len(f.lines) {
		return ""
	}
	return f.lines[row]
}

// LineCount returns the number of lines in the file.
func (f *File) LineCount() int {
	return len(f.lines)
}
