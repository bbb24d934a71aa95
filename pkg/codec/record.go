package codec

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const maxLineSize = 1024 * 1024

// field is one labelled line of a record.
type field struct {
	label   string
	aliases []string
}

func (f field) matches(label string) bool {
	if strings.EqualFold(label, f.label) {
		return true
	}
	for _, a := range f.aliases {
		if strings.EqualFold(label, a) {
			return true
		}
	}
	return false
}

// layout is the fixed sequence of fields that makes up one record.
type layout struct {
	artifact string
	fields   []field
}

// value is the trimmed text after the first colon, with its source line.
type value struct {
	text string
	line int
}

// recordScanner splits a stream into records of a fixed layout.
// Blank lines are ignored wherever they appear.
type recordScanner struct {
	sc     *bufio.Scanner
	layout layout
	line   int
}

func newRecordScanner(r io.Reader, l layout) *recordScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineSize)
	return &recordScanner{sc: sc, layout: l}
}

// next returns the values of the next record in layout order, or io.EOF once
// the stream ends cleanly between records.
func (s *recordScanner) next() ([]value, error) {
	values := make([]value, 0, len(s.layout.fields))
	for len(values) < len(s.layout.fields) {
		f := s.layout.fields[len(values)]

		raw, ok, err := s.nextLine()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", s.layout.artifact, err)
		}
		if !ok {
			if len(values) == 0 {
				return nil, io.EOF
			}
			return nil, s.corrupt(s.line, f.label, "record truncated")
		}

		label, text, found := strings.Cut(raw, ":")
		if !found {
			return nil, s.corrupt(s.line, f.label, "missing ':' separator")
		}
		label = strings.TrimSpace(label)
		if !f.matches(label) {
			return nil, s.corrupt(s.line, f.label, fmt.Sprintf("unexpected label %q", label))
		}
		values = append(values, value{text: strings.TrimSpace(text), line: s.line})
	}
	return values, nil
}

func (s *recordScanner) nextLine() (string, bool, error) {
	for s.sc.Scan() {
		s.line++
		text := strings.TrimRight(s.sc.Text(), "\r")
		if s.line == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		return text, true, nil
	}
	return "", false, s.sc.Err()
}

func (s *recordScanner) corrupt(line int, fieldLabel, reason string) *CorruptRecordError {
	return &CorruptRecordError{
		Artifact: s.layout.artifact,
		Line:     line,
		Field:    fieldLabel,
		Reason:   reason,
	}
}

// lineWriter writes label: value lines and remembers the first error.
type lineWriter struct {
	w        *bufio.Writer
	artifact string
	err      error
}

func newLineWriter(w io.Writer, artifact string) *lineWriter {
	return &lineWriter{w: bufio.NewWriter(w), artifact: artifact}
}

func (lw *lineWriter) field(label, text string) {
	if lw.err != nil {
		return
	}
	if strings.ContainsAny(text, "\r\n") {
		lw.err = fmt.Errorf("write %s: %s value contains a line break", lw.artifact, label)
		return
	}
	_, lw.err = fmt.Fprintf(lw.w, "%s: %s\n", label, text)
}

func (lw *lineWriter) blank() {
	if lw.err != nil {
		return
	}
	_, lw.err = lw.w.WriteString("\n")
}

func (lw *lineWriter) flush() error {
	if lw.err != nil {
		return lw.err
	}
	if err := lw.w.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", lw.artifact, err)
	}
	return nil
}
