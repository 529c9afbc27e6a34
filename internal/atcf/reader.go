package atcf

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"strings"

	"errors"
)

// gzipMagic is the two-byte gzip header used to sniff compressed byte
// sources. Detection is by content, never by file extension.
var gzipMagic = []byte{0x1f, 0x8b}

type sourceKind int

const (
	kindBytes sourceKind = iota
	kindText
	kindPath
	kindLiteral
)

// Source identifies one raw advisory input. The kind is chosen explicitly
// by the caller through one of the constructors; there is no probing or
// fallback guessing between kinds. The zero value is not a valid Source.
type Source struct {
	kind sourceKind
	r    io.Reader
	text string
}

// BytesSource wraps a binary byte source, which may be gzip-compressed.
// A source with zero bytes available fails with ErrEmptyInput.
func BytesSource(r io.Reader) Source { return Source{kind: kindBytes, r: r} }

// TextSource wraps an already-decoded text stream.
func TextSource(r io.Reader) Source { return Source{kind: kindText, r: r} }

// PathSource references a file on disk. If the path does not exist but its
// textual form contains internal line breaks, it is reinterpreted as literal
// inline content; a single-line non-existent path re-raises the original
// not-found error rather than producing a bogus one-line table.
func PathSource(path string) Source { return Source{kind: kindPath, text: path} }

// LiteralSource wraps a raw multi-line advisory text value.
func LiteralSource(text string) Source { return Source{kind: kindLiteral, text: text} }

// open resolves the source into a line-readable stream.
func (s Source) open() (io.ReadCloser, error) {
	switch s.kind {
	case kindBytes:
		br := bufio.NewReader(s.r)
		magic, err := br.Peek(2)
		if len(magic) == 0 {
			if err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("read advisory input: %w", err)
			}
			return nil, ErrEmptyInput
		}
		if len(magic) == 2 && magic[0] == gzipMagic[0] && magic[1] == gzipMagic[1] {
			zr, err := gzip.NewReader(br)
			if err != nil {
				return nil, fmt.Errorf("decompress advisory input: %w", err)
			}
			return zr, nil
		}
		return io.NopCloser(br), nil

	case kindText:
		return io.NopCloser(s.r), nil

	case kindPath:
		f, err := os.Open(s.text)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && strings.Contains(strings.TrimRight(s.text, "\r\n"), "\n") {
				return io.NopCloser(strings.NewReader(s.text)), nil
			}
			return nil, err
		}
		return f, nil

	case kindLiteral:
		return io.NopCloser(strings.NewReader(s.text)), nil

	default:
		return nil, errors.New("atcf: invalid source")
	}
}

type readOptions struct {
	recordTypes []string
}

// ReadOption customizes ReadTrack.
type ReadOption func(*readOptions)

// WithRecordTypes restricts decoding to lines whose advisory-type field is
// in the given set. Matching is case-sensitive and exact.
func WithRecordTypes(types ...string) ReadOption {
	return func(o *readOptions) {
		o.recordTypes = types
	}
}

// ReadTrack frames the source into lines, filters them by record type when
// requested, and decodes each remaining line into a Record, preserving input
// order. The first malformed line aborts the whole read. A fully empty
// result is an error, not a valid table.
func ReadTrack(src Source, opts ...ReadOption) (Table, error) {
	var o readOptions
	for _, opt := range opts {
		opt(&o)
	}

	rc, err := src.open()
	if err != nil {
		return nil, err
	}
	defer rc.Close() //nolint:errcheck // read-only stream

	var table Table
	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		if o.recordTypes != nil {
			parts := strings.Split(line, ",")
			if len(parts) < 5 {
				return nil, &FieldError{
					Field: "record_type",
					Line:  lineNo,
					Value: line,
					Err:   errors.New("line has no advisory-type field"),
				}
			}
			if !slices.Contains(o.recordTypes, strings.TrimSpace(parts[4])) {
				continue
			}
		}

		rec, err := decodeLine(line, lineNo)
		if err != nil {
			return nil, err
		}
		table = append(table, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read advisory input: %w", err)
	}

	if len(table) == 0 {
		return nil, &NoMatchingRecordsError{RecordTypes: o.recordTypes}
	}
	return table, nil
}
