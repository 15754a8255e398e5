// Package source turns a document reference into the plain text the parser consumes.
//
// A reference is one of:
//   - "-" for standard input
//   - gs://bucket/object
//   - a local file path
//   - a bare object name, resolved against the default bucket when no local file matches
//
// A loader returned by RemoteOnly accepts only the bucket forms.
//
// PDFs are detected by their header and must already carry a text layer.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Stdin is the reference that reads from the loader's input stream.
const Stdin = "-"

var pdfMagic = []byte("%PDF-")

var (
	// ErrNoFetcher is returned for bucket references when no ObjectFetcher is configured.
	ErrNoFetcher = errors.New("no object storage configured")
	// ErrLocalRef is returned when a remote-only loader sees stdin or a filesystem path.
	ErrLocalRef = errors.New("local references are not allowed")
)

// Document is loaded source text.
type Document struct {
	Name  string
	Text  string
	IsPDF bool
}

// Loader resolves references to documents.
type Loader struct {
	fetcher    ObjectFetcher
	stdin      io.Reader
	bucket     string
	remoteOnly bool
}

// NewLoader creates a Loader. fetcher may be nil when bucket references are not needed.
func NewLoader(fetcher ObjectFetcher, stdin io.Reader, defaultBucket string) *Loader {
	if stdin == nil {
		stdin = os.Stdin
	}
	return &Loader{fetcher: fetcher, stdin: stdin, bucket: defaultBucket}
}

// RemoteOnly returns a copy of the loader that never touches stdin or the
// local filesystem. Bare names always resolve against the default bucket.
func (l *Loader) RemoteOnly() *Loader {
	c := *l
	c.remoteOnly = true
	return &c
}

// CheckRemoteRef reports whether ref can only name a bucket object. Stdin,
// absolute paths, home-relative paths and dot segments are rejected.
func CheckRemoteRef(ref string) error {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "gs://") {
		return nil
	}
	if ref == Stdin || filepath.IsAbs(ref) || strings.HasPrefix(ref, "/") ||
		strings.HasPrefix(ref, "~") || strings.Contains(ref, `\`) {
		return fmt.Errorf("%w: %q", ErrLocalRef, ref)
	}
	for _, part := range strings.Split(ref, "/") {
		if part == "." || part == ".." {
			return fmt.Errorf("%w: %q", ErrLocalRef, ref)
		}
	}
	return nil
}

// Load reads the referenced document and extracts its text.
func (l *Loader) Load(ctx context.Context, ref string) (*Document, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.New("Load: empty reference")
	}

	name, data, err := l.read(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}

	if !bytes.HasPrefix(data, pdfMagic) {
		return &Document{Name: name, Text: string(data)}, nil
	}

	text, err := pdfText(data)
	if err != nil {
		return nil, fmt.Errorf("Load: extract text from %s: %w", name, err)
	}
	return &Document{Name: name, Text: text, IsPDF: true}, nil
}

func (l *Loader) read(ctx context.Context, ref string) (string, []byte, error) {
	if l.remoteOnly {
		return l.readRemote(ctx, ref)
	}

	if ref == Stdin {
		data, err := io.ReadAll(l.stdin)
		if err != nil {
			return "", nil, fmt.Errorf("read stdin: %w", err)
		}
		return "stdin", data, nil
	}

	if strings.HasPrefix(ref, "gs://") {
		bucket, object, err := ParseGCSURI(ref)
		if err != nil {
			return "", nil, err
		}
		return l.fetch(ctx, bucket, object)
	}

	data, err := os.ReadFile(ref)
	if err == nil {
		return filepath.Base(ref), data, nil
	}
	if errors.Is(err, fs.ErrNotExist) && l.bucket != "" && l.fetcher != nil {
		return l.fetch(ctx, l.bucket, ref)
	}
	return "", nil, fmt.Errorf("read file %q: %w", ref, err)
}

func (l *Loader) readRemote(ctx context.Context, ref string) (string, []byte, error) {
	if err := CheckRemoteRef(ref); err != nil {
		return "", nil, err
	}
	if strings.HasPrefix(ref, "gs://") {
		bucket, object, err := ParseGCSURI(ref)
		if err != nil {
			return "", nil, err
		}
		return l.fetch(ctx, bucket, object)
	}
	if l.bucket == "" {
		return "", nil, fmt.Errorf("object %q: no default bucket configured", ref)
	}
	return l.fetch(ctx, l.bucket, ref)
}

func (l *Loader) fetch(ctx context.Context, bucket, object string) (string, []byte, error) {
	if l.fetcher == nil {
		return "", nil, ErrNoFetcher
	}
	data, err := l.fetcher.Fetch(ctx, bucket, object)
	if err != nil {
		return "", nil, err
	}
	return objectBase(object), data, nil
}

// pdfText returns the text layer one page after another, keeping rows as lines
// so statement rows survive for the line parsers.
func pdfText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			var words []string
			for _, word := range row.Content {
				words = append(words, word.S)
			}
			if line := strings.TrimSpace(strings.Join(words, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}

	text = strings.TrimSpace(strings.Join(pages, "\n"))
	if text != "" {
		return text, nil
	}

	// Some producers only expose text through the document-level content stream.
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read plain text: %w", err)
	}
	buf, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read plain text: %w", err)
	}
	return strings.TrimSpace(string(buf)), nil
}
