// Package extract walks a bounded-depth directory tree and produces
// text previews for supported document types. Extraction problems are
// per-file warnings, never fatal to the walk.
package extract

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/hashicorp/go-multierror"
)

type Kind string

const (
	KindPDF         Kind = "pdf"
	KindDOCX        Kind = "docx"
	KindText        Kind = "txt"
	KindMarkdown    Kind = "md"
	KindUnsupported Kind = "unsupported"
)

// FileEntry is one supported file found during traversal. Paths are
// relative to the traversal root, slash-separated.
type FileEntry struct {
	Path    string
	Kind    Kind
	Size    int64
	Preview string
}

// Result carries the entries in deterministic (lexical) order plus the
// non-fatal warnings collected along the way.
type Result struct {
	Entries  []FileEntry
	Warnings *multierror.Error
}

type Extractor struct {
	fsys         fs.FS
	previewBytes int
}

func New(fsys fs.FS, previewBytes int) *Extractor {
	return &Extractor{fsys: fsys, previewBytes: previewBytes}
}

// KindOf classifies a file name by extension.
func KindOf(name string) Kind {
	switch strings.ToLower(path.Ext(name)) {
	case ".pdf":
		return KindPDF
	case ".docx":
		return KindDOCX
	case ".txt":
		return KindText
	case ".md":
		return KindMarkdown
	default:
		return KindUnsupported
	}
}

// Extract traverses the filesystem down to maxDepth levels (1 = only
// the root's immediate entries) and extracts a preview for every
// supported file. Unsupported files are skipped silently; files that
// fail extraction are kept with an empty preview and a warning.
func (e *Extractor) Extract(maxDepth int) (*Result, error) {
	if maxDepth < 1 {
		maxDepth = 1
	}

	res := &Result{}
	if err := e.walk(".", 1, maxDepth, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (e *Extractor) walk(dir string, depth int, maxDepth int, res *Result) error {
	entries, err := fs.ReadDir(e.fsys, dir)
	if err != nil {
		if dir == "." {
			return fmt.Errorf("read directory: %w", err)
		}
		// Unreadable subdirectory: warn and keep going.
		res.Warnings = multierror.Append(res.Warnings, fmt.Errorf("%s: %w", dir, err))
		return nil
	}

	for _, entry := range entries {
		p := path.Join(dir, entry.Name())
		if entry.IsDir() {
			if depth < maxDepth {
				if err := e.walk(p, depth+1, maxDepth, res); err != nil {
					return err
				}
			}
			continue
		}

		kind := KindOf(entry.Name())
		if kind == KindUnsupported {
			continue
		}

		info, err := entry.Info()
		var size int64
		if err == nil {
			size = info.Size()
		}

		preview, err := e.preview(p, kind)
		if err != nil {
			res.Warnings = multierror.Append(res.Warnings, fmt.Errorf("%s: %w", p, err))
			preview = ""
		}

		res.Entries = append(res.Entries, FileEntry{
			Path:    p,
			Kind:    kind,
			Size:    size,
			Preview: preview,
		})
	}
	return nil
}

func (e *Extractor) preview(p string, kind Kind) (string, error) {
	data, err := fs.ReadFile(e.fsys, p)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	if len(data) == 0 {
		return "", nil
	}

	// Extension says what the file claims to be; the sniffed MIME type
	// says what it actually is. Mismatches become warnings upstream.
	mime := mimetype.Detect(data)

	switch kind {
	case KindPDF:
		if !mime.Is("application/pdf") {
			return "", fmt.Errorf("content is %s, not a PDF", mime)
		}
		text, err := extractPDF(data)
		if err != nil {
			return "", err
		}
		return truncate(text, e.previewBytes), nil
	case KindDOCX:
		if !mime.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document") && !mime.Is("application/zip") {
			return "", fmt.Errorf("content is %s, not a DOCX document", mime)
		}
		text, err := extractDOCX(data, e.previewBytes)
		if err != nil {
			return "", err
		}
		return truncate(text, e.previewBytes), nil
	case KindText, KindMarkdown:
		if !strings.HasPrefix(mime.String(), "text/") {
			return "", fmt.Errorf("content is %s, not readable text", mime)
		}
		return truncate(string(data), e.previewBytes), nil
	default:
		return "", fmt.Errorf("unsupported kind %q", kind)
	}
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
