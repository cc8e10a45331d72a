// Package storage keeps uploaded prescription files, on local disk or in S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	ErrNotFound    = errors.New("file not found")
	ErrInvalidName = errors.New("invalid file name")
)

// FileStore stores files under flat names; names never contain separators.
type FileStore interface {
	Save(ctx context.Context, name string, content io.Reader) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Remove(ctx context.Context, name string) error
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SanitizeFilename reduces a client-supplied name to ASCII letters, digits,
// '_', '.' and '-'. Path separators become '_', dot runs collapse and
// leading/trailing dots or underscores are dropped, so the result can never
// traverse directories.
func SanitizeFilename(name string) string {
	name = norm.NFKD.String(name)
	name = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		if r == '/' || r == '\\' {
			return ' '
		}
		return r
	}, name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	for strings.Contains(name, "..") {
		name = strings.ReplaceAll(name, "..", ".")
	}
	name = strings.Trim(name, "._")
	if name == "" {
		return "upload"
	}
	return name
}

// ValidName reports whether name is a single path element safe to resolve
// inside the upload area.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00") && !strings.Contains(name, "..")
}

// Namer produces stored names of the form <user>_<unix nanos>_<sanitized>.
// The timestamp is strictly increasing per Namer, so repeated uploads of the
// same file name never collide.
type Namer struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewNamer() *Namer {
	return &Namer{now: time.Now}
}

func (n *Namer) Next(userID int64, original string) string {
	n.mu.Lock()
	ts := n.now().UnixNano()
	if ts <= n.last {
		ts = n.last + 1
	}
	n.last = ts
	n.mu.Unlock()

	return fmt.Sprintf("%d_%d_%s", userID, ts, SanitizeFilename(original))
}
