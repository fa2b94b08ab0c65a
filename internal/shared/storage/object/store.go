package object

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"docchooser/internal/shared/util"
)

// ErrInvalidKey is returned for keys that escape the store root.
var ErrInvalidKey = errors.New("invalid storage key")

// Object describes a stored blob.
type Object struct {
	Key      string
	Size     int64
	MimeType string
}

// Store defines the contract for saving and retrieving document files.
type Store interface {
	Save(ctx context.Context, fileName string, r io.Reader) (Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// NewKey builds a collision-free key of the form documents/YYYY/MM/<id>_<name>.
func NewKey(fileName string, now time.Time) (string, error) {
	sanitized, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", err
	}
	return path.Join("documents", now.UTC().Format("2006/01"), uuid.NewString()+"_"+sanitized), nil
}

// CleanKey rejects absolute keys and keys containing parent references.
func CleanKey(key string) (string, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return "", ErrInvalidKey
	}
	clean := path.Clean(filepath.ToSlash(trimmed))
	if strings.HasPrefix(clean, "/") || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidKey
	}
	return clean, nil
}

// SniffSize is how many leading bytes DetectMIME needs.
const SniffSize = 512

// DetectMIME prefers the registered extension type and falls back to content sniffing.
func DetectMIME(fileName string, sniff []byte) string {
	if ext := strings.ToLower(filepath.Ext(fileName)); ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
	}
	return http.DetectContentType(sniff)
}

// ReadSniff reads up to SniffSize bytes and returns them with a reader that
// replays them ahead of the remainder of r.
func ReadSniff(r io.Reader) ([]byte, io.Reader, error) {
	buf := make([]byte, SniffSize)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, nil, err
	}
	head := buf[:n]
	return head, io.MultiReader(bytes.NewReader(head), r), nil
}
