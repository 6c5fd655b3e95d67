package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// ErrInvalidFilename is returned for a payload name that is not a plain file
// name inside the target directory.
var ErrInvalidFilename = errors.New("invalid file name")

// DirDownloader saves downloads into a directory. The file is written to a
// transient temp file first, which is gone on every return path.
type DirDownloader struct {
	Dir string
}

func (d DirDownloader) Download(_ context.Context, p Payload) (string, error) {
	switch p.Filename {
	case "", ".", "..":
		return "", fmt.Errorf("%w %q", ErrInvalidFilename, p.Filename)
	}
	if filepath.Base(p.Filename) != p.Filename {
		return "", fmt.Errorf("%w %q", ErrInvalidFilename, p.Filename)
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(d.Dir, ".notebk-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(p.Content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	dest := filepath.Join(d.Dir, p.Filename)
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("save %s: %w", p.Filename, err)
	}
	return dest, nil
}

// ResponseDownloader streams the payload as an attachment on an HTTP response.
type ResponseDownloader struct {
	W http.ResponseWriter
}

func (d ResponseDownloader) Download(_ context.Context, p Payload) (string, error) {
	h := d.W.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", p.Filename))
	h.Set("Cache-Control", "no-store")
	if _, err := d.W.Write(p.Content); err != nil {
		return "", fmt.Errorf("write response: %w", err)
	}
	return p.Filename, nil
}

// FilePicker opens a file chosen by path.
type FilePicker struct {
	Path string
}

func (f FilePicker) Pick(context.Context) (io.ReadCloser, error) {
	if f.Path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open backup: %w", err)
	}
	return file, nil
}

// MaxUploadBytes bounds an uploaded backup file.
const MaxUploadBytes = 10 << 20

// UploadPicker takes the file from a multipart form field.
type UploadPicker struct {
	Request *http.Request
	Field   string
}

func (u UploadPicker) Pick(context.Context) (io.ReadCloser, error) {
	field := u.Field
	if field == "" {
		field = "file"
	}
	if err := u.Request.ParseMultipartForm(MaxUploadBytes); err != nil {
		return nil, fmt.Errorf("parse upload: %w", err)
	}
	file, _, err := u.Request.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, fmt.Errorf("field %q: %w", field, ErrUnavailable)
		}
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return file, nil
}
