package capture

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".webp": true,
}

func isImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// DirectoryDevice replays the image files of a directory in name order.
// Used for offline sessions and for tests.
type DirectoryDevice struct {
	Dir string
}

func NewDirectoryDevice(dir string) *DirectoryDevice {
	return &DirectoryDevice{Dir: dir}
}

func (d *DirectoryDevice) Open(ctx context.Context) (Source, error) {
	entries, err := os.ReadDir(d.Dir)
	if err != nil {
		return nil, domain.ErrCaptureUnavailable.WithError(fmt.Errorf("read frame dir %s: %w", d.Dir, err))
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !isImageFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(d.Dir, e.Name()))
	}
	sort.Strings(files)

	return &directorySource{files: files}, nil
}

// Count returns how many frames the directory holds, for progress reporting.
func (d *DirectoryDevice) Count() (int, error) {
	entries, err := os.ReadDir(d.Dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && isImageFile(e.Name()) {
			n++
		}
	}
	return n, nil
}

type directorySource struct {
	files  []string
	pos    int
	closed bool
}

func (s *directorySource) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if s.closed || s.pos >= len(s.files) {
		return Frame{}, io.EOF
	}

	path := s.files[s.pos]
	s.pos++

	data, err := os.ReadFile(path)
	if err != nil {
		return Frame{}, domain.ErrCaptureFailed.WithError(fmt.Errorf("read frame %s: %w", path, err))
	}

	return Frame{
		Seq:        s.pos,
		Data:       data,
		CapturedAt: time.Now(),
		Origin:     path,
	}, nil
}

func (s *directorySource) Close() error {
	s.closed = true
	return nil
}
