// Package reports stores uploaded patient report files in a single flat
// directory. Names are derived from the patient identifier, so the store keeps
// no metadata of its own.
package reports

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

var (
	ErrReportNotFound = errors.New("report not found")
	ErrInvalidName    = errors.New("invalid report file name")
)

const partialSuffix = ".part"

// File is an open stored report.
type File interface {
	io.ReadSeekCloser
	Stat() (fs.FileInfo, error)
}

// DiskStore keeps report files under one upload directory.
type DiskStore struct {
	fs  afero.Fs
	dir string
	log *zap.Logger
}

// NewDiskStore creates dir on base when it is missing and confines every later
// operation to it.
func NewDiskStore(base afero.Fs, dir string, log *zap.Logger) (*DiskStore, error) {
	if err := base.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload folder %s: %w", dir, err)
	}

	log.Info("report store ready", zap.String("upload_folder", dir))

	return &DiskStore{
		fs:  afero.NewBasePathFs(base, dir),
		dir: dir,
		log: log,
	}, nil
}

// Dir returns the upload directory the store was opened on.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Save writes content under name, replacing any existing file. The data is
// written to a sibling temp file first so readers never see a torn report.
func (s *DiskStore) Save(ctx context.Context, name string, content io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if !validName(name) {
		return 0, ErrInvalidName
	}

	tmp := name + partialSuffix
	f, err := s.fs.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to create report file: %w", err)
	}

	n, err := io.Copy(f, content)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = s.fs.Remove(tmp)
		return 0, fmt.Errorf("failed to write report file: %w", err)
	}

	if err := s.fs.Rename(tmp, name); err != nil {
		_ = s.fs.Remove(tmp)
		return 0, fmt.Errorf("failed to move report file into place: %w", err)
	}

	s.log.Debug("report stored", zap.String("file", name), zap.Int64("bytes", n))
	return n, nil
}

// Open returns the stored report. Unknown or unsafe names yield ErrReportNotFound.
func (s *DiskStore) Open(ctx context.Context, name string) (File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validName(name) {
		return nil, ErrReportNotFound
	}

	info, err := s.fs.Stat(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to stat report file: %w", err)
	}
	if info.IsDir() {
		return nil, ErrReportNotFound
	}

	f, err := s.fs.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to open report file: %w", err)
	}

	return f, nil
}

// Exists reports whether a report is stored under name.
func (s *DiskStore) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if !validName(name) {
		return false, nil
	}
	return afero.Exists(s.fs, name)
}

// Delete removes the named report, returning ErrReportNotFound if it is absent.
func (s *DiskStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !validName(name) {
		return ErrReportNotFound
	}

	if err := s.fs.Remove(name); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrReportNotFound
		}
		return fmt.Errorf("failed to delete report file: %w", err)
	}

	s.log.Debug("report deleted", zap.String("file", name))
	return nil
}

// List returns the names of all complete reports, sorted.
func (s *DiskStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := afero.ReadDir(s.fs, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read upload folder: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), partialSuffix) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	return names, nil
}
