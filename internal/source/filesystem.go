package source

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/konflabs/konf-server/internal/loader"
)

// FilesystemSource reads documents from a directory tree via a
// billy.Filesystem, the same virtual-filesystem abstraction the corpus
// uses elsewhere for a uniform, easily-faked file interface. There is a
// single implicit snapshot: every List/Read call ignores the snapshot
// argument and reflects whatever is on disk right now, per the data
// model's "single implicit snapshot that is replaced on reload" rule.
type FilesystemSource struct {
	fs billy.Filesystem
}

// NewFilesystemSource roots a FilesystemSource at dir on the real
// filesystem.
func NewFilesystemSource(dir string) *FilesystemSource {
	return &FilesystemSource{fs: osfs.New(dir)}
}

// NewFilesystemSourceFS roots a FilesystemSource at an arbitrary
// billy.Filesystem, primarily so tests can substitute an in-memory one.
func NewFilesystemSourceFS(fs billy.Filesystem) *FilesystemSource {
	return &FilesystemSource{fs: fs}
}

func (s *FilesystemSource) List(ctx context.Context, _ string) ([]string, error) {
	var names []string
	if err := walk(s.fs, "", &names); err != nil {
		return nil, fmt.Errorf("list configs: %w", err)
	}
	return names, nil
}

func walk(fs billy.Filesystem, dir string, out *[]string) error {
	entries, err := fs.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		full := path.Join(dir, entry.Name())
		if entry.IsDir() {
			if err := walk(fs, full, out); err != nil {
				return err
			}
			continue
		}
		if name, ok := stripConfigExtension(entry.Name()); ok {
			if dir != "" {
				name = dir + "/" + name
			}
			*out = append(*out, name)
		}
	}
	return nil
}

func stripConfigExtension(filename string) (string, bool) {
	for _, ext := range loader.Extensions {
		if strings.HasSuffix(filename, ext) {
			return strings.TrimSuffix(filename, ext), true
		}
	}
	return "", false
}

func (s *FilesystemSource) Read(ctx context.Context, _, name string) ([]byte, error) {
	for _, ext := range loader.Extensions {
		f, err := s.fs.Open(name + ext)
		if err != nil {
			continue
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}
