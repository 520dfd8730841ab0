package source

import (
	"context"
	"sort"
	"testing"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
)

func mustWrite(t *testing.T, fs billy.Filesystem, path, content string) {
	t.Helper()
	if err := util.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %q: %v", path, err)
	}
}

func TestFilesystemSourceListAndRead(t *testing.T) {
	fs := memfs.New()
	mustWrite(t, fs, "base.yaml", "db: {host: h}")
	mustWrite(t, fs, "common/redis.yml", "host: localhost")
	mustWrite(t, fs, "README.md", "not a config")

	src := NewFilesystemSourceFS(fs)
	names, err := src.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	sort.Strings(names)
	want := []string{"base", "common/redis"}
	if len(names) != len(want) || names[0] != want[0] || names[1] != want[1] {
		t.Fatalf("List() = %v, want %v", names, want)
	}

	data, err := src.Read(context.Background(), "", "common/redis")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "host: localhost" {
		t.Fatalf("Read() = %q", data)
	}
}

func TestFilesystemSourceReadNotFound(t *testing.T) {
	fs := memfs.New()
	src := NewFilesystemSourceFS(fs)
	if _, err := src.Read(context.Background(), "", "missing"); err == nil {
		t.Fatal("expected error for missing document")
	}
}
