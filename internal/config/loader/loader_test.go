package loader

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dshills/modsync/internal/retry"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return &memFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

func (m *MemFS) WriteFile(path string, data []byte) error {
	m.files[path] = append([]byte(nil), data...)
	return nil
}

type memFileInfo struct {
	name string
}

func (f *memFileInfo) Name() string       { return f.name }
func (f *memFileInfo) Size() int64        { return 0 }
func (f *memFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memFileInfo) ModTime() time.Time { return time.Now() }
func (f *memFileInfo) IsDir() bool        { return false }
func (f *memFileInfo) Sys() any           { return nil }

func fastRetry() retry.Config {
	return retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
}

func TestReadDocument(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/mod.cfg", "[Items]\nenabled=true\n")

	data, err := ReadDocument(memfs, "/mod.cfg")
	if err != nil {
		t.Fatalf("ReadDocument() error = %v", err)
	}
	if string(data) != "[Items]\nenabled=true\n" {
		t.Errorf("ReadDocument() = %q", data)
	}

	data, err = ReadDocument(memfs, "/missing.cfg")
	if err != nil {
		t.Errorf("ReadDocument(missing) error = %v, want nil", err)
	}
	if data != nil {
		t.Errorf("ReadDocument(missing) = %q, want nil", data)
	}

	if !Exists(memfs, "/mod.cfg") {
		t.Error("Exists(/mod.cfg) = false")
	}
	if Exists(memfs, "/missing.cfg") {
		t.Error("Exists(/missing.cfg) = true")
	}
}

func TestFileFetcher(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/remote.cfg", "[Server]\nserverSyncsConfig=true\n")

	f := NewFileFetcherWithFS(memfs, "/remote.cfg")
	data, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !strings.Contains(string(data), "serverSyncsConfig") {
		t.Errorf("Fetch() = %q", data)
	}
	if got := Describe(f); got != "/remote.cfg" {
		t.Errorf("Describe() = %q, want /remote.cfg", got)
	}

	_, err = NewFileFetcherWithFS(memfs, "/none.cfg").Fetch(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch(missing) error = %v, want ErrNotFound", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err = f.Fetch(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch(cancelled) error = %v, want context.Canceled", err)
	}
}

func TestFetcherFunc(t *testing.T) {
	f := FetcherFunc(func(context.Context) ([]byte, error) { return []byte("x"), nil })
	data, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "x" {
		t.Errorf("Fetch() = %q, want x", data)
	}
	if got := Describe(f); got != "loader.FetcherFunc" {
		t.Errorf("Describe() = %q, want loader.FetcherFunc", got)
	}
}

func TestHTTPFetcher_Success(t *testing.T) {
	var ua atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua.Store(r.UserAgent())
		_, _ = w.Write([]byte("[Items]\nenabled=true\n"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL, WithUserAgent("modsync-test"), WithTimeout(time.Second))
	data, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "[Items]\nenabled=true\n" {
		t.Errorf("Fetch() = %q", data)
	}
	if got := ua.Load(); got != "modsync-test" {
		t.Errorf("User-Agent = %v, want modsync-test", got)
	}
	if got := Describe(f); got != srv.URL {
		t.Errorf("Describe() = %q, want %q", got, srv.URL)
	}
}

func TestHTTPFetcher_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	data, err := NewHTTPFetcher(srv.URL, WithRetry(fastRetry())).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "ok" {
		t.Errorf("Fetch() = %q, want ok", data)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
}

func TestHTTPFetcher_NotFoundIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(srv.URL, WithRetry(fastRetry())).Fetch(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Fetch() error = %v, want ErrNotFound", err)
	}

	var serr *StatusError
	if !errors.As(err, &serr) {
		t.Fatalf("Fetch() error = %v, want *StatusError", err)
	}
	if serr.Code != http.StatusNotFound {
		t.Errorf("Code = %d, want 404", serr.Code)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestHTTPFetcher_TooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(srv.URL, WithMaxBytes(10), WithRetry(fastRetry())).Fetch(context.Background())
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("Fetch() error = %v, want ErrTooLarge", err)
	}
}

func TestHTTPFetcher_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	if _, err := NewHTTPFetcher(url, WithRetry(retry.None())).Fetch(context.Background()); err == nil {
		t.Error("Fetch() from closed server succeeded")
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mod.cfg")

	if err := WriteFileAtomic(path, []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(path, []byte("two"), 0o600); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "two" {
		t.Errorf("content = %q, want two", data)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want 1 (temp file left behind)", len(entries))
	}

	if err := WriteFileAtomic(filepath.Join(dir, "missing", "x.cfg"), []byte("x"), 0o644); err == nil {
		t.Error("WriteFileAtomic into missing dir succeeded")
	}
}

func TestOSFS(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mod.cfg")

	fsys := DefaultFS()
	if err := fsys.WriteFile(path, []byte("[A]\n")); err != nil {
		t.Fatal(err)
	}
	data, err := ReadDocument(fsys, path)
	if err != nil {
		t.Fatalf("ReadDocument() error = %v", err)
	}
	if string(data) != "[A]\n" {
		t.Errorf("ReadDocument() = %q", data)
	}
	if !Exists(fsys, path) {
		t.Error("Exists() = false after write")
	}
}
