package agent

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
)

// DefaultJarName is the file name of the packaged agent.
const DefaultJarName = "jacocoagent.jar"

// Resolver materializes the packaged agent jar onto a filesystem the launched
// process can read, and returns its path. Later calls reuse the extracted file
// while its size and content digest match the source.
type Resolver struct {
	// Source is the packaged storage holding the jar.
	Source fs.FS
	// Name is the jar's path inside Source.
	Name string
	// Fs receives the extracted jar.
	Fs afero.Fs
	// Dir is the extraction directory on Fs.
	Dir string

	mu sync.Mutex
}

// NewResolver resolves the jar at jarPath on the local disk, extracting a copy
// into cacheDir. An empty jarPath means DefaultJarName in the working directory.
func NewResolver(jarPath, cacheDir string) *Resolver {
	if jarPath == "" {
		jarPath = DefaultJarName
	}
	return &Resolver{
		Source: os.DirFS(filepath.Dir(jarPath)),
		Name:   filepath.Base(jarPath),
		Fs:     afero.NewOsFs(),
		Dir:    cacheDir,
	}
}

// AgentFile returns the absolute path of the extracted agent jar.
func (r *Resolver) AgentFile() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Source == nil {
		return "", fmt.Errorf("agent source not configured")
	}
	name := r.Name
	if name == "" {
		name = DefaultJarName
	}
	info, err := fs.Stat(r.Source, name)
	if err != nil {
		return "", fmt.Errorf("locate agent %s: %w", name, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("locate agent %s: is a directory", name)
	}

	dest := filepath.Join(r.Dir, path.Base(name))
	if abs, err := filepath.Abs(dest); err == nil {
		dest = abs
	}
	if existing, err := r.Fs.Stat(dest); err == nil && !existing.IsDir() && existing.Size() == info.Size() {
		if r.sameContent(name, dest) {
			return dest, nil
		}
	}

	if err := r.extract(name, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func (r *Resolver) extract(name, dest string) error {
	src, err := r.Source.Open(name)
	if err != nil {
		return fmt.Errorf("open agent %s: %w", name, err)
	}
	defer src.Close()

	if err := r.Fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("create agent dir: %w", err)
	}
	tmp, err := afero.TempFile(r.Fs, filepath.Dir(dest), ".agent-*")
	if err != nil {
		return fmt.Errorf("create agent file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		_ = r.Fs.Remove(tmpName)
		return fmt.Errorf("extract agent: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = r.Fs.Remove(tmpName)
		return fmt.Errorf("extract agent: %w", err)
	}
	if err := r.Fs.Rename(tmpName, dest); err != nil {
		_ = r.Fs.Remove(tmpName)
		return fmt.Errorf("install agent: %w", err)
	}
	return nil
}

// sameContent reports whether the extracted jar at dest matches the source.
func (r *Resolver) sameContent(name, dest string) bool {
	want, err := digest(func() (io.ReadCloser, error) { return r.Source.Open(name) })
	if err != nil {
		return false
	}
	got, err := digest(func() (io.ReadCloser, error) { return r.Fs.Open(dest) })
	if err != nil {
		return false
	}
	return want == got
}

func digest(open func() (io.ReadCloser, error)) (uint64, error) {
	f, err := open()
	if err != nil {
		return 0, err
	}
	defer f.Close()
	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}
