// Package workspace owns the two durable directories of the service, inbound
// uploads and processed outputs, and mints the filenames written into them.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/srad/videoanalyzer/conf"
)

// StorageError A durable directory could not be created.
type StorageError struct {
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: cannot create directory '%s': %s", e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// EnsureDirectory creates path including parents if absent. Idempotent.
func EnsureDirectory(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return &StorageError{Path: path, Err: fmt.Errorf("path exists and is not a directory")}
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return &StorageError{Path: path, Err: err}
	}

	log.Infof("[workspace] Creating folder: %s", path)
	if err := os.MkdirAll(path, 0755); err != nil {
		return &StorageError{Path: path, Err: err}
	}

	return nil
}

// Setup Ensures all durable directories exist, called once at startup.
func Setup(paths ...string) error {
	for _, path := range paths {
		if err := EnsureDirectory(path); err != nil {
			return err
		}
	}
	return nil
}

// Namer mints filenames which are unique for the lifetime of the process.
// Identifiers are millisecond timestamps, bumped forward whenever two
// requests land in the same millisecond.
type Namer struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewNamer() *Namer {
	return &Namer{now: time.Now}
}

func (n *Namer) next() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	stamp := n.now().UnixMilli()
	if stamp <= n.last {
		stamp = n.last + 1
	}
	n.last = stamp

	return stamp
}

// UploadFilename video-<id><ext>, keeping the extension of the original name.
func (n *Namer) UploadFilename(originalName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if ext == "" || ext == "." {
		ext = conf.UploadFallbackExt
	}
	return fmt.Sprintf("video-%d%s", n.next(), ext)
}

// OutputFilename annotated-<id> with the fixed output container extension.
func (n *Namer) OutputFilename() string {
	return fmt.Sprintf("annotated-%d%s", n.next(), conf.OutputExt)
}
