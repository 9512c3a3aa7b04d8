package writer

import (
	"os"
	"path/filepath"

	"github.com/joshuapare/recdb/internal/durable"
	"github.com/joshuapare/recdb/pkg/rtypes"
)

// FileWriter writes DB bytes to a filesystem path atomically via temp
// file + rename (spec.md §6.4: "mutation-safe rewriting through a temp
// file rename"), grounded on the teacher's internal/writer/filewriter.go.
type FileWriter struct {
	Path string
}

// WriteBytes writes buf to the configured path atomically.
func (fw *FileWriter) WriteBytes(buf []byte) error {
	dir := filepath.Dir(fw.Path)
	tmp, err := os.CreateTemp(dir, ".recdb-tmp-*")
	if err != nil {
		return rtypes.Wrap(rtypes.ErrKindIO, "create temp file", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if tmp != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(buf); err != nil {
		return rtypes.Wrap(rtypes.ErrKindIO, "write temp file", err)
	}
	if err := durable.Sync(tmp); err != nil {
		return rtypes.Wrap(rtypes.ErrKindIO, "sync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		return rtypes.Wrap(rtypes.ErrKindIO, "close temp file", err)
	}
	tmp = nil

	if err := os.Rename(tmpPath, fw.Path); err != nil {
		_ = os.Remove(tmpPath)
		return rtypes.Wrap(rtypes.ErrKindIO, "rename temp file", err)
	}
	return nil
}
