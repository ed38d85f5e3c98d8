package bundle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// rotatingWriter emits JSONL records into bundle_NNN.jsonl files, starting a
// new file once the current one would exceed the size cap.
type rotatingWriter struct {
	dir      string
	capBytes int64

	file    *os.File
	written int64
	count   int
}

func newRotatingWriter(dir string, sizeMB int) *rotatingWriter {
	capBytes := int64(sizeMB) << 20
	if capBytes <= 0 {
		capBytes = 25 << 20
	}
	return &rotatingWriter{dir: dir, capBytes: capBytes}
}

func (w *rotatingWriter) Write(record Record) error {
	line, err := json.Marshal(record)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	if w.file != nil && w.written+int64(len(line)) > w.capBytes && w.written > 0 {
		if err := w.rotate(); err != nil {
			return err
		}
	}
	if w.file == nil {
		if err := w.open(); err != nil {
			return err
		}
	}

	n, err := w.file.Write(line)
	w.written += int64(n)
	return err
}

func (w *rotatingWriter) open() error {
	name := fmt.Sprintf("bundle_%03d.jsonl", w.count)
	file, err := os.Create(filepath.Join(w.dir, name))
	if err != nil {
		return err
	}
	w.file = file
	w.written = 0
	w.count++
	return nil
}

func (w *rotatingWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return err
	}
	w.file = nil
	return nil
}

// Count returns how many bundle files were started.
func (w *rotatingWriter) Count() int {
	return w.count
}

func (w *rotatingWriter) Close() error {
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}
