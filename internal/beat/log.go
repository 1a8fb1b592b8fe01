package beat

import (
	"fmt"
	"io"
	"os"
	"time"
)

// FormatRecord renders one tempo log line.
func FormatRecord(at time.Time, bpm float64) string {
	return fmt.Sprintf("[%s] BPM moyen: %.2f\n", at.Format("15:04:05"), bpm)
}

// Recorder appends tempo records somewhere.
type Recorder interface {
	Record(at time.Time, bpm float64) error
}

// FileLog appends records to a text file, opening it for each write so the
// file can be rotated or removed while the detector runs.
type FileLog struct {
	Path string
}

// NewFileLog creates a FileLog for path.
func NewFileLog(path string) *FileLog {
	return &FileLog{Path: path}
}

// Record appends one line.
func (l *FileLog) Record(at time.Time, bpm float64) error {
	f, err := os.OpenFile(l.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open bpm log: %w", err)
	}
	if _, err := io.WriteString(f, FormatRecord(at, bpm)); err != nil {
		f.Close()
		return fmt.Errorf("write bpm log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close bpm log: %w", err)
	}
	return nil
}

// WriterLog appends records to an io.Writer.
type WriterLog struct {
	W io.Writer
}

// Record writes one line.
func (l WriterLog) Record(at time.Time, bpm float64) error {
	_, err := io.WriteString(l.W, FormatRecord(at, bpm))
	return err
}
