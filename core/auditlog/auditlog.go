// Package auditlog records executed shell lines as newline delimited JSON.
package auditlog

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/spf13/afero"
)

// Entry is one executed input line.
type Entry struct {
	// Time is when the line was executed.
	Time time.Time `json:"time"`
	// Line is the raw input line.
	Line string `json:"line"`
	// Commands holds the command name of each pipeline stage, in order.
	Commands []string `json:"commands"`
}

// Recorder appends entries to a log.
type Recorder struct {
	enc *json.Encoder
	now func() time.Time
}

// New creates a Recorder writing to w.
func New(w io.Writer) *Recorder {
	return &Recorder{
		enc: json.NewEncoder(w),
		now: time.Now,
	}
}

// Record appends one entry for the given line.
func (r *Recorder) Record(line string, commands []string) error {
	return r.enc.Encode(&Entry{
		Time:     r.now(),
		Line:     line,
		Commands: commands,
	})
}

// OpenFile opens the audit log at path in an append only state.
func OpenFile(vfs afero.Fs, path string) (afero.File, error) {
	return vfs.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// Read parses a newline delimited JSON log, invoking handler per entry.
func Read(r io.Reader, handler func(e *Entry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var entry Entry
		if err := decoder.Decode(&entry); err != nil {
			return err
		}
		handler(&entry)
	}
	return nil
}
