package audit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// FileSuffix is the fixed tail of every run log name.
	FileSuffix = "_phone-normalization.csv"

	columnHeader = "Name,UPN,OldPhone,NewPhone,Result,Message"
)

// FileSink writes one comma-joined line per outcome to a per-run file. Field
// values are written as-is: an embedded comma or newline in a display name or
// message will desynchronize columns. That matches the historical log format
// consumers already parse.
//
// Writes go straight to the file descriptor, unbuffered, so entries flushed
// before a process kill stay valid.
type FileSink struct {
	f    *os.File
	path string
}

// NewFileSink creates the run log in dir, named from the run start time plus
// a short run ID so two runs started in the same second get distinct files,
// and writes the two header lines. The caller supplies the clock so tests are
// deterministic.
func NewFileSink(dir string, started time.Time, runID uuid.UUID) (*FileSink, error) {
	name := started.Format("20060102-150405") + "_" + runID.String()[:8] + FileSuffix
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create run log: %w", err)
	}

	header := fmt.Sprintf("Phone number normalization run %s started %s\n%s\n",
		runID, started.Format(time.RFC1123), columnHeader)
	if _, err := f.WriteString(header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write run log header: %w", err)
	}

	return &FileSink{f: f, path: path}, nil
}

// Path returns the location of the run log.
func (s *FileSink) Path() string {
	return s.path
}

func (s *FileSink) Append(_ context.Context, out Outcome) error {
	line := strings.Join([]string{
		out.DisplayName,
		out.PrincipalName,
		out.OldNumber,
		out.NewNumber,
		out.Result.Label(),
		out.Message,
	}, ",")
	if _, err := s.f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("append outcome: %w", err)
	}
	return nil
}

func (s *FileSink) NoCandidates(_ context.Context) error {
	if _, err := s.f.WriteString("no candidates: no account numbers begin with 0\n"); err != nil {
		return fmt.Errorf("append no-candidates entry: %w", err)
	}
	return nil
}

func (s *FileSink) Close() error {
	return s.f.Close()
}
