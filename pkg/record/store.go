package record

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dd0wney/cluso-flow/pkg/logging"
)

const filePermissions = 0o644

// Recorder receives record I/O outcomes; *metrics.Registry implements it
type Recorder interface {
	RecordRecordOperation(operation, format string, err error, size int)
}

type nopRecorder struct{}

func (nopRecorder) RecordRecordOperation(string, string, error, int) {}

// Store loads and saves records on the local filesystem
type Store struct {
	logger   logging.Logger
	recorder Recorder
}

// NewStore creates a store. A nil logger or recorder discards output.
func NewStore(logger logging.Logger, recorder Recorder) *Store {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Store{logger: logger.With(logging.Component("record")), recorder: recorder}
}

// Load reads the record at path, choosing the format from its extension
func (s *Store) Load(path string) (Record, error) {
	f, err := FormatFor(path)
	if err != nil {
		return Record{}, err
	}

	op := logging.StartTimer(s.logger, "record loaded", logging.Path(path), logging.String("format", string(f)))

	data, err := os.ReadFile(path)
	if err != nil {
		s.recorder.RecordRecordOperation("load", string(f), err, 0)
		op.EndError(err)
		return Record{}, fmt.Errorf("failed to read record: %w", err)
	}

	r, err := Unmarshal(data, f)
	s.recorder.RecordRecordOperation("load", string(f), err, len(data))
	if err != nil {
		op.EndError(err)
		return Record{}, err
	}

	op.End(logging.Int("nodes", len(r.Workflow.Nodes)), logging.Int("connections", len(r.Workflow.Connections)))
	return r, nil
}

// Save writes r to path atomically, choosing the format from its extension
func (s *Store) Save(path string, r Record) error {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}

	op := logging.StartTimer(s.logger, "record saved", logging.Path(path), logging.String("format", string(f)))

	data, err := Marshal(r, f)
	if err == nil {
		err = writeAtomic(path, data)
	}
	s.recorder.RecordRecordOperation("save", string(f), err, len(data))
	if err != nil {
		op.EndError(err)
		return err
	}

	op.End(logging.Int("bytes", len(data)))
	return nil
}

// writeAtomic writes to a temporary file first and renames it over path
func writeAtomic(path string, data []byte) error {
	tmpPath := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp")

	if err := os.WriteFile(tmpPath, data, filePermissions); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename record: %w", err)
	}
	return nil
}
