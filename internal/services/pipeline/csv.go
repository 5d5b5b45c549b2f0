package pipeline

import (
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"stocksent/pkg/errors"
)

// writeCSV persists rows to path, creating parent directories as needed.
// Write failures are fatal to the run.
func writeCSV(path string, rows interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create output directory for %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(rows, f); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
