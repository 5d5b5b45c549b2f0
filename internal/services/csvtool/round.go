package csvtool

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"stocksent/pkg/errors"
	"stocksent/pkg/logger"
)

// Service post-processes pipeline output CSVs
type Service struct {
	log *logger.Logger
}

// NewService creates a csv post-processing service
func NewService(log *logger.Logger) *Service {
	return &Service{log: log}
}

// RoundColumn rounds every numeric value in the named column to one decimal
// place and rewrites the file in place. A missing column is logged and left
// as a no-op; non-numeric cells pass through unchanged. Idempotent at the
// value level.
func (s *Service) RoundColumn(path, column string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	records, err := csv.NewReader(f).ReadAll()
	f.Close()
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	if len(records) == 0 {
		return errors.Wrapf(errors.ErrEmptyFile, "%s", path)
	}

	col := -1
	for i, name := range records[0] {
		if name == column {
			col = i
			break
		}
	}
	if col == -1 {
		s.log.Warnw("Column not found, leaving file unchanged",
			"path", path,
			"column", column,
		)
		return nil
	}

	for _, row := range records[1:] {
		if col >= len(row) {
			continue
		}
		v, err := strconv.ParseFloat(row[col], 64)
		if err != nil {
			continue
		}
		row[col] = decimal.NewFromFloat(v).Round(1).String()
	}

	out, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "rewrite %s", path)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.WriteAll(records); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrapf(err, "flush %s", path)
	}

	s.log.Infow("Rounded column values", "path", path, "column", column)
	return nil
}
