package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/forestar-be/forestar-facturation/internal/logger"
	"github.com/forestar-be/forestar-facturation/internal/view"
)

const maxNameAttempts = 1000

// Save writes the export into dir and returns the path it used. An existing
// file is never replaced: Réconciliation_x.xlsx becomes Réconciliation_x_(2).xlsx
// and so on.
func Save(dir string, items []view.DisplayItem, meta Meta) (string, error) {
	const op = "Save"
	log := logger.WithComponent("export")

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", newExportError(op, err, "creating export directory")
	}

	data, err := Snapshot(items, meta)
	if err != nil {
		return "", err
	}

	name := FileName(meta)
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	for attempt := 1; attempt <= maxNameAttempts; attempt++ {
		candidate := name
		if attempt > 1 {
			candidate = fmt.Sprintf("%s_(%d)%s", base, attempt, ext)
		}
		path := filepath.Join(dir, candidate)

		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", newExportError(op, err, path)
		}

		_, werr := file.Write(data)
		cerr := file.Close()
		if werr != nil || cerr != nil {
			os.Remove(path)
			return "", newExportError(op, errors.Join(werr, cerr), path)
		}

		log.Info().
			Str("path", path).
			Int("rows", len(items)).
			Bool("filtered", meta.HasActiveFilters()).
			Msg("Export written")
		return path, nil
	}
	return "", newExportError(op, ErrFileExists, name)
}
