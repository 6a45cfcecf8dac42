package purge

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/harrisonrobin/trellotodo/pkg/logging"
)

type Status string

const (
	Removed Status = "removed"
	Missing Status = "missing"
	NotFile Status = "not-a-file"
	Failed  Status = "failed"
)

// Outcome is what happened to one path.
type Outcome struct {
	Path   string
	Status Status
	Err    error
}

// Purge deletes every path that is a regular file. Anything else is logged
// and skipped; the whole list is always processed and no error is returned.
func Purge(paths []string, logger *slog.Logger) []Outcome {
	if logger == nil {
		logger = slog.Default()
	}
	outcomes := make([]Outcome, 0, len(paths))
	for _, path := range paths {
		o := purgeOne(path)
		switch o.Status {
		case Removed:
			logger.Info("file deleted", logging.Path(path))
		case Missing:
			logger.Warn("file does not exist", logging.Path(path))
		case NotFile:
			logger.Warn("path is not a regular file", logging.Path(path))
		case Failed:
			if errors.Is(o.Err, fs.ErrPermission) {
				logger.Error("permission denied", logging.Path(path), logging.Err(o.Err))
			} else {
				logger.Error("could not delete file", logging.Path(path), logging.Err(o.Err))
			}
		}
		outcomes = append(outcomes, o)
	}
	return outcomes
}

func purgeOne(path string) Outcome {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Outcome{Path: path, Status: Missing}
		}
		return Outcome{Path: path, Status: Failed, Err: err}
	}
	if !info.Mode().IsRegular() {
		return Outcome{Path: path, Status: NotFile}
	}
	if err := os.Remove(path); err != nil {
		return Outcome{Path: path, Status: Failed, Err: err}
	}
	return Outcome{Path: path, Status: Removed}
}
