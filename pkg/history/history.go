package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Run records one successful reconciliation.
type Run struct {
	At           time.Time `json:"at"`
	Day          string    `json:"day"`
	DoneArchived bool      `json:"done_archived"`
	Everyday     int       `json:"everyday"`
	Weekday      int       `json:"weekday"`
	Calendar     int       `json:"calendar"`
}

// Journal maps a date (YYYY-MM-DD) to the last run on that date.
type Journal struct {
	Runs  map[string]Run `json:"runs"`
	Path  string         `json:"-"`
	mu    sync.RWMutex
	dirty bool
}

// Open loads the journal at path, or returns an empty one if the file does
// not exist yet.
func Open(path string) (*Journal, error) {
	j := &Journal{
		Runs: make(map[string]Run),
		Path: path,
	}

	if _, err := os.Stat(path); err == nil {
		if err := j.Load(); err != nil {
			return nil, err
		}
	}
	return j, nil
}

func (j *Journal) Load() error {
	f, err := os.Open(j.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	j.mu.Lock()
	defer j.mu.Unlock()
	if err := json.NewDecoder(f).Decode(&j.Runs); err != nil {
		return err
	}
	if j.Runs == nil {
		j.Runs = make(map[string]Run)
	}
	return nil
}

func (j *Journal) Save() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.dirty {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(j.Path), 0700); err != nil {
		return err
	}
	f, err := os.Create(j.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(j.Runs); err != nil {
		return err
	}
	j.dirty = false
	return nil
}

func (j *Journal) Get(date string) (Run, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	r, ok := j.Runs[date]
	return r, ok
}

// Record stores run under date, replacing an earlier run that day.
func (j *Journal) Record(date string, run Run) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Runs[date] = run
	j.dirty = true
}

// Dates returns the recorded dates, oldest first.
func (j *Journal) Dates() []string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	dates := make([]string, 0, len(j.Runs))
	for d := range j.Runs {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Prune drops all but the newest keep dates.
func (j *Journal) Prune(keep int) {
	dates := j.Dates()
	if len(dates) <= keep {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, d := range dates[:len(dates)-keep] {
		delete(j.Runs, d)
		j.dirty = true
	}
}
