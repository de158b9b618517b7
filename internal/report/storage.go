package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
)

// Storage persists Run reports as indented JSON files under a directory,
// optionally pruning to the most recent N. Grounded on
// pkg/reporting/storage.go's Storage.
type Storage struct {
	outputDir string
	keepLastN int
	log       zerolog.Logger
}

// NewStorage creates outputDir if necessary and returns a bound Storage.
func NewStorage(outputDir string, keepLastN int, log zerolog.Logger) (*Storage, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report output directory: %w", err)
	}
	return &Storage{outputDir: outputDir, keepLastN: keepLastN, log: log}, nil
}

// Save writes run as run-<timestamp>-<runID>.json.
func (s *Storage) Save(run *Run) (string, error) {
	timestamp := run.StartTime.Format("20060102-150405")
	filename := fmt.Sprintf("run-%s-%s.json", timestamp, run.RunID)
	path := filepath.Join(s.outputDir, filename)

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write run report: %w", err)
	}

	s.log.Info().Str("path", path).Msg("run report saved")

	if s.keepLastN > 0 {
		if err := s.cleanupOld(); err != nil {
			s.log.Warn().Err(err).Msg("failed to clean up old run reports")
		}
	}
	return path, nil
}

// Load reads and parses a run report from path.
func (s *Storage) Load(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run report: %w", err)
	}
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run report: %w", err)
	}
	return &run, nil
}

// Summary is a lightweight index entry for List.
type Summary struct {
	RunID        string
	TopologyName string
	StartTime    string
	Status       Status
	Success      bool
	Path         string
}

// List enumerates every run report under the output directory, newest
// first.
func (s *Storage) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read report output directory: %w", err)
	}

	var out []Summary
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.outputDir, e.Name())
		run, err := s.Load(path)
		if err != nil {
			s.log.Warn().Str("path", path).Err(err).Msg("failed to load run report")
			continue
		}
		out = append(out, Summary{
			RunID:        run.RunID,
			TopologyName: run.TopologyName,
			StartTime:    run.StartTime.Format("2006-01-02T15:04:05Z07:00"),
			Status:       run.Status,
			Success:      run.Success,
			Path:         path,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].StartTime > out[j].StartTime })
	return out, nil
}

func (s *Storage) cleanupOld() error {
	summaries, err := s.List()
	if err != nil {
		return err
	}
	if len(summaries) <= s.keepLastN {
		return nil
	}
	for _, old := range summaries[s.keepLastN:] {
		if err := os.Remove(old.Path); err != nil {
			s.log.Warn().Str("path", old.Path).Err(err).Msg("failed to delete old run report")
		}
	}
	return nil
}
