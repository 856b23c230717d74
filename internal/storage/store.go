package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/deltasim/internal/config"
	"github.com/san-kum/deltasim/internal/experiment"
)

var ErrRunNotFound = errors.New("run not found")

var seriesHeader = []string{"tick", "time", "live", "total", "branched", "cutoffs", "oxbows"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Ticks     int                `json:"ticks"`
	Model     string             `json:"branch_model"`
	Channels  int                `json:"channels"`
	Live      int                `json:"live"`
	Oxbows    int                `json:"oxbows"`
	Exhausted bool               `json:"exhausted,omitempty"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes metadata.json, config.yaml and series.csv into a fresh run
// directory and returns the run id.
func (s *Store) Save(cfg *config.Config, result *experiment.Result) (string, error) {
	runID := fmt.Sprintf("%s_%s", cfg.Name, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Name:      cfg.Name,
		Timestamp: time.Now(),
		Seed:      cfg.Seed,
		Ticks:     len(result.Reports),
		Model:     cfg.Branching.Model,
		Channels:  len(result.Final.Channels),
		Live:      result.Final.Live(),
		Oxbows:    result.Final.OxbowCount(),
		Exhausted: result.Exhausted,
		Metrics:   result.Metrics,
	}
	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, "config.yaml"), cfg); err != nil {
		return "", err
	}
	if err := writeSeries(filepath.Join(runDir, "series.csv"), result.Series); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func metricNames(series []experiment.Sample) []string {
	if len(series) == 0 {
		return nil
	}
	names := make([]string, 0, len(series[0].Metrics))
	for name := range series[0].Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func writeSeries(path string, series []experiment.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	names := metricNames(series)
	if err := w.Write(append(append([]string{}, seriesHeader...), names...)); err != nil {
		return err
	}

	for _, s := range series {
		row := []string{
			strconv.Itoa(s.Tick),
			strconv.FormatFloat(s.Time, 'f', 6, 64),
			strconv.Itoa(s.Live),
			strconv.Itoa(s.Total),
			strconv.Itoa(s.Branched),
			strconv.Itoa(s.Cutoffs),
			strconv.Itoa(s.Oxbows),
		}
		for _, name := range names {
			row = append(row, strconv.FormatFloat(s.Metrics[name], 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata for %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadConfig returns the configuration a run was made with.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, "config.yaml"))
}

func (s *Store) LoadSeries(runID string) ([]experiment.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "series.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []experiment.Sample{}, nil
	}

	header := records[0]
	if len(header) < len(seriesHeader) {
		return nil, fmt.Errorf("series for %s: short header %v", runID, header)
	}
	names := header[len(seriesHeader):]

	series := make([]experiment.Sample, 0, len(records)-1)
	for line, rec := range records[1:] {
		s, err := parseSample(rec, names)
		if err != nil {
			return nil, fmt.Errorf("series for %s line %d: %w", runID, line+2, err)
		}
		series = append(series, s)
	}
	return series, nil
}

func parseSample(rec []string, names []string) (experiment.Sample, error) {
	var s experiment.Sample
	ints := []*int{&s.Tick, nil, &s.Live, &s.Total, &s.Branched, &s.Cutoffs, &s.Oxbows}
	for i, dst := range ints {
		if dst == nil {
			t, err := strconv.ParseFloat(rec[i], 64)
			if err != nil {
				return s, err
			}
			s.Time = t
			continue
		}
		v, err := strconv.Atoi(rec[i])
		if err != nil {
			return s, err
		}
		*dst = v
	}

	if len(names) > 0 {
		s.Metrics = make(map[string]float64, len(names))
		for k, name := range names {
			v, err := strconv.ParseFloat(rec[len(seriesHeader)+k], 64)
			if err != nil {
				return s, err
			}
			s.Metrics[name] = v
		}
	}
	return s, nil
}
