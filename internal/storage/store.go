package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/galaxysim/internal/config"
	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/sim"
)

const (
	metadataFile  = "metadata.json"
	seriesFile    = "series.csv"
	particlesFile = "particles.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Particles  int                `json:"particles"`
	Integrator string             `json:"integrator"`
	Dt         float64            `json:"dt"`
	Steps      int                `json:"steps"`
	Config     *config.Config     `json:"config,omitempty"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes a run directory named after a fresh UUID: metadata, the
// sampled series and the final particle state.
func (s *Store) Save(meta RunMetadata, result *sim.Result, final dynamo.Particles) (string, error) {
	meta.ID = uuid.NewString()
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.Particles = len(final)
	if result != nil {
		meta.Steps = result.StepsTaken
		meta.Metrics = result.Metrics
	}

	runDir := s.Dir(meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if result != nil {
		if err := writeSeries(filepath.Join(runDir, seriesFile), result); err != nil {
			return "", err
		}
	}
	if err := writeParticles(filepath.Join(runDir, particlesFile), final); err != nil {
		return "", err
	}

	return meta.ID, nil
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

func writeCSV(path string, header []string, rows func(w *csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := rows(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func writeSeries(path string, r *sim.Result) error {
	return writeCSV(path, []string{"time", "mean_radius", "energy"}, func(w *csv.Writer) error {
		for i := range r.Times {
			row := []string{
				strconv.FormatFloat(r.Times[i], 'g', -1, 64),
				strconv.FormatFloat(r.MeanRadius[i], 'g', -1, 64),
				strconv.FormatFloat(r.Energy[i], 'g', -1, 64),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

var particleHeader = []string{"x", "y", "z", "r", "g", "b", "vx", "vy", "vz", "mass"}

func writeParticles(path string, p dynamo.Particles) error {
	return writeCSV(path, particleHeader, func(w *csv.Writer) error {
		row := make([]string, len(particleHeader))
		for i := range p {
			vals := particleValues(&p[i])
			for j, v := range vals {
				row[j] = strconv.FormatFloat(float64(v), 'g', -1, 32)
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func particleValues(p *dynamo.Particle) [10]float32 {
	return [10]float32{
		p.Position[0], p.Position[1], p.Position[2],
		p.Color[0], p.Color[1], p.Color[2],
		p.Velocity[0], p.Velocity[1], p.Velocity[2],
		p.Mass,
	}
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

func readCSV(path string, fields int) ([][]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = fields

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]float64{}, nil
	}

	rows := make([][]float64, 0, len(records)-1)
	for i, record := range records[1:] {
		row := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", filepath.Base(path), i+2, err)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadSeries reads the sampled series back into a Result without metrics.
func (s *Store) LoadSeries(runID string) (*sim.Result, error) {
	rows, err := readCSV(filepath.Join(s.Dir(runID), seriesFile), 3)
	if err != nil {
		return nil, err
	}

	r := &sim.Result{
		Times:      make([]float64, len(rows)),
		MeanRadius: make([]float64, len(rows)),
		Energy:     make([]float64, len(rows)),
	}
	for i, row := range rows {
		r.Times[i], r.MeanRadius[i], r.Energy[i] = row[0], row[1], row[2]
	}
	return r, nil
}

func (s *Store) LoadParticles(runID string) (dynamo.Particles, error) {
	rows, err := readCSV(filepath.Join(s.Dir(runID), particlesFile), len(particleHeader))
	if err != nil {
		return nil, err
	}

	p := make(dynamo.Particles, len(rows))
	for i, row := range rows {
		var v [10]float32
		for j := range v {
			v[j] = float32(row[j])
		}
		p[i] = dynamo.Particle{
			Position: [3]float32{v[0], v[1], v[2]},
			Color:    [3]float32{v[3], v[4], v[5]},
			Velocity: [3]float32{v[6], v[7], v[8]},
			Mass:     v[9],
		}
	}
	return p, nil
}
