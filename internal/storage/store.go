// Package storage persists clips under a base directory, one directory per
// clip holding metadata.json and frames.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/karswell/retrace/internal/replay"
)

// columns per body in frames.csv: pos(3) rot(4) vel(3) angVel(3) applied
// accel(3) angAccel(3)
const perBody = 20

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// ClipMetadata describes one stored clip.
type ClipMetadata struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	FixedDeltaTime float32   `json:"fixed_delta_time"`
	Bodies         int       `json:"bodies"`
	Frames         int       `json:"frames"`
	Duration       float32   `json:"duration"`
}

// Save writes the clip under a fresh ID and returns it. Failures leave the
// in-memory clip untouched so the caller can retry.
func (s *Store) Save(name string, clip *replay.Clip) (string, error) {
	if err := clip.Validate(clip.BodyCount()); err != nil {
		return "", err
	}

	clipID := fmt.Sprintf("%s_%d", name, time.Now().Unix())
	clipDir := filepath.Join(s.baseDir, clipID)
	if err := os.MkdirAll(clipDir, 0755); err != nil {
		return "", err
	}

	meta := ClipMetadata{
		ID:             clipID,
		Timestamp:      time.Now(),
		FixedDeltaTime: clip.FixedDeltaTime,
		Bodies:         clip.BodyCount(),
		Frames:         len(clip.Frames),
		Duration:       clip.Duration(),
	}

	metaFile, err := os.Create(filepath.Join(clipDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(clipDir, "frames.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write(header(clip.BodyCount())); err != nil {
		return "", err
	}
	for _, f := range clip.Frames {
		if err := w.Write(frameRow(f)); err != nil {
			return "", err
		}
	}

	return clipID, w.Error()
}

func header(bodies int) []string {
	h := []string{"time"}
	for i := 0; i < bodies; i++ {
		for _, col := range []string{
			"px", "py", "pz", "qx", "qy", "qz", "qw",
			"vx", "vy", "vz", "wx", "wy", "wz",
			"applied", "ax", "ay", "az", "aax", "aay", "aaz",
		} {
			h = append(h, fmt.Sprintf("b%d_%s", i, col))
		}
	}
	return h
}

func frameRow(f replay.Frame) []string {
	row := []string{f32(f.T)}
	for _, smp := range f.Samples {
		row = append(row,
			f32(smp.Pos[0]), f32(smp.Pos[1]), f32(smp.Pos[2]),
			f32(smp.Rot.X()), f32(smp.Rot.Y()), f32(smp.Rot.Z()), f32(smp.Rot.W),
			f32(smp.Vel[0]), f32(smp.Vel[1]), f32(smp.Vel[2]),
			f32(smp.AngVel[0]), f32(smp.AngVel[1]), f32(smp.AngVel[2]),
			boolCol(smp.HasApplied),
			f32(smp.AppliedAccel[0]), f32(smp.AppliedAccel[1]), f32(smp.AppliedAccel[2]),
			f32(smp.AppliedAngAccel[0]), f32(smp.AppliedAngAccel[1]), f32(smp.AppliedAngAccel[2]),
		)
	}
	return row
}

func f32(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

func boolCol(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// List returns metadata for every stored clip, skipping unreadable entries.
func (s *Store) List() ([]ClipMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []ClipMetadata{}, nil
		}
		return nil, err
	}

	clips := make([]ClipMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.LoadMetadata(entry.Name())
		if err != nil {
			continue
		}
		clips = append(clips, *meta)
	}
	return clips, nil
}

// LoadMetadata reads one clip's metadata.
func (s *Store) LoadMetadata(clipID string) (*ClipMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, clipID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta ClipMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Load reads a stored clip back into memory.
func (s *Store) Load(clipID string) (*replay.Clip, error) {
	meta, err := s.LoadMetadata(clipID)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.baseDir, clipID, "frames.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("storage: clip %s has no frame data", clipID)
	}

	clip := &replay.Clip{
		FixedDeltaTime: meta.FixedDeltaTime,
		Frames:         make([]replay.Frame, 0, len(rows)-1),
	}
	for _, row := range rows[1:] {
		frame, err := parseRow(row, meta.Bodies)
		if err != nil {
			return nil, fmt.Errorf("storage: clip %s: %w", clipID, err)
		}
		clip.Frames = append(clip.Frames, frame)
	}

	if err := clip.Validate(meta.Bodies); err != nil {
		return nil, err
	}
	return clip, nil
}

func parseRow(row []string, bodies int) (replay.Frame, error) {
	if len(row) != 1+bodies*perBody {
		return replay.Frame{}, fmt.Errorf("row has %d columns, want %d", len(row), 1+bodies*perBody)
	}

	vals := make([]float32, len(row))
	for i, cell := range row {
		v, err := strconv.ParseFloat(cell, 32)
		if err != nil {
			return replay.Frame{}, err
		}
		vals[i] = float32(v)
	}

	frame := replay.Frame{T: vals[0], Samples: make([]replay.Sample, bodies)}
	for i := 0; i < bodies; i++ {
		c := 1 + i*perBody
		frame.Samples[i] = replay.Sample{
			Pos:             mgl32.Vec3{vals[c], vals[c+1], vals[c+2]},
			Rot:             mgl32.Quat{V: mgl32.Vec3{vals[c+3], vals[c+4], vals[c+5]}, W: vals[c+6]},
			Vel:             mgl32.Vec3{vals[c+7], vals[c+8], vals[c+9]},
			AngVel:          mgl32.Vec3{vals[c+10], vals[c+11], vals[c+12]},
			HasApplied:      vals[c+13] != 0,
			AppliedAccel:    mgl32.Vec3{vals[c+14], vals[c+15], vals[c+16]},
			AppliedAngAccel: mgl32.Vec3{vals[c+17], vals[c+18], vals[c+19]},
		}
	}
	return frame, nil
}

// Delete removes a stored clip.
func (s *Store) Delete(clipID string) error {
	return os.RemoveAll(filepath.Join(s.baseDir, clipID))
}
