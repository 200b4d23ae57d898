package persistence

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/talgya/hamlet/internal/ecs"
	"github.com/talgya/hamlet/internal/engine"
	"github.com/talgya/hamlet/internal/world"
)

// Snapshot is the exported form of a finished run.
type Snapshot struct {
	Seed          int64                `json:"seed"`
	RunID         string               `json:"run_id"`
	Date          string               `json:"date"`
	Ticks         uint64               `json:"ticks"`
	Stats         engine.SimStats      `json:"stats"`
	Layout        []*world.Plot        `json:"layout,omitempty"`
	Entities      []EntityRecord       `json:"entities"`
	Relationships []RelationshipRecord `json:"relationships"`
	Events        []EventRecord        `json:"events"`
}

// NewSnapshot captures the simulation's current state.
func NewSnapshot(sim *engine.Simulation) (*Snapshot, error) {
	snap := &Snapshot{
		Seed:          sim.Config.Seed,
		RunID:         sim.RunID.String(),
		Date:          sim.Clock.Now.String(),
		Ticks:         sim.Engine.Tick,
		Stats:         sim.Stats,
		Entities:      EntityRecords(sim.World),
		Relationships: RelationshipRecords(sim.Graph),
	}
	if layout, err := ecs.Resource[*world.Layout](sim.World); err == nil {
		snap.Layout = layout.Ordered()
	}
	for _, inst := range sim.History().Events() {
		rec, err := NewEventRecord(inst)
		if err != nil {
			return nil, err
		}
		snap.Events = append(snap.Events, rec)
	}
	return snap, nil
}

// Export writes the simulation as zstd-compressed JSON.
func Export(sim *engine.Simulation, path string) error {
	snap, err := NewSnapshot(sim)
	if err != nil {
		return err
	}
	return WriteSnapshot(path, snap)
}

// WriteSnapshot writes snap to path as zstd-compressed JSON.
func WriteSnapshot(path string, snap *Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(enc, 256*1024)
	if err := json.NewEncoder(bw).Encode(snap); err != nil {
		enc.Close()
		return fmt.Errorf("json encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Sync()
}

// ReadSnapshot loads a snapshot written by WriteSnapshot.
func ReadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var snap Snapshot
	if err := json.NewDecoder(bufio.NewReaderSize(dec, 256*1024)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("json decode: %w", err)
	}
	return &snap, nil
}
