package history

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"
)

// Point is one exported sample: epoch seconds and degrees.
// It encodes as a two-element JSON array.
type Point struct {
	Epoch  float64
	LonDeg float64
}

// MarshalJSON implements json.Marshaler.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Epoch, p.LonDeg})
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Point) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("point: want [epoch, degrees], got %d values", len(pair))
	}
	p.Epoch, p.LonDeg = pair[0], pair[1]
	return nil
}

// Snapshot maps body names to their exported samples in time order.
type Snapshot map[string][]Point

func epochSeconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}

func fromEpoch(e float64) time.Time {
	sec, frac := math.Modf(e)
	return time.Unix(int64(sec), int64(math.Round(frac*1e9))).UTC()
}

// ExportSnapshot copies every series into a Snapshot.
func (h *History) ExportSnapshot() Snapshot {
	snap := make(Snapshot)
	for _, b := range h.Bodies() {
		s, ok := h.get(b)
		if !ok {
			continue
		}
		samples := s.snapshot()
		points := make([]Point, len(samples))
		for i, smp := range samples {
			points[i] = Point{Epoch: epochSeconds(smp.Time), LonDeg: smp.LonDeg}
		}
		snap[b] = points
	}
	return snap
}

// FromSnapshot rebuilds a history from exported samples.
func FromSnapshot(snap Snapshot, opts ...Option) (*History, error) {
	h := New(opts...)
	for body, points := range snap {
		for _, p := range points {
			if err := h.AddPosition(body, fromEpoch(p.Epoch), p.LonDeg); err != nil {
				return nil, err
			}
		}
	}
	return h, nil
}

// WriteJSON writes the snapshot of h as indented JSON.
func (h *History) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(h.ExportSnapshot())
}

// ReadJSON loads a history written by WriteJSON.
func ReadJSON(r io.Reader, opts ...Option) (*History, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return FromSnapshot(snap, opts...)
}
