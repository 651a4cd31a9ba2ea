package chart

import (
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/litescript/ls-astromaps/internal/astro"
)

// ExportedPosition is the serialized form of one placed body.
type ExportedPosition struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Distance  float64 `json:"distance"`
	Sign      string  `json:"sign"`
	Degree    float64 `json:"degree"`
}

// Export places every body and returns the serializable map.
// The error, if any, is the *BatchError of ComputeAllPositions.
func (c *Chart) Export() (map[string]ExportedPosition, error) {
	positions, err := c.ComputeAllPositions()
	out := make(map[string]ExportedPosition, len(positions))
	for name, p := range positions {
		pl := Sign(p.LonDeg)
		out[name] = ExportedPosition{
			Latitude:  p.LatDeg,
			Longitude: p.LonDeg,
			Distance:  p.DistAU,
			Sign:      pl.Sign,
			Degree:    pl.DegreeInSign,
		}
	}
	return out, err
}

// ExportDocument is the JSON document written by WriteJSON.
type ExportDocument struct {
	Instant  time.Time                   `json:"instant"`
	Location astro.GeoLocation           `json:"location"`
	Order    []string                    `json:"order"`
	Bodies   map[string]ExportedPosition `json:"bodies"`
	Errors   map[string]string           `json:"errors,omitempty"`
}

// WriteJSON writes the chart as indented JSON. Per-body failures are
// recorded in the document and do not fail the write.
func (c *Chart) WriteJSON(w io.Writer) error {
	bodies, err := c.Export()

	doc := ExportDocument{
		Instant:  c.instant,
		Location: c.location,
		Order:    c.Names(),
		Bodies:   bodies,
	}
	var batch *BatchError
	if errors.As(err, &batch) {
		doc.Errors = make(map[string]string, len(batch.Failures))
		for name, ferr := range batch.Failures {
			doc.Errors[name] = ferr.Error()
		}
	} else if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
