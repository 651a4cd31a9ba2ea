package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// row builds an MPCORB line with every field in its column.
func row(packed, epoch string, m, peri, node, inc, ecc, a float64, name string) string {
	buf := []byte(strings.Repeat(" ", 202))
	put := func(col int, s string) { copy(buf[col-1:], s) }

	put(1, packed)
	put(9, " 3.33")
	put(15, " 0.15")
	put(21, epoch)
	put(27, fmt.Sprintf("%9.5f", m))
	put(38, fmt.Sprintf("%9.5f", peri))
	put(49, fmt.Sprintf("%9.5f", node))
	put(60, fmt.Sprintf("%9.5f", inc))
	put(71, fmt.Sprintf("%9.7f", ecc))
	put(81, fmt.Sprintf("%11.8f", 0.21429254))
	put(93, fmt.Sprintf("%11.7f", a))
	put(167, name)
	return strings.TrimRight(string(buf), " ")
}

var (
	ceresRow  = row("00001", "K24AH", 188.70269, 73.27497, 80.25497, 10.58713, 0.0789126, 2.7672056, "(1) Ceres")
	pallasRow = row("00002", "K24AH", 168.80193, 310.91109, 172.88859, 34.92832, 0.2306410, 2.7704736, "(2) Pallas")
)

func TestParseLine(t *testing.T) {
	e, err := ParseLine(ceresRow)
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}

	if e.Packed != "00001" || e.Designation != "(1) Ceres" {
		t.Errorf("designations = %q, %q", e.Packed, e.Designation)
	}
	if e.Name() != "(1) Ceres" {
		t.Errorf("Name() = %q", e.Name())
	}
	if math.Abs(e.H-3.33) > 1e-9 || math.Abs(e.G-0.15) > 1e-9 {
		t.Errorf("H, G = %v, %v", e.H, e.G)
	}
	el := e.Elements
	if el.Epoch != 2460600.5 {
		t.Errorf("Epoch = %v, want 2460600.5", el.Epoch)
	}
	checks := []struct {
		name      string
		got, want float64
	}{
		{"a", el.Axis, 2.7672056},
		{"e", el.Ecc, 0.0789126},
		{"i", el.Inc.Deg(), 10.58713},
		{"node", el.Node.Deg(), 80.25497},
		{"peri", el.ArgPeri.Deg(), 73.27497},
		{"M", el.MeanAnomaly.Deg(), 188.70269},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestParseLine_Rejects(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"short", "00001    3.33  0.15 K24AH"},
		{"zero axis", row("00003", "K24AH", 1, 2, 3, 4, 0.1, 0, "")},
		{"negative axis", row("00004", "K24AH", 1, 2, 3, 4, 0.1, -1.5, "")},
		{"parabolic", row("00005", "K24AH", 1, 2, 3, 4, 1.0, 2.0, "")},
		{"hyperbolic", row("00006", "K24AH", 1, 2, 3, 4, 1.2, 2.0, "")},
		{"bad epoch", row("00007", "X24AH", 1, 2, 3, 4, 0.1, 2.0, "")},
		{"non-numeric axis", strings.Replace(ceresRow, "  2.7672056", "  2.76x2056", 1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseLine(tc.line); !errors.Is(err, ErrInvalidRow) {
				t.Errorf("ParseLine error = %v, want ErrInvalidRow", err)
			}
		})
	}
}

func TestUnpackEpoch(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"K24AH", 2460600.5, false},
		{"J9611", 2450083.5, false},
		{"K0011", 2451544.5, false},
		{"K24D1", 0, true},
		{"K24A0", 0, true},
		{"K24", 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := UnpackEpoch(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Errorf("UnpackEpoch(%q) expected error", tc.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("UnpackEpoch(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("UnpackEpoch(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

const header = `MINOR PLANET CENTER ORBIT DATABASE (MPCORB)

This file contains published orbital elements for all numbered and unnumbered
multi-opposition minor planets.

Des'n     H     G   Epoch     M        Peri.      Node       Incl.       e            n           a        Reference #Obs #Opp    Arc    rms  Perts   Computer
----------------------------------------------------------------------------------------------------------------------------------------------------------------
`

func TestParse(t *testing.T) {
	bad := row("00006", "K24AH", 1, 2, 3, 4, 1.2, 2.0, "comet-like")

	tests := []struct {
		name        string
		input       string
		wantLen     int
		wantSkipped int
	}{
		{"with header", header + ceresRow + "\n\n" + pallasRow + "\n", 2, 0},
		{"rows only", ceresRow + "\n" + pallasRow + "\n", 2, 0},
		{"rejected first row", bad + "\n" + ceresRow + "\n", 1, 1},
		{"header only", header, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Parse(strings.NewReader(tc.input))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if c.Len() != tc.wantLen {
				t.Errorf("Len() = %d, want %d", c.Len(), tc.wantLen)
			}
			if c.Skipped() != tc.wantSkipped {
				t.Errorf("Skipped() = %d, want %d", c.Skipped(), tc.wantSkipped)
			}
		})
	}
}

func TestCatalog_LookupAndSelect(t *testing.T) {
	c, err := Parse(strings.NewReader(ceresRow + "\n" + pallasRow + "\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	for _, name := range []string{"(1) Ceres", "(1) ceres", "00001"} {
		if e, ok := c.Lookup(name); !ok || e.Packed != "00001" {
			t.Errorf("Lookup(%q) = %v, %v", name, e.Packed, ok)
		}
	}

	sel, missing := c.Select(nil, 1)
	if len(sel) != 1 || sel[0].Packed != "00001" || missing != nil {
		t.Errorf("Select(nil, 1) = %d entries, missing %v", len(sel), missing)
	}

	sel, missing = c.Select(nil, 0)
	if len(sel) != 2 {
		t.Errorf("Select(nil, 0) = %d entries, want 2", len(sel))
	}

	sel, missing = c.Select([]string{"(2) Pallas", "(99942) Apophis"}, 0)
	if len(sel) != 1 || sel[0].Packed != "00002" {
		t.Errorf("Select(names) = %v", sel)
	}
	if len(missing) != 1 || missing[0] != "(99942) Apophis" {
		t.Errorf("missing = %v", missing)
	}
}

func TestLoad_Gzip(t *testing.T) {
	dir := t.TempDir()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(header + ceresRow + "\n")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	files := map[string][]byte{
		"MPCORB.DAT.gz": buf.Bytes(),
		"MPCORB.DAT":    []byte(header + ceresRow + "\n"),
	}
	for name, data := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, data, 0o644); err != nil {
				t.Fatal(err)
			}
			c, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if c.Len() != 1 {
				t.Errorf("Len() = %d, want 1", c.Len())
			}
		})
	}
}

func TestSource(t *testing.T) {
	missing := NewSource(filepath.Join(t.TempDir(), "MPCORB.DAT"))
	_, err1 := missing.Catalog()
	_, err2 := missing.Catalog()
	if err1 == nil || err1 != err2 {
		t.Errorf("errors = %v, %v; want the same non-nil error", err1, err2)
	}

	c, _ := Parse(strings.NewReader(ceresRow))
	s := StaticSource(c)
	got, err := s.Catalog()
	if err != nil || got != c {
		t.Errorf("StaticSource.Catalog() = %p, %v", got, err)
	}
}
