// Package catalog reads minor-planet orbits in the MPCORB.DAT export format.
package catalog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/unit"

	"github.com/litescript/ls-astromaps/internal/ephem"
)

// ErrInvalidRow is returned for rows that do not describe a usable elliptic orbit.
var ErrInvalidRow = errors.New("invalid catalog row")

// minRowLen covers every column through the semi-major axis.
const minRowLen = 103

// Entry is one catalog row.
type Entry struct {
	Packed      string // packed designation, columns 1-7
	Designation string // readable designation, e.g. "(1) Ceres"
	H, G        float64
	Elements    ephem.Elements
}

// Name returns the readable designation, or the packed one if the row has none.
func (e Entry) Name() string {
	if e.Designation != "" {
		return e.Designation
	}
	return e.Packed
}

// field returns the 1-based inclusive column range [from, to] of line, trimmed.
func field(line string, from, to int) string {
	if from > len(line) {
		return ""
	}
	if to > len(line) {
		to = len(line)
	}
	return strings.TrimSpace(line[from-1 : to])
}

func floatField(line string, from, to int, name string) (float64, error) {
	s := field(line, from, to)
	if s == "" {
		return 0, fmt.Errorf("%w: missing %s", ErrInvalidRow, name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidRow, name, s)
	}
	return v, nil
}

// ParseLine decodes one MPCORB row.
func ParseLine(line string) (Entry, error) {
	line = strings.TrimRight(line, "\r\n")
	if len(line) < minRowLen {
		return Entry{}, fmt.Errorf("%w: short row (%d columns)", ErrInvalidRow, len(line))
	}

	var (
		e    Entry
		err  error
		vals [6]float64
	)
	e.Packed = field(line, 1, 7)
	e.Designation = field(line, 167, 194)

	// H and G are optional.
	e.H, _ = strconv.ParseFloat(field(line, 9, 13), 64)
	e.G, _ = strconv.ParseFloat(field(line, 15, 19), 64)

	cols := []struct {
		from, to int
		name     string
	}{
		{27, 35, "mean anomaly"},
		{38, 46, "argument of perihelion"},
		{49, 57, "ascending node"},
		{60, 68, "inclination"},
		{71, 79, "eccentricity"},
		{93, 103, "semi-major axis"},
	}
	for i, c := range cols {
		if vals[i], err = floatField(line, c.from, c.to, c.name); err != nil {
			return Entry{}, err
		}
	}

	a, ecc := vals[5], vals[4]
	if !(a > 0) {
		return Entry{}, fmt.Errorf("%w: semi-major axis %v", ErrInvalidRow, a)
	}
	if ecc < 0 || ecc >= 1 {
		return Entry{}, fmt.Errorf("%w: eccentricity %v", ErrInvalidRow, ecc)
	}

	epoch, err := UnpackEpoch(field(line, 21, 25))
	if err != nil {
		return Entry{}, err
	}

	e.Elements = ephem.Elements{
		Epoch:       epoch,
		Axis:        a,
		Ecc:         ecc,
		Inc:         unit.AngleFromDeg(vals[3]),
		Node:        unit.AngleFromDeg(vals[2]),
		ArgPeri:     unit.AngleFromDeg(vals[1]),
		MeanAnomaly: unit.AngleFromDeg(vals[0]),
	}
	return e, nil
}

// UnpackEpoch converts a packed epoch such as "K24AH" to a Julian ephemeris date.
func UnpackEpoch(s string) (float64, error) {
	if len(s) != 5 {
		return 0, fmt.Errorf("%w: epoch %q", ErrInvalidRow, s)
	}
	century := strings.IndexByte("IJK", s[0])
	yy, err := strconv.Atoi(s[1:3])
	month := packedDigit(s[3])
	day := packedDigit(s[4])
	if century < 0 || err != nil || month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, fmt.Errorf("%w: epoch %q", ErrInvalidRow, s)
	}
	year := (18+century)*100 + yy
	return julian.CalendarGregorianToJD(year, month, float64(day)), nil
}

// packedDigit decodes 1-9 and A=10 .. V=31.
func packedDigit(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'V':
		return int(c-'A') + 10
	default:
		return -1
	}
}

// Catalog is an in-memory set of parsed rows.
type Catalog struct {
	entries []Entry
	byName  map[string]int
	skipped int
}

// New builds a catalog from already decoded entries.
func New(entries []Entry) *Catalog {
	c := &Catalog{byName: make(map[string]int)}
	for _, e := range entries {
		c.add(e)
	}
	return c
}

// Parse reads MPCORB rows from r. The header, when present, ends at a line of dashes.
// Rows that fail ParseLine are counted in Skipped and left out.
func Parse(r io.Reader) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]int)}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 512), 1<<20)

	inHeader := false
	first := true
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if first {
			first = false
			// Data-only extracts start directly with a row.
			inHeader = !looksLikeRow(line)
		}
		if inHeader {
			if strings.HasPrefix(line, "-----") {
				inHeader = false
			}
			continue
		}

		e, err := ParseLine(line)
		if err != nil {
			c.skipped++
			continue
		}
		c.add(e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return c, nil
}

// looksLikeRow checks the row shape only, so that rejected orbits still count as data.
func looksLikeRow(line string) bool {
	if len(line) < minRowLen {
		return false
	}
	_, err := UnpackEpoch(field(line, 21, 25))
	return err == nil
}

func (c *Catalog) add(e Entry) {
	i := len(c.entries)
	c.entries = append(c.entries, e)
	for _, k := range []string{e.Packed, e.Designation} {
		if k == "" {
			continue
		}
		if _, dup := c.byName[strings.ToLower(k)]; !dup {
			c.byName[strings.ToLower(k)] = i
		}
	}
}

// Len returns the number of usable rows.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Skipped returns how many rows were rejected.
func (c *Catalog) Skipped() int {
	return c.skipped
}

// Entries returns the rows in file order.
func (c *Catalog) Entries() []Entry {
	return c.entries
}

// Lookup finds a row by packed or readable designation (case-insensitive).
func (c *Catalog) Lookup(name string) (Entry, bool) {
	i, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Select returns the named rows, or the first limit rows when names is empty.
// A limit of zero or less means no limit. Unknown names are returned separately.
func (c *Catalog) Select(names []string, limit int) (sel []Entry, missing []string) {
	if len(names) == 0 {
		sel = c.entries
		if limit > 0 && limit < len(sel) {
			sel = sel[:limit]
		}
		return sel, nil
	}
	for _, n := range names {
		if e, ok := c.Lookup(n); ok {
			sel = append(sel, e)
		} else {
			missing = append(missing, n)
		}
	}
	return sel, missing
}
