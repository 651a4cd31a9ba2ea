package ephem

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/litescript/ls-astromaps/internal/astro"
)

const (
	// HorizonsAPIURL is the JPL Horizons JSON API endpoint.
	HorizonsAPIURL = "https://ssd.jpl.nasa.gov/api/horizons.api"

	// RequestTimeout is the HTTP request timeout.
	RequestTimeout = 30 * time.Second

	// vectorCacheSize bounds the number of cached vectors before the cache is reset.
	vectorCacheSize = 4096
)

// HorizonsProvider queries JPL Horizons for heliocentric state vectors.
type HorizonsProvider struct {
	client  *http.Client
	baseURL string

	mu    sync.RWMutex
	cache map[vectorKey]astro.Vec3
}

type vectorKey struct {
	naifID int
	minute int64
}

// NewHorizonsProvider creates a new Horizons API client.
func NewHorizonsProvider() *HorizonsProvider {
	return &HorizonsProvider{
		client: &http.Client{
			Timeout: RequestTimeout,
		},
		baseURL: HorizonsAPIURL,
		cache:   make(map[vectorKey]astro.Vec3),
	}
}

// Name implements Provider.
func (p *HorizonsProvider) Name() string {
	return "Horizons"
}

// Resolve implements Provider.
func (p *HorizonsProvider) Resolve(id BodyID) (Handle, error) {
	return resolveKnown(id)
}

// Available implements Provider.
func (p *HorizonsProvider) Available(id BodyID) bool {
	_, ok := BodiesByID[id]
	return ok
}

// Observe implements Provider.
// Horizons resolves to the minute; results are cached per body and minute.
func (p *HorizonsProvider) Observe(h Handle, t time.Time) (astro.Vec3, error) {
	if v, ok := observeOrbit(h, t); ok {
		return v, nil
	}
	if h.ID == Sun {
		return astro.Vec3{}, nil
	}
	info, ok := BodiesByID[h.ID]
	if !ok {
		return astro.Vec3{}, ErrUnknownBody
	}

	t = t.UTC().Truncate(time.Minute)
	key := vectorKey{naifID: info.NAIFID, minute: t.Unix() / 60}

	p.mu.RLock()
	pos, ok := p.cache[key]
	p.mu.RUnlock()
	if ok {
		return pos, nil
	}

	pos, err := p.queryHeliocentricVectors(info.NAIFID, t)
	if err != nil {
		return astro.Vec3{}, fmt.Errorf("%w: %v", ErrEphemerisUnavailable, err)
	}

	p.mu.Lock()
	if len(p.cache) >= vectorCacheSize {
		p.cache = make(map[vectorKey]astro.Vec3)
	}
	p.cache[key] = pos
	p.mu.Unlock()

	return pos, nil
}

// queryHeliocentricVectors queries Horizons for heliocentric ecliptic state vectors.
func (p *HorizonsProvider) queryHeliocentricVectors(naifID int, t time.Time) (astro.Vec3, error) {
	// Values must be quoted with single quotes
	params := url.Values{}
	params.Set("format", "json")
	params.Set("COMMAND", fmt.Sprintf("'%d'", naifID))
	params.Set("OBJ_DATA", "NO")
	params.Set("MAKE_EPHEM", "YES")
	params.Set("EPHEM_TYPE", "VECTORS")
	params.Set("CENTER", "'@10'")       // Sun center
	params.Set("REF_PLANE", "ECLIPTIC") // Ecliptic plane
	params.Set("REF_SYSTEM", "ICRF")
	params.Set("VEC_TABLE", "'1'") // Position only
	params.Set("VEC_LABELS", "NO")
	params.Set("OUT_UNITS", "'AU-D'")
	params.Set("TIME_TYPE", "UT")
	params.Set("START_TIME", fmt.Sprintf("'%s'", formatHorizonsTime(t)))
	params.Set("STOP_TIME", fmt.Sprintf("'%s'", formatHorizonsTime(t.Add(time.Minute))))
	params.Set("STEP_SIZE", "'1 m'")

	reqURL := p.baseURL + "?" + params.Encode()

	resp, err := p.client.Get(reqURL)
	if err != nil {
		return astro.Vec3{}, fmt.Errorf("horizons vector request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return astro.Vec3{}, fmt.Errorf("horizons returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return astro.Vec3{}, fmt.Errorf("failed to read response: %w", err)
	}

	return parseVectorResponse(body)
}

// horizonsResponse represents the JSON API response.
type horizonsResponse struct {
	Signature struct {
		Version string `json:"version"`
		Source  string `json:"source"`
	} `json:"signature"`
	Result string `json:"result"`
	Error  string `json:"error"`
}

// parseVectorResponse parses the Horizons JSON response for vector data.
func parseVectorResponse(body []byte) (astro.Vec3, error) {
	var resp horizonsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return astro.Vec3{}, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if resp.Error != "" {
		return astro.Vec3{}, fmt.Errorf("horizons: %s", strings.TrimSpace(resp.Error))
	}

	// Data section sits between $$SOE and $$EOE
	soeIdx := strings.Index(resp.Result, "$$SOE")
	eoeIdx := strings.Index(resp.Result, "$$EOE")
	if soeIdx == -1 || eoeIdx == -1 || soeIdx >= eoeIdx {
		return astro.Vec3{}, fmt.Errorf("could not find vector data markers")
	}

	lines := strings.Split(resp.Result[soeIdx+5:eoeIdx], "\n")

	// Vector format (VEC_TABLE='1'):
	// 2460669.500000000 = A.D. 2024-Dec-25 00:00:00.0000 TDB
	//  X = 1.234567890123456E-01 Y = 2.345678901234567E-01 Z = 3.456789012345678E-05
	// or unlabeled:
	//  1.234567890123456E-01  2.345678901234567E-01  3.456789012345678E-05
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "A.D.") {
			continue
		}

		if strings.Contains(line, "X =") {
			return parseVectorLabeled(line)
		}

		vec, err := parseVectorUnlabeled(line)
		if err == nil {
			return vec, nil
		}
	}

	return astro.Vec3{}, fmt.Errorf("could not parse vector data")
}

// parseVectorLabeled parses: X = 1.23E+00 Y = 2.34E+00 Z = 3.45E-01
func parseVectorLabeled(line string) (astro.Vec3, error) {
	parts := strings.Split(line, "=")
	if len(parts) < 4 {
		return astro.Vec3{}, fmt.Errorf("invalid labeled format")
	}

	// parts[1] is "X_value Y", parts[2] is "Y_value Z", parts[3] is "Z_value"
	var vals [3]float64
	for i, part := range parts[1:4] {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			return astro.Vec3{}, fmt.Errorf("invalid labeled format")
		}
		v, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return astro.Vec3{}, err
		}
		vals[i] = v
	}

	return astro.Vec3{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

// parseVectorUnlabeled parses: 1.23E+00  2.34E+00  3.45E-01
func parseVectorUnlabeled(line string) (astro.Vec3, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return astro.Vec3{}, fmt.Errorf("insufficient fields: %d", len(fields))
	}

	var vals [3]float64
	for i := range vals {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return astro.Vec3{}, err
		}
		vals[i] = v
	}

	return astro.Vec3{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

// formatHorizonsTime formats a time for Horizons API.
func formatHorizonsTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04")
}
