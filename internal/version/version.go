// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Sampling runs with workers, track plot, Prometheus textfile metrics, chart viewer
// 0.2.0 - VSOP87, JPL DE and Horizons providers, MPCORB minor planets
// 0.1.0 - Initial release: single-instant chart with zodiac placements and JSON export
