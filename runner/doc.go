// Package runner holds the shared vocabulary of the congestion experiment runner:
// loosely typed configuration tables, the error taxonomy and packet-size constants.
//
// # Reading Guide
//
// Start with these packages to understand how a run is turned into simulator input:
//   - config/: Aspect and Run identity, the layered key resolver (Config)
//   - assign/: generators that turn terse config sub-tables into descriptors
//   - rv/: random variables handed to the simulator, including empirical CDF means
//
// # Architecture
//
// The runner package defines types shared by every layer; implementations live in
// sub-packages:
//   - runner/rv/: random-variable taxonomy and empirical interpolation policies
//   - runner/assign/: delay, packet-properties and arrivals generators
//   - runner/config/: configuration loading (TOML/YAML) and key resolution
//   - runner/simargs/: positional argument vector for the simulator script
//   - runner/prepare/: run directory preparation (descriptor files, dry run)
//   - runner/manifest/: SQLite ledger of prepared runs
//
// A Config is immutable after construction. Derived descriptors are recomputed on
// every access; callers that need them repeatedly should keep the result.
package runner
