// Package cli assembles the sentiflow command-line interface. It wires the
// run, schedule, and verify commands into a Cobra hierarchy, loads layered
// configuration through viper, and provisions the shared zap logger the
// commands report through.
package cli
