// Package cli assembles the fleet command hierarchy: configuration loading,
// logger construction, and the run, repos, compose, and maven command families.
package cli
