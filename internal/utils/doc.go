// Package utils hosts shared infrastructure: configuration loading,
// logger construction, command context plumbing, and output writers.
package utils
