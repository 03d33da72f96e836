// Package operations defines the invocation templates applied across
// repositories: a builtin catalog covering git, docker-compose, and maven
// actions, plus user-defined templates loaded from configuration.
package operations
