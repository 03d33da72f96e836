// Package discovery locates service repositories on disk by marker files,
// covering git working trees, docker-compose projects, and maven projects.
package discovery
