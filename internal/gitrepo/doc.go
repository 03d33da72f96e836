// Package gitrepo inspects local git repositories: branch resolution,
// worktree cleanliness, upstream tracking, and ahead/behind counts.
package gitrepo
