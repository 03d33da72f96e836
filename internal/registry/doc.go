// Package registry holds the immutable set of repositories participating in
// the platform and resolves name/group selectors into ordered subsets.
package registry
