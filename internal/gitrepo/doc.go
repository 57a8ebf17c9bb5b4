// Package gitrepo interprets git source locations.
//
// It recognises URL remotes (https, ssh, git, file), scp-like remotes such as
// git@github.com:org/repo.git and plain filesystem paths, and derives the
// working-copy directory name git itself would pick when cloning them.
package gitrepo
