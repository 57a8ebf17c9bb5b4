// Package fetch clones or updates every package listed in a manifest and pins
// each working copy to its requested version.
//
// Packages are processed strictly one at a time in manifest order. A package
// that fails validation, cloning or checkout is counted and reported, and the
// run moves on to the next one; only manifest-level problems and a held
// workspace lock abort a run. The fetch and list commands are assembled by
// CommandBuilder and ListCommandBuilder.
package fetch
