// Package versions checks out a requested version label in a working copy.
//
// Release tags are inconsistently named across repositories: some carry a "v"
// prefix and some collide with branch names. Resolver walks an ordered list of
// LabelStrategy values, attempting git checkout with each derived reference
// until one succeeds, and then reports the exact tag or commit HEAD landed on.
package versions
