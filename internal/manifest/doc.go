// Package manifest loads the package collection that drives a pinfetch run.
//
// A manifest lists source repositories and the version each should be pinned
// to. Files ending in .json are strict JSON, .jsonc files may carry comments and
// trailing commas, and .yaml or .yml files are decoded as YAML. Every format
// shares one shape:
//
//	{ "packages": [ { "url": "...", "versions": [ { "version": "..." } ] } ] }
package manifest
