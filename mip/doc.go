// Package mip provides a small modeling layer for linear programs over
// binary decision variables, together with a bundled exact solver.
//
// The optimize package drives it as an opaque collaborator: model
// construction and solving are ordinary pipeline tasks, and nothing in the
// scheduling core depends on this package.
package mip
