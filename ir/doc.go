// Package ir defines the typed intermediate tree of a shader compilation
// unit and the program state built around it.
//
// The central type is Intermediate. One is created per compilation unit
// and owned by the pass that builds it:
//   - the builder methods (AddBinaryMath, AddAssign, AddSelection, ...)
//     construct tree nodes, inserting implicit conversions and folding
//     constant operands
//   - the layout methods (AddUsedLocation, AddUsedOffsets,
//     AddXfbBufferOffset) track which IO locations, atomic-counter offsets
//     and transform-feedback bytes are claimed
//   - the configuration setters (SetShiftBinding, SetAutoMapBindings, ...)
//     record every action in an ordered process list
//
// # Linking
//
// Units of the same stage are combined with Merge. FinalCheck then runs
// the whole-program checks: entry point count, recursion and missing
// function bodies (the call graph), IO location aliasing, transform
// feedback strides and the layouts each stage requires.
//
// # Diagnostics
//
// Errors found while building or linking do not stop processing. They are
// appended to the unit's InfoSink and counted; NumErrors reports the
// total. Setters of write-once properties return false on a conflicting
// value and leave the first value in place.
//
// # Tree
//
// Nodes implement Node; value-producing nodes implement Typed. Walk and
// Inspect traverse a tree in the manner of go/ast.
package ir
