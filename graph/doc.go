// Package graph is the op-DAG substrate shared by every pyramid
// builder: an append-only recorder of operator invocations over opaque
// feature-map handles.
//
// What:
//
//   - Node — one operator invocation (or backbone input) with a stable
//     sequential ID, a human-readable name, an OpKind, the pyramid level
//     it represents, a Role tag, typed Attrs, and its input nodes.
//   - Graph — the recorder. Input declares a backbone feed; Apply
//     appends an operator node. Nodes are returned in emission order,
//     which is a valid topological order by construction.
//   - Interp — the closed interpolation enum (Bilinear, Nearest) used by
//     resize/upsample nodes, validated by builders at entry.
//
// Why:
//
//   - The pyramid builders decide which operator runs on which inputs in
//     what order; they never execute anything. Recording that decision
//     as a DAG keeps the builders independent of any tensor runtime and
//     makes wiring directly testable (edge presence, term counts).
//   - Roles plus integer levels, not derived string keys ("P3_in",
//     "P3_td"), are the source of truth for graph wiring.
//
// Guarantees:
//
//   - Deterministic: node IDs are assigned sequentially; identical call
//     sequences produce identical graphs.
//   - Single-pass ownership: a Graph is built by one goroutine and never
//     mutated after the builder returns; distinct Graphs share nothing.
//   - Apply never fails for valid arguments; nil or foreign input nodes
//     are programmer errors and panic (algorithms validate before
//     emitting, so a released builder never triggers this).
//
// Errors:
//
//   - ErrUnsupportedDimensionality: spatial ndim outside {2, 3}.
//   - ErrUnsupportedInterpolation: interpolation mode outside the enum.
//     Both are returned by the builders' entry validation, not by Graph
//     itself.
package graph
