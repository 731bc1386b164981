// Package graph is the authoring layer: a node graph of primitives,
// CSG operators, and spatial transforms that compiles down to the
// bytecode in pkg/sdf. The graph is the mutable, builder-friendly
// form; the compiled Program is the immutable, evaluatable form.
package graph
