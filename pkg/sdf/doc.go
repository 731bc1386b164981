// Package sdf implements the signed distance field bytecode: the
// opcode set, compiled programs with their constant pools, the
// primitive distance kernels and CSG combinators, the stack
// interpreter that evaluates a program at a point, and a conservative
// bounds pass used for grid sizing.
//
// A Program is produced by the builder in pkg/graph and is immutable
// afterwards; every operation in this package is a total function over
// a validated program.
package sdf
