// Package numerics provides the dense linear-algebra primitives the
// backward pass builds on: vectors, a flat row-major matrix, and a
// symmetric indefinite-tolerant LDLᵀ factorization with a
// positive-definiteness probe.
//
//   - [Vector]: a real vector with the elementwise ops the backward and
//     forward passes need (Add, Sub, Scale, Dot, Norm).
//   - [Matrix]: a dense, row-major matrix sized once and reused across
//     iterations from the solver's workspace.
//   - [LDLT]: factorization of a symmetric matrix, reporting whether the
//     matrix was positive definite.
//
// Most operations return a freshly allocated result. MulVecInto and
// LDLT.SolveInto write into a caller-owned buffer instead.
package numerics
