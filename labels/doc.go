// Package labels implements weighted random scattering of sparse voxel
// labels into disjoint, class-balanced subsets.
//
// A Block holds one rectangular region of per-voxel class annotations
// (0 = unlabeled, 1..K = class). The Scatterer partitions the labeled
// voxels of one or more blocks into N rounds: every labeled voxel ends
// up in exactly one round, each class is split proportionally to the
// caller's weight vector, and results are reproducible for a fixed seed.
//
// The scatter itself is pure and single-threaded: no I/O, no shared
// state. Everything around it (project files, volume I/O, classifier
// invocation) lives in the other packages of this module.
package labels
