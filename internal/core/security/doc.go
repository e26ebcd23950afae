// Package security classifies command lines against the guard policy.
//
// A policy has two tiers of substring patterns:
//
//   - Protected targets: resources (partitions, device nodes) that must never
//     be touched. A match is a hard deny that no confirmation can override.
//   - Dangerous commands: destructive but occasionally legitimate operations.
//     A match defers the decision to a human confirmation.
//
// Protected targets are checked first. A command that matches both tiers is
// classified as ProtectedTarget and is never offered for confirmation.
//
// Matching is plain case-sensitive substring containment with no path
// normalization, so a caller can evade a pattern with an absolute path, a
// symlink or another binary name. Commands are copied into a bounded buffer
// of MaxCommandLen bytes; anything beyond that is cut off, and the truncation
// is reported on the result because it may hide or fake a match.
package security
