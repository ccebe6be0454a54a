// Package files implements the on-disk side of the merge pipeline: naming
// conventions, directory scanning, and the rename protocol that hands files
// to exactly one worker.
//
// File states:
//   - discoverable: <name>, eligible for pairing
//   - claimed: <name>.processing, owned by the worker whose rename succeeded
//   - writing: <result>.tmp, a merge output in progress
//   - published: <result>, renamed from .tmp once the merge completed
//
// Every transition is a single rename or remove. The rename is the only
// exclusion mechanism between workers.
package files
