// Package cautious coordinates reads and writes of files that another process
// may touch at the same time.
//
// Mutual exclusion is provided by a marker file next to the target,
// <target>.lock, created with O_EXCL. Whoever creates the marker holds the
// lock; removing it releases the lock. Locks are per path: operations on
// different targets never contend. Contending callers are not ordered; the
// first retry that finds the marker gone wins.
//
// Every cautious operation follows the same shape:
//
//	acquire marker -> read or write -> release marker
//
// and the release step runs whatever happened in between. The outcome of the
// data operation and the outcome of the release are reported separately: a
// failed release is returned as a *ReleaseError and never discards data that
// was already read.
package cautious
