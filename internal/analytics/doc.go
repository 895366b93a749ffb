// Package analytics computes feeding, sleep, and diaper statistics over
// the recorded event history.
//
// The Engine reads event slices from the store and folds them into
// result structs. Every computation is a pure function of the events it
// is given: results are computed fresh per call, never cached, so two
// calls over the same data always agree.
//
// Sleep time is derived by pairing sleep_start and wake_up events into
// sessions. A second sleep_start before a wake_up replaces the open
// start, a wake_up with no open start is ignored, and an open start
// with no wake_up yet contributes nothing.
package analytics
