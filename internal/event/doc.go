// Package event defines the baby care action vocabulary and the
// append-only domain event store.
//
// The store is the system's durable record: appends propagate failures
// to the caller, queries are ordered newest-first with limit/offset
// pagination, and retention cleanup removes events past a configured
// horizon. Ids are strictly increasing and never reused.
package event
