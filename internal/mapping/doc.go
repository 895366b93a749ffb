// Package mapping persists device trigger to baby care action mappings
// and resolves them during ingestion.
//
// Resolve is the hot-path read: an exact (device_id, trigger_type) match
// over enabled rows, lowest id first. No match means "no domain event",
// which is a normal outcome rather than an error. Mutation happens only
// through the admin API outside the ingestion path.
package mapping
