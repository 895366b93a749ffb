// Package ingest turns raw broker messages into stored baby care events.
//
// The Normalizer holds a registered table of dialect parsers
// (Zigbee2MQTT, Home Assistant states, Z-Wave, and the application's
// custom topic family) dispatched by longest topic prefix. Messages
// that parse to nothing are dropped silently at debug level.
//
// The Pipeline runs synchronously in the broker delivery callback:
// normalize, resolve against the mapping table, append to the event
// store, publish the event back onto the application topic family, and
// notify the live-update callback. Per-device ordering is inherited
// from the connector's ordered handler execution.
package ingest
