// Package influxdb mirrors recorded baby care events into InfluxDB as
// time-series points.
//
// It wraps the official influxdb-client-go v2 library with connection
// management and non-blocking batched writes. The mirror is optional
// and best-effort: SQLite remains the durable record, and a write
// failure here never fails event ingestion.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    // disabled or unreachable; run without the mirror
//	}
//	defer client.Close()
//
//	client.WriteDomainEvent("sleep_start", "zigbee2mqtt_nursery_button", occurredAt)
//
// # Thread Safety
//
// All methods are safe for concurrent use. Writes are batched per the
// batch_size and flush_interval config settings; batch errors are
// delivered asynchronously via SetOnError.
package influxdb
