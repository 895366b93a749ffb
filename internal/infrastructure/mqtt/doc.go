// Package mqtt provides the broker connector for the baby care tracker.
//
// This package manages:
//   - Connection to the Mosquitto broker bundled with Home Assistant
//   - Subscriptions to the four device dialect topic families plus the
//     application's custom topic family, restored after every reconnect
//   - Retained add-on status publishing (online/offline) with an LWT
//     fallback for crashes
//   - Reconnection under exponential backoff: 5s floor, doubling to a
//     300s ceiling, reset to the floor on success
//
// # Reconnect supervision
//
// Paho's built-in auto-reconnect is disabled. The client owns a single
// supervised reconnect loop bound to an internal context; Close cancels
// that context and waits for the loop before publishing offline status,
// so a pending retry can never resurrect the connection after shutdown
// begins. Broker unavailability is never fatal to the process.
//
// # Ordering
//
// Handlers execute synchronously in broker arrival order
// (SetOrderMatters). The ingestion pipeline depends on this: sleep
// session reconstruction needs events from one device in order.
package mqtt
