package mqtt

import (
	"crypto/tls"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/babycare-core/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultConnectTimeout is the maximum time to wait for a connection attempt.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout is the maximum time to wait for publish acknowledgment.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 1000 // milliseconds

	// defaultKeepAlive is the keepalive interval for the connection.
	defaultKeepAlive = 60 * time.Second

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls.VersionTLS12
)

// buildClientOptions creates paho MQTT options from the application config.
//
// This configures:
//   - Broker URL (tcp:// or ssl:// based on TLS setting)
//   - Client ID and optional credentials
//   - Ordered handler execution (per-device event order matters for the
//     sleep session state machine)
//   - Last Will and Testament for crash detection
//
// Paho's built-in auto-reconnect is deliberately disabled: reconnection
// is owned by the client's supervised backoff loop so shutdown can cancel
// it deterministically.
func buildClientOptions(cfg config.MQTTConfig, version string) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	brokerURL := fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port)
	opts.AddBroker(brokerURL)

	opts.SetClientID(cfg.Broker.ClientID)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	// Clean session - start fresh on connect (no persistent session on broker)
	opts.SetCleanSession(true)

	// Reconnection is handled by the supervised backoff loop, not paho.
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)

	// Handlers run synchronously in arrival order. Events from the same
	// device must reach the pipeline in broker order.
	opts.SetOrderMatters(true)

	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	// LWT: the broker publishes offline status if we vanish without a
	// graceful Close.
	topics := Topics{Prefix: cfg.TopicPrefix}
	opts.SetWill(topics.Status(), statusPayload("offline", version), 1, true)

	if cfg.Broker.TLS {
		tlsConfig := &tls.Config{
			MinVersion: tlsMinVersion,
		}
		opts.SetTLSConfig(tlsConfig)
	}

	return opts
}

// statusPayload builds the retained add-on status JSON.
//
// Shape: {"status":"online","timestamp":1700000000,"version":"2.0.0"}
func statusPayload(status, version string) string {
	return fmt.Sprintf(
		`{"status":%q,"timestamp":%d,"version":%q}`,
		status,
		time.Now().Unix(),
		version,
	)
}
