package mqtt

import (
	"context"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/babycare-core/internal/infrastructure/config"
)

// Client wraps paho.mqtt.golang with connection supervision for the
// baby care tracker.
//
// It provides message publishing, subscription handling with restore on
// reconnect, retained status publishing, and reconnection under
// exponential backoff (floor 5s, ceiling 300s, reset on success).
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	client  pahomqtt.Client
	options *pahomqtt.ClientOptions
	cfg     config.MQTTConfig
	version string
	topics  Topics
	backoff *backoff

	// subscriptions tracks desired subscriptions. They are applied when
	// connected and re-applied after every reconnect.
	subscriptions map[string]subscription
	subMu         sync.RWMutex

	// connected tracks current connection state.
	connected bool
	connMu    sync.RWMutex

	// supervisorCtx governs the reconnect loop. Close cancels it before
	// publishing offline status, so a reconnect cannot race shutdown.
	supervisorCtx    context.Context
	supervisorCancel context.CancelFunc
	supervisorWG     sync.WaitGroup

	// Callbacks for connection events (optional).
	onConnect    func()
	onDisconnect func(err error)
	callbackMu   sync.RWMutex

	// logger for connection and handler logging (optional).
	logger   Logger
	loggerMu sync.RWMutex
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// subscription holds subscription details for re-subscription on reconnect.
type subscription struct {
	topic   string
	qos     byte
	handler MessageHandler
}

// MessageHandler is the callback signature for received messages.
//
// Handlers run synchronously in broker arrival order (SetOrderMatters),
// which the ingestion pipeline relies on for per-device event ordering.
// They should not block for extended periods.
//
// Parameters:
//   - topic: The topic the message was received on (wildcards expanded)
//   - payload: The raw message payload (typically JSON)
//
// Returns:
//   - error: Logged but does not affect message acknowledgment
type MessageHandler func(topic string, payload []byte) error

// Connect creates a client and starts connection supervision.
//
// The initial connection attempt happens synchronously; if it fails the
// client schedules a retry under backoff and returns anyway - broker
// unavailability delays message delivery but is never fatal. On every
// successful (re)connect the client resets the backoff to its floor,
// restores tracked subscriptions, and publishes retained online status.
//
// Parameters:
//   - cfg: MQTT configuration from config.yaml
//   - version: Application version included in the status payload
//
// Returns:
//   - *Client: Client ready for use (possibly still connecting)
func Connect(cfg config.MQTTConfig, version string) *Client {
	opts := buildClientOptions(cfg, version)

	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		cfg:              cfg,
		options:          opts,
		version:          version,
		topics:           Topics{Prefix: cfg.TopicPrefix},
		backoff:          newBackoff(cfg.ReconnectInitialDelay(), cfg.ReconnectMaxDelay()),
		subscriptions:    make(map[string]subscription),
		supervisorCtx:    ctx,
		supervisorCancel: cancel,
	}

	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.handleConnect()
	})

	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.handleConnectionLost(err)
	})

	c.client = pahomqtt.NewClient(opts)

	if err := c.attemptConnect(); err != nil {
		if logger := c.getLogger(); logger != nil {
			logger.Warn("initial MQTT connect failed, retrying under backoff", "error", err)
		}
		c.scheduleReconnect()
	}

	return c
}

// attemptConnect performs a single connection attempt.
func (c *Client) attemptConnect() error {
	token := c.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return ErrConnectionFailed
	}
	if err := token.Error(); err != nil {
		return err
	}

	// The OnConnectHandler runs asynchronously; set connected here too so
	// IsConnected() is accurate immediately after a successful attempt.
	c.connMu.Lock()
	c.connected = true
	c.connMu.Unlock()

	return nil
}

// scheduleReconnect arms the supervised reconnect timer with the next
// backoff delay. The timer is cancelled by Close.
func (c *Client) scheduleReconnect() {
	delay := c.backoff.Next()

	if logger := c.getLogger(); logger != nil {
		logger.Info("scheduling MQTT reconnect", "delay", delay.String())
	}

	c.supervisorWG.Add(1)
	go func() {
		defer c.supervisorWG.Done()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-c.supervisorCtx.Done():
			return
		case <-timer.C:
		}

		if err := c.attemptConnect(); err != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Warn("MQTT reconnect failed", "error", err)
			}
			c.scheduleReconnect()
		}
	}()
}

// handleConnect is called by paho when a connection is established.
func (c *Client) handleConnect() {
	c.connMu.Lock()
	c.connected = true
	c.connMu.Unlock()

	// Successful connect resets the backoff to its floor.
	c.backoff.Reset()

	c.restoreSubscriptions()
	c.publishStatus("online")

	c.callbackMu.RLock()
	callback := c.onConnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback()
	}
}

// handleConnectionLost is called by paho when the connection drops
// outside of a deliberate Close.
func (c *Client) handleConnectionLost(err error) {
	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	c.callbackMu.RLock()
	callback := c.onDisconnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback(err)
	}

	select {
	case <-c.supervisorCtx.Done():
		// Shutting down; no reconnect.
		return
	default:
	}

	c.scheduleReconnect()
}

// restoreSubscriptions applies all tracked subscriptions to the broker.
func (c *Client) restoreSubscriptions() {
	c.subMu.RLock()
	defer c.subMu.RUnlock()

	for _, sub := range c.subscriptions {
		// Errors here only delay delivery until the next reconnect.
		c.client.Subscribe(sub.topic, sub.qos, c.wrapHandler(sub.handler))
	}
}

// publishStatus publishes the retained add-on status.
func (c *Client) publishStatus(status string) {
	token := c.client.Publish(c.topics.Status(), byte(c.cfg.QoS), true, statusPayload(status, c.version))
	token.WaitTimeout(defaultPublishTimeout)
}

// Close gracefully shuts the client down.
//
// Order matters: the reconnect supervisor is cancelled first so a
// pending retry cannot resurrect the connection mid-shutdown, then the
// retained offline status is published, then the network connection is
// closed.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	c.supervisorCancel()
	c.supervisorWG.Wait()

	if c.IsConnected() {
		c.publishStatus("offline")
	}

	c.client.Disconnect(defaultDisconnectQuiesce)

	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	return nil
}

// HealthCheck verifies the MQTT connection is alive.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (c *Client) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	return nil
}

// IsConnected returns the current connection state.
func (c *Client) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected && c.client.IsConnected()
}

// Topics returns the topic builder configured with the client's prefix.
func (c *Client) Topics() Topics {
	return c.topics
}

// SetOnConnect sets a callback invoked on initial connect and every reconnect.
func (c *Client) SetOnConnect(callback func()) {
	c.callbackMu.Lock()
	c.onConnect = callback
	c.callbackMu.Unlock()
}

// SetOnDisconnect sets a callback invoked when the connection is lost.
// The error parameter describes why the connection was lost.
func (c *Client) SetOnDisconnect(callback func(err error)) {
	c.callbackMu.Lock()
	c.onDisconnect = callback
	c.callbackMu.Unlock()
}

// SetLogger sets a logger for connection and handler logging.
// If not set, handler errors are silently ignored.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

// getLogger returns the current logger (may be nil).
func (c *Client) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}

// wrapHandler wraps a MessageHandler with panic recovery and optional logging.
func (c *Client) wrapHandler(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				if logger := c.getLogger(); logger != nil {
					logger.Error("MQTT handler panic recovered",
						"topic", msg.Topic(),
						"panic", r,
					)
				}
			}
		}()

		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Warn("MQTT handler returned error",
					"topic", msg.Topic(),
					"error", err,
				)
			}
		}
	}
}
