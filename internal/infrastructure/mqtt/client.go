package mqtt

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/entrance-cockpit-mock/internal/infrastructure/config"
)

// Logger is satisfied by logging.Logger and *slog.Logger.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// MessageHandler receives one message. Returned errors are logged only.
// Handlers run on paho's goroutines and should not block.
type MessageHandler func(topic string, payload []byte) error

// Client is the broker connection shared by the IoT bridge. It is safe
// for concurrent use.
type Client struct {
	paho   pahomqtt.Client
	cfg    config.MQTTConfig
	topics Topics
	subs   *registry

	connected atomic.Bool
	attempts  atomic.Int32

	mu           sync.RWMutex
	log          Logger
	onConnect    func()
	onDisconnect func(err error)
}

// Connect dials the broker and waits for the first CONNACK.
//
// A retained online status is published on every (re)connect and the
// broker holds an offline will for unclean drops. Subscriptions made
// through the client survive reconnects.
func Connect(cfg config.MQTTConfig) (*Client, error) {
	c := &Client{
		cfg:    cfg,
		topics: NewTopics(cfg.Topics),
		subs:   newRegistry(),
	}

	opts := clientOptions(cfg, c.topics.Status())
	opts.SetOnConnectHandler(func(pahomqtt.Client) { c.connectionUp() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.connectionDown(err) })
	opts.SetReconnectingHandler(func(pahomqtt.Client, *pahomqtt.ClientOptions) { c.reconnecting() })

	c.paho = pahomqtt.NewClient(opts)
	token := c.paho.Connect()
	if !token.WaitTimeout(connectTimeout) {
		// ConnectRetry keeps dialling in the background otherwise.
		c.paho.Disconnect(0)
		return nil, fmt.Errorf("%w: %s did not answer within %v", ErrConnectionFailed, brokerURL(cfg.Broker), connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// The OnConnect handler may still be in flight.
	c.connected.Store(true)
	return c, nil
}

func (c *Client) connectionUp() {
	c.connected.Store(true)
	c.attempts.Store(0)

	if log := c.logger(); log != nil {
		log.Info("MQTT connected", "broker", brokerURL(c.cfg.Broker), "subscriptions", c.subs.len())
	}

	go c.resubscribe()
	c.paho.Publish(c.topics.Status(), c.QoS(), true, statusPayload(statusOnline, c.cfg.Broker.ClientID, ""))

	c.mu.RLock()
	fn := c.onConnect
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

func (c *Client) connectionDown(err error) {
	c.connected.Store(false)

	c.mu.RLock()
	fn := c.onDisconnect
	c.mu.RUnlock()
	if fn != nil {
		fn(err)
	}
}

// reconnecting counts attempts and stops retrying once
// reconnect.max_attempts is reached. Zero means retry forever.
func (c *Client) reconnecting() {
	n := c.attempts.Add(1)
	log := c.logger()
	if log != nil {
		log.Warn("MQTT reconnecting", "attempt", n)
	}

	limit := int32(c.cfg.Reconnect.MaxAttempts) //nolint:gosec // small config value
	if limit > 0 && n >= limit {
		if log != nil {
			log.Error("MQTT reconnect attempts exhausted", "attempts", n)
		}
		go c.paho.Disconnect(0)
	}
}

func (c *Client) resubscribe() {
	for topic, rt := range c.subs.snapshot() {
		err := await(c.paho.Subscribe(topic, rt.qos, c.dispatch(rt.handler)), ackTimeout, ErrSubscribeFailed)
		if err != nil {
			if log := c.logger(); log != nil {
				log.Warn("MQTT resubscribe failed", "topic", topic, "error", err)
			}
		}
	}
}

// Close publishes a retained offline status and disconnects. It is a
// no-op on a client that never connected.
func (c *Client) Close() error {
	if c.paho == nil {
		return nil
	}

	if c.IsConnected() {
		token := c.paho.Publish(c.topics.Status(), c.QoS(), true,
			statusPayload(statusOffline, c.cfg.Broker.ClientID, "shutdown"))
		token.WaitTimeout(ackTimeout)
	}

	c.paho.Disconnect(quiesceMillis)
	c.connected.Store(false)
	return nil
}

// HealthCheck returns ErrNotConnected while the broker link is down.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mqtt health check: %w", err)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected reports the current link state.
func (c *Client) IsConnected() bool {
	return c.connected.Load() && c.paho != nil && c.paho.IsConnected()
}

// SetOnConnect sets a callback run on connect and every reconnect.
func (c *Client) SetOnConnect(fn func()) {
	c.mu.Lock()
	c.onConnect = fn
	c.mu.Unlock()
}

// SetOnDisconnect sets a callback run when the link drops.
func (c *Client) SetOnDisconnect(fn func(err error)) {
	c.mu.Lock()
	c.onDisconnect = fn
	c.mu.Unlock()
}

// SetLogger sets the logger for connection events and handler failures.
func (c *Client) SetLogger(log Logger) {
	c.mu.Lock()
	c.log = log
	c.mu.Unlock()
}

func (c *Client) logger() Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.log
}

// Topics returns the topic builders this client was configured with.
func (c *Client) Topics() Topics {
	return c.topics
}

// QoS returns the configured default QoS.
func (c *Client) QoS() byte {
	return byte(c.cfg.QoS) //nolint:gosec // validated to 0..2 by config
}
