package mqtt

import (
	"fmt"
	"maps"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

type route struct {
	qos     byte
	handler MessageHandler
}

// registry remembers subscriptions so they can be replayed on reconnect.
type registry struct {
	mu     sync.RWMutex
	routes map[string]route
}

func newRegistry() *registry {
	return &registry{routes: make(map[string]route)}
}

func (r *registry) put(topic string, rt route) {
	r.mu.Lock()
	r.routes[topic] = rt
	r.mu.Unlock()
}

func (r *registry) drop(topic string) {
	r.mu.Lock()
	delete(r.routes, topic)
	r.mu.Unlock()
}

func (r *registry) has(topic string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.routes[topic]
	return ok
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.routes)
}

func (r *registry) snapshot() map[string]route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.routes)
}

// Subscribe registers handler for a topic filter, which may use the +
// and # wildcards. The subscription is replayed after a reconnect.
//
//	err := client.Subscribe(client.Topics().AllBadgeEvents(), 1,
//	    func(topic string, payload []byte) error {
//	        return bridge.ingest(topic, payload)
//	    })
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if err := checkTopic(topic, true); err != nil {
		return err
	}
	if err := checkQoS(qos); err != nil {
		return err
	}
	if handler == nil {
		return fmt.Errorf("%w: nil handler for %q", ErrSubscribeFailed, topic)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.subs.put(topic, route{qos: qos, handler: handler})
	if err := await(c.paho.Subscribe(topic, qos, c.dispatch(handler)), ackTimeout, ErrSubscribeFailed); err != nil {
		c.subs.drop(topic)
		return err
	}
	return nil
}

// Unsubscribe removes the subscription for the exact filter. Messages
// already in flight may still reach the handler.
func (c *Client) Unsubscribe(topic string) error {
	if err := checkTopic(topic, true); err != nil {
		return err
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.subs.drop(topic)
	return await(c.paho.Unsubscribe(topic), ackTimeout, ErrSubscribeFailed)
}

// SubscriptionCount returns the number of remembered subscriptions.
func (c *Client) SubscriptionCount() int {
	return c.subs.len()
}

// HasSubscription reports whether the exact filter is remembered.
func (c *Client) HasSubscription(topic string) bool {
	return c.subs.has(topic)
}

// dispatch adapts handler to paho, recovering panics and logging errors.
func (c *Client) dispatch(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				if log := c.logger(); log != nil {
					log.Error("MQTT handler panicked", "topic", msg.Topic(), "panic", r)
				}
			}
		}()

		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			if log := c.logger(); log != nil {
				log.Warn("MQTT handler failed", "topic", msg.Topic(), "error", err)
			}
		}
	}
}
