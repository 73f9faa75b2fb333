package mqtt

import (
	"encoding/json"
	"fmt"
)

// Publish sends payload to topic and waits for the broker acknowledgement
// (QoS 1 and 2) or for the write to complete (QoS 0). Wildcards are
// rejected in publish topics.
//
//	topic := client.Topics().DoorCommand("door-001")
//	err := client.Publish(topic, []byte(`{"action":"open","doorID":"door-001"}`), 1, false)
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if err := checkTopic(topic, false); err != nil {
		return err
	}
	if err := checkQoS(qos); err != nil {
		return err
	}
	if n := len(payload); n > maxPayloadSize {
		return fmt.Errorf("%w: %d byte payload over the %d byte limit", ErrPublishFailed, n, maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	return await(c.paho.Publish(topic, qos, retained, payload), ackTimeout, ErrPublishFailed)
}

// PublishJSON encodes v and publishes it at the configured QoS, not retained.
func (c *Client) PublishJSON(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encoding payload: %w", ErrPublishFailed, err)
	}
	return c.Publish(topic, payload, c.QoS(), false)
}
