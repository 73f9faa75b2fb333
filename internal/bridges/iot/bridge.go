package iot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/entrance-cockpit-mock/internal/infrastructure/config"
	"github.com/nerrad567/entrance-cockpit-mock/internal/infrastructure/mqtt"
	"github.com/nerrad567/entrance-cockpit-mock/internal/monitoring"
)

// ingestTimeout bounds publishing one inbound badge event.
const ingestTimeout = 5 * time.Second

// MQTTClient is the subset of *mqtt.Client the bridge uses.
type MQTTClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
	IsConnected() bool
}

// Publisher pushes events to monitoring observers. *generator.Generator
// satisfies it.
type Publisher interface {
	Publish(ctx context.Context, ev monitoring.Event) error
}

// DoorPicker supplies a door for readers that do not name one.
type DoorPicker interface {
	RandomDoorID() string
}

// Logger is satisfied by logging.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// BridgeOptions holds what a bridge needs.
type BridgeOptions struct {
	// MQTTClient is the broker connection. Required.
	MQTTClient MQTTClient

	// Publisher receives inbound badge events. Required.
	Publisher Publisher

	// Topics defaults to mqtt.NewTopics with default roots.
	Topics mqtt.Topics

	// QoS for outbound messages and the badge subscription.
	QoS byte

	// Doors fills in a door for badge messages without doorID. Optional.
	Doors DoorPicker

	// Logger is optional.
	Logger Logger
}

// Bridge translates between the broker and the monitoring pipeline.
type Bridge struct {
	mqtt      MQTTClient
	publisher Publisher
	topics    mqtt.Topics
	qos       byte
	doors     DoorPicker
	logger    Logger
	now       func() time.Time

	mu         sync.Mutex
	subscribed string
	stopped    bool
	ingested   int
	dropped    int
	mirrored   int
}

// NewBridge creates a bridge. Call Start to subscribe to badge readers.
func NewBridge(opts BridgeOptions) (*Bridge, error) {
	if opts.MQTTClient == nil {
		return nil, errors.New("iot: MQTT client is required")
	}
	if opts.Publisher == nil {
		return nil, errors.New("iot: publisher is required")
	}

	topics := opts.Topics
	if topics == (mqtt.Topics{}) {
		topics = mqtt.NewTopics(config.MQTTTopicsConfig{})
	}

	b := &Bridge{
		mqtt:      opts.MQTTClient,
		publisher: opts.Publisher,
		topics:    topics,
		qos:       opts.QoS,
		doors:     opts.Doors,
		logger:    opts.Logger,
		now:       time.Now,
	}
	if b.logger == nil {
		b.logger = noopLogger{}
	}
	return b, nil
}

// Start subscribes to every reader's events topic.
func (b *Bridge) Start(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stopped {
		return errors.New("iot: bridge stopped")
	}
	if b.subscribed != "" {
		return nil
	}

	topic := b.topics.AllBadgeEvents()
	if err := b.mqtt.Subscribe(topic, b.qos, b.handleBadgeMessage); err != nil {
		return fmt.Errorf("subscribe to badge events: %w", err)
	}
	b.subscribed = topic

	b.logger.Info("iot bridge started", "topic", topic)
	return nil
}

// Stop unsubscribes. Safe to call more than once.
func (b *Bridge) Stop() {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	b.stopped = true
	topic := b.subscribed
	b.subscribed = ""
	b.mu.Unlock()

	// Unsubscribe without the lock: in-flight handlers take it to count.
	if topic != "" && b.mqtt.IsConnected() {
		if err := b.mqtt.Unsubscribe(topic); err != nil {
			b.logger.Warn("iot bridge unsubscribe failed", "topic", topic, "error", err)
		}
	}

	stats := b.Stats()
	b.logger.Info("iot bridge stopped",
		"ingested", stats.Ingested,
		"dropped", stats.Dropped,
		"mirrored", stats.Mirrored)
}

// handleBadgeMessage turns a reader payload into a badge_event. Malformed
// payloads are logged and dropped, never returned to the client.
func (b *Bridge) handleBadgeMessage(topic string, payload []byte) error {
	msg, err := parseBadgeMessage(payload)
	if err != nil {
		b.count(&b.dropped)
		b.logger.Warn("dropping badge message", "topic", topic, "error", err)
		return nil
	}

	deviceID := msg.DeviceID
	if deviceID == "" {
		deviceID = b.topics.ReaderIDFromTopic(topic)
	}
	doorID := msg.Data.DoorID
	if doorID == "" && b.doors != nil {
		doorID = b.doors.RandomDoorID()
	}

	ev := monitoring.NewBadgeEvent(deviceID, msg.Data.Badge(), doorID, msg.Data.Granted())

	ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
	defer cancel()

	if err := b.publisher.Publish(ctx, ev); err != nil {
		b.count(&b.dropped)
		return fmt.Errorf("publishing badge event from %s: %w", deviceID, err)
	}

	b.count(&b.ingested)
	b.logger.Debug("badge event ingested", "device_id", deviceID, "badge_id", msg.Data.Badge())
	return nil
}

// RecordEvent mirrors ev to the broker. Manual overrides also send an
// open command to the door.
func (b *Bridge) RecordEvent(_ context.Context, ev monitoring.Event) error {
	if !b.mqtt.IsConnected() {
		return mqtt.ErrNotConnected
	}

	payload, err := monitoring.Marshal(ev)
	if err != nil {
		return err
	}
	if err := b.mqtt.Publish(b.topics.MonitoringEvent(ev.Type), payload, b.qos, false); err != nil {
		return fmt.Errorf("mirroring event %s: %w", ev.ID, err)
	}
	b.count(&b.mirrored)

	if ev.Type != monitoring.TypeManualOverride {
		return nil
	}

	doorID := ev.StringField(monitoring.KeyDoorID)
	if doorID == "" {
		return nil
	}
	return b.SendDoorCommand(newOpenCommand(doorID, b.now()))
}

// SendDoorCommand publishes cmd to the door's command topic.
func (b *Bridge) SendDoorCommand(cmd DoorCommand) error {
	switch cmd.Action {
	case ActionOpen, ActionClose, ActionToggle:
	default:
		return fmt.Errorf("iot: unknown door action %q", cmd.Action)
	}

	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("encoding door command: %w", err)
	}
	topic := b.topics.DoorCommand(cmd.DoorID)
	if err := b.mqtt.Publish(topic, payload, b.qos, false); err != nil {
		return fmt.Errorf("sending %s to %s: %w", cmd.Action, cmd.DoorID, err)
	}

	b.logger.Info("door command sent", "door_id", cmd.DoorID, "action", cmd.Action)
	return nil
}

// Stats is a snapshot of bridge counters.
type Stats struct {
	Ingested int `json:"ingested"`
	Dropped  int `json:"dropped"`
	Mirrored int `json:"mirrored"`
}

// Stats returns the counters since start.
func (b *Bridge) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{Ingested: b.ingested, Dropped: b.dropped, Mirrored: b.mirrored}
}

func (b *Bridge) count(n *int) {
	b.mu.Lock()
	*n++
	b.mu.Unlock()
}
