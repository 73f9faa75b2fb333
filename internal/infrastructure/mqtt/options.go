package mqtt

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/entrance-cockpit-mock/internal/infrastructure/config"
)

const (
	connectTimeout = 10 * time.Second
	ackTimeout     = 5 * time.Second
	keepAlive      = 60 * time.Second

	// quiesceMillis is how long Disconnect lets in-flight work drain.
	quiesceMillis = 500

	// maxPayloadSize caps a single message at 1MB.
	maxPayloadSize = 1 << 20
)

// Status values carried on the retained status topic.
const (
	statusOnline  = "online"
	statusOffline = "offline"
)

// statusMessage is the retained payload on Topics.Status.
type statusMessage struct {
	Status    string    `json:"status"`
	ClientID  string    `json:"client_id"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func statusPayload(status, clientID, reason string) []byte {
	b, err := json.Marshal(statusMessage{
		Status:    status,
		ClientID:  clientID,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		// Only strings and a time; cannot fail.
		panic(err)
	}
	return b
}

func brokerURL(b config.MQTTBrokerConfig) string {
	scheme := "tcp"
	if b.TLS {
		scheme = "ssl"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, b.Host, b.Port)
}

// clientOptions maps the mqtt config section onto paho options. The broker
// publishes a retained offline status on statusTopic if the link drops
// without a clean disconnect.
func clientOptions(cfg config.MQTTConfig, statusTopic string) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions().
		AddBroker(brokerURL(cfg.Broker)).
		SetClientID(cfg.Broker.ClientID).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(seconds(cfg.Reconnect.InitialDelay)).
		SetMaxReconnectInterval(seconds(cfg.Reconnect.MaxDelay)).
		SetConnectTimeout(connectTimeout).
		SetKeepAlive(keepAlive).
		SetWill(statusTopic, string(statusPayload(statusOffline, cfg.Broker.ClientID, "connection_lost")), 1, true)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username).SetPassword(cfg.Auth.Password)
	}
	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	return opts
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func checkQoS(qos byte) error {
	if qos > 2 {
		return fmt.Errorf("%w: got %d", ErrInvalidQoS, qos)
	}
	return nil
}

// checkTopic validates a publish topic, or a subscription filter when
// filter is true. Filters may use + as a whole level and # as the last level.
func checkTopic(topic string, filter bool) error {
	if topic == "" {
		return fmt.Errorf("%w: empty", ErrInvalidTopic)
	}
	if !filter {
		if strings.ContainsAny(topic, "+#") {
			return fmt.Errorf("%w: wildcard in publish topic %q", ErrInvalidTopic, topic)
		}
		return nil
	}
	levels := strings.Split(topic, "/")
	for i, level := range levels {
		switch {
		case level == "#" && i != len(levels)-1:
			return fmt.Errorf("%w: # must be the last level in %q", ErrInvalidTopic, topic)
		case level != "+" && level != "#" && strings.ContainsAny(level, "+#"):
			return fmt.Errorf("%w: wildcard inside level %q", ErrInvalidTopic, level)
		}
	}
	return nil
}

// await blocks on t and wraps a timeout or broker error in sentinel.
func await(t pahomqtt.Token, timeout time.Duration, sentinel error) error {
	if !t.WaitTimeout(timeout) {
		return fmt.Errorf("%w: no acknowledgement within %v", sentinel, timeout)
	}
	if err := t.Error(); err != nil {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return nil
}
