// Package mqtt connects the entrance mock to the site's MQTT broker.
//
// Badge readers publish presentations under iot/badgeuse/{reader}/events
// and doors take commands on iot/porte/{door}/commands. The mock mirrors
// every monitoring event under cockpit/monitoring/events/{type} and keeps
// a retained online/offline status on cockpit/monitoring/events/status.
// Topic roots are configurable; see Topics.
//
// The client reconnects with backoff, giving up after reconnect.max_attempts
// when that is set, and replays its subscriptions once the link is back.
// Publish topics may not carry wildcards. Handler panics are recovered and
// logged through SetLogger.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(client.Topics().AllBadgeEvents(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("badge presentation on %s: %s", topic, payload)
//	        return nil
//	    })
package mqtt
