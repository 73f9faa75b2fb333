// Package iot bridges the entrance mock to physical (or simulated) badge
// readers and doors over MQTT.
//
// Inbound, badge presentations published by readers on
// iot/badgeuse/{reader}/events become badge_event monitoring events.
// Outbound, every published monitoring event is mirrored under
// cockpit/monitoring/events/{type}, and manual overrides additionally
// send an open command to iot/porte/{door}/commands.
//
// The bridge is optional: without a broker the mock runs purely on its
// own generator.
package iot
