// Package generator produces synthetic monitoring events and publishes
// them through the monitoring hub.
//
// Events reach the hub either on demand (Publish, PublishRandom, called
// from REST handlers and the IoT bridge) or from the auto-mode worker,
// which calls PublishRandom at a fixed rate while enabled.
//
// After a successful broadcast every registered Recorder (event journal,
// telemetry, MQTT relay) receives the event. Recorder failures are logged
// and never fail the publish.
//
// # Auto Mode
//
//	gen, _ := generator.New(generator.Config{AutoMode: true, Interval: 3 * time.Second}, hub, dir)
//	gen.StartAuto() // first event after one interval
//	defer gen.Stop()
//
// StartAuto is idempotent and Stop is safe to call at any time.
package generator
