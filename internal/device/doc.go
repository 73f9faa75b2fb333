// Package device keeps the in-memory registry of mock devices.
//
// The registry starts with one builtin "porte" device per directory door
// and accepts additional devices over the REST API. Nothing is persisted;
// a restart returns the registry to its builtin state.
//
// Device ids are either supplied by the caller or generated as
// "<type>-<NNN>" from a sequence starting at 100:
//
//	reg := device.NewRegistry([]string{"door-001"})
//	rec, _ := reg.Register(device.RegisterRequest{Type: "badgeuse"})
//	// rec.ID == "badgeuse-100"
//
// All Registry methods are safe for concurrent use.
package device
