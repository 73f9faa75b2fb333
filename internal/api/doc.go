// Package api provides the HTTP REST API and the WebSocket push channel of
// the entrance cockpit mock.
//
// REST endpoints live under /api/mock and manage mock devices and users,
// list doors, expose access logs and inject events. The push channel
// (default /events) streams every monitoring event as a JSON text frame.
//
// The server follows the same lifecycle pattern as the infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api
