// Package config handles loading and validating the entrance cockpit mock configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables (ENTRANCEMOCK_*)
//   - Validation of required fields
//   - Default value handling
//
// The auto-mode cadence is configured as an ISO-8601 duration:
//
//	mock:
//	  events:
//	    auto: true
//	    interval: "PT3S"
//
// Usage:
//
//	cfg, err := config.LoadOrDefault("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.GetEventInterval())
package config
