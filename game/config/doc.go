// Package config provides configuration management for the puzzle server.
//
// The config package handles:
//   - Loading game configurations from JSON files
//   - Configuration validation and verification
//   - Default configuration management
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Game configurations are stored as JSON files in the configs directory.
// Each configuration defines:
//   - The board in wire format ("rows|cols|e0|e1|..." with decimal element codes)
//   - The hash seed for reproducible state hashing
//   - Whether the first bare key is collected automatically at reset
//
// Usage:
//
//	manager := config.NewManager("configs")
//
//	// Load specific configuration
//	gameConfig, err := manager.LoadConfig("easy")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Get default configuration
//	defaultConfig := manager.GetDefault()
//
//	// List available configurations
//	configs, err := manager.ListConfigs()
//
// Validation:
//
// Configurations are shallow-checked on load (name, board sections, board
// dimensions within bounds); the full board parse happens when an engine is
// built from the configuration.
package config
