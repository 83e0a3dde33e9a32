// Package config provides the configuration for editrace.
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Command Line Flags      │  ← Highest priority (applied by the CLI)
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← EDITRACE_SECTION_SETTING
//	├─────────────────────────────┤
//	│  2. Config File             │  ← -config editrace.toml / .yaml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Settings are addressed by dot-separated paths such as
// "validate.strict_time". The file and environment layers are merged as
// nested maps and decoded into a typed Config, which is then validated.
//
// # Basic Usage
//
//	cfg, err := config.Load("editrace.toml")
//	if err != nil {
//	    return err
//	}
//	workers := cfg.Batch.Workers
package config
