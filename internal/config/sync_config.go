package config

import (
	"encoding/json"
	"log"
	"os"
)

// SyncConfig holds synchronization configuration.
type SyncConfig struct {
	// ============ SCHEDULING ============
	AutoSyncEnabled  bool `json:"auto_sync_enabled"`
	AutoSyncInterval int  `json:"auto_sync_interval"` // seconds
	SyncOnStartup    bool `json:"sync_on_startup"`

	// ============ EXECUTION ============
	ParallelSync bool `json:"parallel_sync"`
	SyncTimeout  int  `json:"sync_timeout"` // seconds, per run

	// ============ PULL WINDOW ============
	FromDate string `json:"from_date"` // yyyy-MM-dd, empty = full pulls

	// ============ CONFLICTS ============
	ConflictResolution string `json:"conflict_resolution"` // server_wins, client_wins, last_write_wins, manual

	// ============ DOCTYPES ============
	Doctypes map[string]DoctypeSyncConfig `json:"doctypes"`
}

// DoctypeSyncConfig holds per-doctype toggles.
type DoctypeSyncConfig struct {
	Enabled bool `json:"enabled"`
}

// Enabled reports whether a doctype takes part in sync runs. Doctypes not
// mentioned in the config are enabled.
func (c *SyncConfig) Enabled(doctype string) bool {
	if c.Doctypes == nil {
		return true
	}
	dc, ok := c.Doctypes[doctype]
	if !ok {
		return true
	}
	return dc.Enabled
}

// LoadSyncConfig loads sync configuration from SYNC_CONFIG_PATH or falls
// back to defaults.
func LoadSyncConfig() *SyncConfig {
	if configPath := os.Getenv("SYNC_CONFIG_PATH"); configPath != "" {
		if cfg, err := loadSyncConfigFromFile(configPath); err == nil {
			log.Printf("📋 Sync config loaded from %s", configPath)
			return cfg
		} else {
			log.Printf("⚠️ Could not load sync config from %s: %v, using defaults", configPath, err)
		}
	}
	return getDefaultSyncConfig()
}

func loadSyncConfigFromFile(path string) (*SyncConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg SyncConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func getDefaultSyncConfig() *SyncConfig {
	return &SyncConfig{
		AutoSyncEnabled:    true,
		AutoSyncInterval:   300,
		SyncOnStartup:      true,
		ParallelSync:       true,
		SyncTimeout:        600,
		ConflictResolution: "manual",
	}
}
