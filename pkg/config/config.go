/*
Package config manages TOML config for placeserve services.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/placeserve/placeserve/internal/utils"
)

// Config holds the entire config structure
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Data    DataConfig    `toml:"data"`
	Match   MatchConfig   `toml:"match"`
	Geo     GeoConfig     `toml:"geo"`
	Session SessionConfig `toml:"session"`
	Rate    RateConfig    `toml:"rate"`
}

// ServerConfig has HTTP server related options.
type ServerConfig struct {
	Addr        string `toml:"addr"`
	MaxResults  int    `toml:"max_results"`
	MaxQueryLen int    `toml:"max_query_len"`
}

// DataConfig holds place dataset options.
type DataConfig struct {
	Path          string `toml:"path"`
	MinPopulation int64  `toml:"min_population"`
}

// MatchConfig holds fuzzy matching options.
type MatchConfig struct {
	MinSimilarity float64 `toml:"min_similarity"`
}

// GeoConfig holds proximity scoring options.
type GeoConfig struct {
	DecayKm float64 `toml:"decay_km"`
	Floor   float64 `toml:"floor"`
}

// SessionConfig holds session cache options.
type SessionConfig struct {
	TTLSeconds   int `toml:"ttl_seconds"`
	SweepSeconds int `toml:"sweep_seconds"`
}

// RateConfig holds rate limiter options.
type RateConfig struct {
	Budget        int `toml:"budget"`
	WindowSeconds int `toml:"window_seconds"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
// 4. builtin defaults
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		execDir, execErr := utils.GetExecutableDir()
		if execErr != nil {
			return "", execErr
		}
		return execDir, nil
	}
	primaryPath := filepath.Join(homeDir, ".config", "placeserve")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	// Not conventional, fallback from ~/.config if not writable
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "placeserve")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/placeserve/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	var config *Config
	var err error

	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err = LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err = InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":2345",
			MaxResults:  5,
			MaxQueryLen: 60,
		},
		Data: DataConfig{
			Path:          "data/cities_canada-usa.tsv",
			MinPopulation: 5000,
		},
		Match: MatchConfig{
			MinSimilarity: 0.4,
		},
		Geo: GeoConfig{
			DecayKm: 1000,
			Floor:   0.3,
		},
		Session: SessionConfig{
			TTLSeconds:   600,
			SweepSeconds: 60,
		},
		Rate: RateConfig{
			Budget:        5,
			WindowSeconds: 1,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse attempts to parse a TOML file section by section
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if serverSection, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(serverSection, &config.Server)
	}
	if dataSection, ok := utils.ExtractSection(tempConfig, "data"); ok {
		extractDataConfig(dataSection, &config.Data)
	}
	if matchSection, ok := utils.ExtractSection(tempConfig, "match"); ok {
		extractMatchConfig(matchSection, &config.Match)
	}
	if geoSection, ok := utils.ExtractSection(tempConfig, "geo"); ok {
		extractGeoConfig(geoSection, &config.Geo)
	}
	if sessionSection, ok := utils.ExtractSection(tempConfig, "session"); ok {
		extractSessionConfig(sessionSection, &config.Session)
	}
	if rateSection, ok := utils.ExtractSection(tempConfig, "rate"); ok {
		extractRateConfig(rateSection, &config.Rate)
	}
	return config, nil
}

// extractServerConfig extracts server configuration from a map
func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractString(data, "addr"); ok {
		server.Addr = val
	}
	if val, ok := utils.ExtractInt64(data, "max_results"); ok {
		server.MaxResults = val
	}
	if val, ok := utils.ExtractInt64(data, "max_query_len"); ok {
		server.MaxQueryLen = val
	}
}

// extractDataConfig extracts dataset configuration from a map
func extractDataConfig(data map[string]any, dataCfg *DataConfig) {
	if val, ok := utils.ExtractString(data, "path"); ok {
		dataCfg.Path = val
	}
	if val, ok := utils.ExtractInt64(data, "min_population"); ok {
		dataCfg.MinPopulation = int64(val)
	}
}

// extractMatchConfig extracts matcher configuration from a map
func extractMatchConfig(data map[string]any, match *MatchConfig) {
	if val, ok := utils.ExtractFloat64(data, "min_similarity"); ok {
		match.MinSimilarity = val
	}
}

// extractGeoConfig extracts proximity scoring configuration from a map
func extractGeoConfig(data map[string]any, geo *GeoConfig) {
	if val, ok := utils.ExtractFloat64(data, "decay_km"); ok {
		geo.DecayKm = val
	}
	if val, ok := utils.ExtractFloat64(data, "floor"); ok {
		geo.Floor = val
	}
}

// extractSessionConfig extracts session cache config from a map
func extractSessionConfig(data map[string]any, session *SessionConfig) {
	if val, ok := utils.ExtractInt64(data, "ttl_seconds"); ok {
		session.TTLSeconds = val
	}
	if val, ok := utils.ExtractInt64(data, "sweep_seconds"); ok {
		session.SweepSeconds = val
	}
}

// extractRateConfig extracts rate limiter config from a map
func extractRateConfig(data map[string]any, rate *RateConfig) {
	if val, ok := utils.ExtractInt64(data, "budget"); ok {
		rate.Budget = val
	}
	if val, ok := utils.ExtractInt64(data, "window_seconds"); ok {
		rate.WindowSeconds = val
	}
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
