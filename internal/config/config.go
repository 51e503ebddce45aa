/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"labeldesigner/internal/domain"
	"labeldesigner/internal/store"
)

// AppConfig is the user-editable configuration persisted as YAML in the user
// scope. Environment variables override it at runtime and are never written
// back. The backend token lives in the OS keyring, not in the file.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Editor        EditorConfig  `yaml:"editor"`
	Backend       BackendConfig `yaml:"backend"`
	Logging       LoggingConfig `yaml:"logging"`
}

type GeneralConfig struct {
	TelemetryOptIn  bool   `yaml:"telemetry_opt_in"`
	DefaultPageSize string `yaml:"default_page_size"`
	// TemplatesDir is where new template projects are created by default.
	TemplatesDir string `yaml:"templates_dir"`
}

type EditorConfig struct {
	Zoom         float64 `yaml:"zoom"`
	PreviewScale float64 `yaml:"preview_scale"`
	AddBaseX     float64 `yaml:"add_base_x"`
	AddBaseY     float64 `yaml:"add_base_y"`
	AddDelta     float64 `yaml:"add_delta"`
	// ShowValues renders resolved data instead of [field] labels in the editor.
	ShowValues bool   `yaml:"show_values"`
	PinFooter  bool   `yaml:"pin_footer"`
	FontsDir   string `yaml:"fonts_dir"`
}

type BackendConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutMs   int    `yaml:"timeout_ms"`
	TLSInsecure bool   `yaml:"tls_insecure"`
	// Listen and DSN configure `labeldesigner serve`.
	Listen string `yaml:"listen"`
	DSN    string `yaml:"dsn"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{DefaultPageSize: domain.DefaultPageSize},
		Editor: EditorConfig{
			Zoom:         0.8,
			PreviewScale: 0.5,
			AddBaseX:     store.DefaultBase.X,
			AddBaseY:     store.DefaultBase.Y,
			AddDelta:     store.DefaultDelta,
			PinFooter:    true,
		},
		Backend: BackendConfig{BaseURL: "http://localhost:8080", TimeoutMs: 15000, Listen: ":8080"},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigDir        = "LD_CONFIG_DIR"
	EnvBackendURL       = "LD_BACKEND_URL"
	EnvBackendTimeoutMs = "LD_BACKEND_TIMEOUT_MS"
	EnvBackendTLSInsec  = "LD_TLS_INSECURE"
	EnvBackendListen    = "LD_LISTEN"
	EnvBackendDSN       = "LD_PG_DSN"
	EnvTelemetryOptIn   = "LD_TELEMETRY_OPT_IN"
	EnvPageSize         = "LD_PAGE_SIZE"
	EnvTemplatesDir     = "LD_TEMPLATES_DIR"
	EnvShowValues       = "LD_SHOW_VALUES"
	// logging
	EnvLogLevel  = "LD_LOG_LEVEL"
	EnvLogFormat = "LD_LOG_FORMAT"
	EnvLogSource = "LD_LOG_SOURCE"
	EnvLogFile   = "LD_LOG_FILE"
)

// Dir returns the per-user configuration directory.
func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvConfigDir)); v != "" {
		return v, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "LabelDesigner")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "LabelDesigner")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "labeldesigner")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "labeldesigner")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the user config file (if present) over the defaults and applies
// environment overrides. The backend token comes from the keyring and is
// returned separately; a missing token is not an error.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, "", fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	}
	applyEnvOverrides(&cfg)
	tok, _ := tokenStore.Get(keyringService, keyringToken)
	return cfg, tok, nil
}

// Save writes the YAML file and stores a non-empty token in the keyring.
func Save(cfg AppConfig, token string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token != "" {
		if err := tokenStore.Set(keyringService, keyringToken, token); err != nil {
			return fmt.Errorf("store token: %w", err)
		}
	}
	return nil
}

// ClearToken removes the backend token from the keyring.
func ClearToken() error { return tokenStore.Delete(keyringService, keyringToken) }

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// booleans are copied as-is so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	if s := strings.TrimSpace(src.General.DefaultPageSize); s != "" {
		dst.General.DefaultPageSize = s
	}
	if s := strings.TrimSpace(src.General.TemplatesDir); s != "" {
		dst.General.TemplatesDir = s
	}

	if src.Editor.Zoom > 0 {
		dst.Editor.Zoom = src.Editor.Zoom
	}
	if src.Editor.PreviewScale > 0 {
		dst.Editor.PreviewScale = src.Editor.PreviewScale
	}
	if src.Editor.AddBaseX != 0 || src.Editor.AddBaseY != 0 {
		dst.Editor.AddBaseX, dst.Editor.AddBaseY = src.Editor.AddBaseX, src.Editor.AddBaseY
	}
	if src.Editor.AddDelta != 0 {
		dst.Editor.AddDelta = src.Editor.AddDelta
	}
	dst.Editor.ShowValues = src.Editor.ShowValues
	dst.Editor.PinFooter = src.Editor.PinFooter
	if s := strings.TrimSpace(src.Editor.FontsDir); s != "" {
		dst.Editor.FontsDir = s
	}

	if src.Backend.BaseURL != "" {
		dst.Backend.BaseURL = src.Backend.BaseURL
	}
	if src.Backend.TimeoutMs != 0 {
		dst.Backend.TimeoutMs = src.Backend.TimeoutMs
	}
	dst.Backend.TLSInsecure = src.Backend.TLSInsecure
	if src.Backend.Listen != "" {
		dst.Backend.Listen = src.Backend.Listen
	}
	if src.Backend.DSN != "" {
		dst.Backend.DSN = src.Backend.DSN
	}

	if s := strings.TrimSpace(src.Logging.Level); s != "" {
		dst.Logging.Level = strings.ToLower(s)
	}
	if s := strings.TrimSpace(src.Logging.Format); s != "" {
		dst.Logging.Format = strings.ToLower(s)
	}
	dst.Logging.Source = src.Logging.Source
	if s := strings.TrimSpace(src.Logging.File); s != "" {
		dst.Logging.File = s
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = parseBool(v)
		}
	}
	str(EnvBackendURL, &cfg.Backend.BaseURL)
	if v := strings.TrimSpace(os.Getenv(EnvBackendTimeoutMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backend.TimeoutMs = n
		}
	}
	boolean(EnvBackendTLSInsec, &cfg.Backend.TLSInsecure)
	str(EnvBackendListen, &cfg.Backend.Listen)
	str(EnvBackendDSN, &cfg.Backend.DSN)
	boolean(EnvTelemetryOptIn, &cfg.General.TelemetryOptIn)
	str(EnvPageSize, &cfg.General.DefaultPageSize)
	str(EnvTemplatesDir, &cfg.General.TemplatesDir)
	boolean(EnvShowValues, &cfg.Editor.ShowValues)

	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	boolean(EnvLogSource, &cfg.Logging.Source)
	str(EnvLogFile, &cfg.Logging.File)
}

var overrideKeys = map[string]string{
	"backend.base_url":          EnvBackendURL,
	"backend.timeout_ms":        EnvBackendTimeoutMs,
	"backend.tls_insecure":      EnvBackendTLSInsec,
	"backend.listen":            EnvBackendListen,
	"backend.dsn":               EnvBackendDSN,
	"general.telemetry_opt_in":  EnvTelemetryOptIn,
	"general.default_page_size": EnvPageSize,
	"general.templates_dir":     EnvTemplatesDir,
	"editor.show_values":        EnvShowValues,
	"logging.level":             EnvLogLevel,
	"logging.format":            EnvLogFormat,
	"logging.source":            EnvLogSource,
	"logging.file":              EnvLogFile,
}

// EnvOverrideFor returns the env var overriding key, if it is set.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := overrideKeys[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}

// Timeout is the backend request timeout.
func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutMs <= 0 {
		return time.Duration(Defaults().Backend.TimeoutMs) * time.Millisecond
	}
	return time.Duration(b.TimeoutMs) * time.Millisecond
}

// StoreOptions maps the add offsets onto element store options.
func (e EditorConfig) StoreOptions() store.Options {
	o := store.DefaultOptions()
	if e.AddBaseX != 0 || e.AddBaseY != 0 {
		o.Base = domain.Point{X: e.AddBaseX, Y: e.AddBaseY}
	}
	if e.AddDelta > 0 {
		o.Delta = e.AddDelta
	}
	return o
}

// CatalogDir is where the template catalog lives.
func CatalogDir() (string, error) { return Dir() }
