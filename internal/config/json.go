package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Duration wraps time.Duration so JSON config files can express durations as
// strings ("30s", "5m") or as raw nanosecond numbers.
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		*d = Duration(parsed)
		return nil
	default:
		return fmt.Errorf("invalid duration value: %v", v)
	}
}

// jsonConfig mirrors [StructuredConfig] with JSON tags and string-friendly
// durations.
type jsonConfig struct {
	App struct {
		TokenSignKey    string   `json:"token_sign_key"`
		TokenIssuer     string   `json:"token_issuer"`
		TokenDuration   Duration `json:"token_duration"`
		PasswordHashKey string   `json:"password_hash_key"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	Adapter struct {
		BaseURL        string   `json:"base_url"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"adapter,omitempty"`

	Auth struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	} `json:"auth,omitempty"`

	Workers struct {
		SyncInterval Duration `json:"sync_interval"`
	} `json:"workers,omitempty"`
}

// parseJSON reads the config file at path and converts it into a
// [StructuredConfig] suitable for merging.
func parseJSON(path string) (*StructuredConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading json config %s: %w", path, err)
	}

	var jc jsonConfig
	if err = json.Unmarshal(raw, &jc); err != nil {
		return nil, fmt.Errorf("error decoding json config %s: %w", path, err)
	}

	cfg := &StructuredConfig{
		App: App{
			TokenSignKey:    jc.App.TokenSignKey,
			TokenIssuer:     jc.App.TokenIssuer,
			TokenDuration:   time.Duration(jc.App.TokenDuration),
			PasswordHashKey: jc.App.PasswordHashKey,
		},
		Storage: Storage{
			DB: DB{DSN: jc.Storage.DB.DSN},
		},
		Server: Server{
			HTTPAddress:    jc.Server.HTTPAddress,
			RequestTimeout: time.Duration(jc.Server.RequestTimeout),
		},
		Adapter: Adapter{
			BaseURL:        jc.Adapter.BaseURL,
			RequestTimeout: time.Duration(jc.Adapter.RequestTimeout),
		},
		Auth: Auth{
			Login:    jc.Auth.Login,
			Password: jc.Auth.Password,
		},
		Workers: Workers{
			SyncInterval: time.Duration(jc.Workers.SyncInterval),
		},
	}

	return cfg, nil
}
