package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/microblog/internal/flagx"
)

// duration accepts "3s"-style strings or integer nanoseconds.
type duration time.Duration

func (d *duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case float64:
		*d = duration(time.Duration(v))
	case string:
		p, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*d = duration(p)
	default:
		return fmt.Errorf("invalid duration %s", b)
	}
	return nil
}

// jsonConfig is used only for unmarshalling. Absent keys leave the current
// values alone.
type jsonConfig struct {
	ServerURL           *string   `json:"server_url"`
	OnlineCheckInterval *duration `json:"online_check_interval"`
	RequestTimeout      *duration `json:"request_timeout"`
	DataDir             *string   `json:"data_dir"`
	TokenStore          *string   `json:"token_store"`
	LogLevel            *string   `json:"log_level"`
	LogFormat           *string   `json:"log_format"`
	WrapWidth           *int      `json:"wrap_width"`
}

// parseJSON overlays cfg with the file named by -c/-config, if any.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.JSONConfigFlags(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}

	set(&cfg.ServerURL, jc.ServerURL)
	set(&cfg.DataDir, jc.DataDir)
	set(&cfg.TokenStore, jc.TokenStore)
	set(&cfg.LogLevel, jc.LogLevel)
	set(&cfg.LogFormat, jc.LogFormat)
	set(&cfg.WrapWidth, jc.WrapWidth)
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = time.Duration(*jc.OnlineCheckInterval)
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = time.Duration(*jc.RequestTimeout)
	}
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
