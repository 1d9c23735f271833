package config

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables read by Load.
const (
	EnvPrefix = "BGX_"
	EnvConfig = "BGX_CONFIG"

	// PORT and HOST are the deployment variables of the hosting platform.
	envPort     = "PORT"
	envHost     = "HOST"
	defaultHost = "0.0.0.0"
	defaultPort = "5001"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if BGX_CONFIG is set
//  3. env (prefix BGX_)
//  4. PORT/HOST, only when BGX_ADDR is unset
func Load(_ context.Context) (*Config, error) {
	cfg := New()
	k := koanf.New(".")

	if path := os.Getenv(EnvConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// BGX_QUEUE_SIZE -> queue_size; underscores are kept to match the koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			// Lists from the file replace the defaults instead of merging into them.
			ZeroFields:       true,
			WeaklyTypedInput: true,
			Result:           cfg,
			TagName:          "koanf",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if _, set := os.LookupEnv(EnvPrefix + "ADDR"); !set {
		applyDeployment(cfg)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDeployment(cfg *Config) {
	port, hasPort := os.LookupEnv(envPort)
	host, hasHost := os.LookupEnv(envHost)
	if !hasPort && !hasHost {
		return
	}
	if port == "" {
		port = defaultPort
	}
	if host == "" {
		host = defaultHost
	}
	cfg.Addr = net.JoinHostPort(host, port)
}
