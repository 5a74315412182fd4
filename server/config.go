// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package server

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/tochemey/linda/internal/tcp"
	"github.com/tochemey/linda/internal/validation"
	"github.com/tochemey/linda/log"
)

// EnvPrefix prefixes every configuration variable
const EnvPrefix = "LINDA_"

// Config defines the server configuration, read from LINDA_ prefixed
// environment variables
type Config struct {
	// WebsocketAddress is where the websocket endpoint listens. Empty
	// disables it.
	WebsocketAddress string `env:"WS_ADDRESS" envDefault:":8080"`
	// TCPAddress is where the raw TCP endpoint listens. Empty disables it.
	TCPAddress string `env:"TCP_ADDRESS"`
	// Compression of TCP connections: none, zstd or brotli
	Compression    string `env:"TCP_COMPRESSION" envDefault:"none"`
	MaxConnections int    `env:"MAX_CONNECTIONS" envDefault:"1024"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	// AuthToken is the shared secret clients authenticate with. Empty
	// admits every connection without authentication.
	AuthToken string `env:"AUTH_TOKEN"`
	// TrustedActors bypass world membership on every connection
	TrustedActors []string      `env:"TRUSTED_ACTORS" envSeparator:","`
	HubID         string        `env:"HUB_ID" envDefault:"hydra"`
	ClockInterval time.Duration `env:"CLOCK_INTERVAL" envDefault:"1s"`
	// TelegramsPath is the bbolt file of the telegram store. Empty
	// disables telegrams.
	TelegramsPath string `env:"TELEGRAMS_PATH"`
	// NATSURL enables the bridge to other hubs
	NATSURL              string        `env:"NATS_URL"`
	NATSPublishSubject   string        `env:"NATS_PUBLISH_SUBJECT" envDefault:"linda.bridge.out"`
	NATSSubscribeSubject string        `env:"NATS_SUBSCRIBE_SUBJECT" envDefault:"linda.bridge.in"`
	NATSTypes            []string      `env:"NATS_TYPES" envSeparator:","`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
	Metrics              bool          `env:"METRICS" envDefault:"false"`
}

// LoadConfig reads the configuration from the environment. envFiles are
// loaded first when they exist, without overriding variables already set.
func LoadConfig(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	config := new(Config)
	opts := env.Options{Prefix: EnvPrefix, UseFieldNameByDefault: false}
	if err := env.ParseWithOptions(config, opts); err != nil {
		return nil, fmt.Errorf("failed to parse the server configuration: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	_, compressionErr := tcp.NewConnWrapper(c.Compression)
	chain := validation.New().
		AddAssertion(c.WebsocketAddress != "" || c.TCPAddress != "", "at least one of the websocket or tcp address is required").
		AddValidator(validation.NewEmptyStringValidator("hub id", c.HubID)).
		AddAssertion(compressionErr == nil, fmt.Sprintf("unsupported compression %q", c.Compression)).
		AddAssertion(c.MaxConnections >= 0, "max connections cannot be negative").
		AddAssertion(log.ParseLevel(c.LogLevel) != log.InvalidLevel, fmt.Sprintf("invalid log level %q", c.LogLevel)).
		AddAssertion(c.ClockInterval > 0, "clock interval must be positive").
		AddAssertion(c.ShutdownTimeout > 0, "shutdown timeout must be positive")

	if c.WebsocketAddress != "" {
		chain.AddValidator(validation.NewListenAddressValidator(c.WebsocketAddress))
	}
	if c.TCPAddress != "" {
		chain.AddValidator(validation.NewListenAddressValidator(c.TCPAddress))
	}
	if c.NATSURL != "" {
		chain.
			AddValidator(validation.NewEmptyStringValidator("nats publish subject", c.NATSPublishSubject)).
			AddValidator(validation.NewEmptyStringValidator("nats subscribe subject", c.NATSSubscribeSubject)).
			AddAssertion(c.NATSPublishSubject != c.NATSSubscribeSubject, "nats subjects must differ")
	}
	return chain.Validate()
}

// Logger builds the logger matching LogLevel
func (c *Config) Logger() log.Logger {
	return log.NewZap(log.ParseLevel(c.LogLevel), os.Stdout)
}
