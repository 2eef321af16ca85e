package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/saylorsolutions/pricecrypt/pkg/keyring"
	"github.com/saylorsolutions/pricecrypt/pkg/price"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds key sources and logging settings. Flags override values from a config file.
type Config struct {
	// Keyring is the path to a keyring file created with keygen.
	Keyring string `yaml:"keyring,omitempty"`
	// PassphraseEnv names the environment variable holding the keyring passphrase.
	PassphraseEnv string `yaml:"passphrase_env,omitempty" default:"PRICECRYPT_PASSPHRASE"`
	// EncryptionKey and IntegrityKey are hex keys, used when no keyring is configured.
	EncryptionKey string `yaml:"encryption_key,omitempty"`
	IntegrityKey  string `yaml:"integrity_key,omitempty"`
	LogLevel      string `yaml:"log_level,omitempty" default:"warn"`
}

func loadConfig(path string) (*Config, error) {
	cfg := new(Config)
	if err := defaults.Set(cfg); err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	// Fields cleared by the file get their defaults back.
	if err := defaults.Set(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) passphrase() []byte {
	if c.PassphraseEnv == "" {
		return nil
	}
	return []byte(os.Getenv(c.PassphraseEnv))
}

// keys resolves the key pair from the keyring, or from hex keys if no keyring is set.
func (c *Config) keys() (keyring.Pair, error) {
	if c.Keyring != "" {
		log.WithField("keyring", c.Keyring).Debug("Reading keys from keyring")
		pair, err := keyring.ReadFile(c.Keyring, c.passphrase())
		if errors.Is(err, keyring.ErrLocked) {
			return keyring.Pair{}, fmt.Errorf("%w, set the passphrase in $%s", err, c.PassphraseEnv)
		}
		return pair, err
	}
	if c.EncryptionKey == "" || c.IntegrityKey == "" {
		return keyring.Pair{}, errors.New("no keys configured, use --keyring or both --ekey and --ikey")
	}
	log.Debug("Using hex keys")
	var (
		pair keyring.Pair
		err  error
	)
	if pair.Encryption, err = price.KeyFromHex(c.EncryptionKey); err != nil {
		return keyring.Pair{}, fmt.Errorf("encryption key: %w", err)
	}
	if pair.Integrity, err = price.KeyFromHex(c.IntegrityKey); err != nil {
		return keyring.Pair{}, fmt.Errorf("integrity key: %w", err)
	}
	return pair, nil
}
