package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/saylorsolutions/pricecrypt/pkg/keyring"
	"github.com/saylorsolutions/pricecrypt/pkg/price"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	demoEncKey = "b08c70cfbcb0eb6cab7e82c6b75da52072ae62b2bf4b990bb80a48d8141eec07"
	demoIntKey = "bf77ec55c30130c1d8cd1862ed2a4cd2c76ac33bc0c4ce8a3d3bbd3ad5687792"
	demoPrice  = 13532120
	demoToken  = "SjpvRwAB4kB7jEpgW5IA8p73ew9ic6VZpFsPnA"
)

func keygenCmd(cfg *Config, opts *options, out io.Writer) error {
	pair, err := keyring.Generate()
	if err != nil {
		return err
	}
	defer pair.Wipe()

	if opts.out == "" {
		if opts.lock {
			return errors.New("--lock requires --out")
		}
		data, err := yaml.Marshal(&Config{
			EncryptionKey: pair.Encryption.Hex(),
			IntegrityKey:  pair.Integrity.Hex(),
		})
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}

	var data []byte
	if opts.lock {
		pass := cfg.passphrase()
		if len(pass) == 0 {
			return fmt.Errorf("--lock requires a passphrase in $%s", cfg.PassphraseEnv)
		}
		data, err = keyring.Lock(pair, pass, keyring.SetShortDelayIterations())
	} else {
		data, err = pair.MarshalBinary()
	}
	if err != nil {
		return err
	}
	if err := keyring.WriteFile(opts.out, data); err != nil {
		return err
	}
	log.WithFields(log.Fields{"path": opts.out, "locked": opts.lock}).Info("Wrote keyring")
	_, err = fmt.Fprintf(out, "Wrote keyring to %s\n", opts.out)
	return err
}

func newEncoder(cfg *Config) (*price.Encoder, error) {
	pair, err := cfg.keys()
	if err != nil {
		return nil, err
	}
	defer pair.Wipe()
	return pair.Encoder()
}

func encodeCmd(cfg *Config, arg string, out io.Writer) error {
	p, err := price.ParsePrice(arg)
	if err != nil {
		return err
	}
	enc, err := newEncoder(cfg)
	if err != nil {
		return err
	}
	defer enc.Wipe()
	token, err := enc.Encode(p)
	if err != nil {
		return err
	}
	log.WithField("price", p).Debug("Encoded price")
	_, err = fmt.Fprintln(out, token)
	return err
}

func decodeCmd(cfg *Config, token string, out io.Writer) error {
	enc, err := newEncoder(cfg)
	if err != nil {
		return err
	}
	defer enc.Wipe()
	return printDecoded(enc, token, out)
}

func printDecoded(enc *price.Encoder, token string, out io.Writer) error {
	res, err := enc.Decode(token)
	if err != nil {
		if errors.Is(err, price.ErrAuthentication) {
			log.WithField("token", token).Warn("Token failed authentication")
			return fmt.Errorf("token %q was tampered with or encrypted with different keys: %w", token, err)
		}
		return err
	}
	_, err = fmt.Fprintf(out, "price: %d\ntime: %s\n", res.Price, res.Time.UTC().Format(time.RFC3339Nano))
	return err
}

func demoCmd(out io.Writer) error {
	enc, err := newEncoder(&Config{EncryptionKey: demoEncKey, IntegrityKey: demoIntKey})
	if err != nil {
		return err
	}
	defer enc.Wipe()

	token, err := enc.Encode(demoPrice)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "encrypt price %d: %s\n", demoPrice, token)
	if err := printDecoded(enc, token, out); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "decrypt %s:\n", demoToken)
	return printDecoded(enc, demoToken, out)
}
