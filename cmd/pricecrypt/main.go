package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/saylorsolutions/pricecrypt/cmd/internal"
	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

var version = "dev"

var errHelp = errors.New("help requested")

type options struct {
	configPath string
	verbose    bool
	keyring    string
	passEnv    string
	encKey     string
	intKey     string
	out        string
	lock       bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errHelp) {
			return
		}
		internal.Fatal(err)
	}
}

func newFlags(opts *options, usageOut io.Writer) *flag.FlagSet {
	flags := flag.NewFlagSet("pricecrypt", flag.ContinueOnError)
	flags.SetOutput(usageOut)
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML config file with key sources and log level.")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging to stderr.")
	flags.StringVarP(&opts.keyring, "keyring", "k", "", "Keyring file created with keygen.")
	flags.StringVar(&opts.passEnv, "passphrase-env", "", "Environment variable holding the keyring passphrase. (default PRICECRYPT_PASSPHRASE)")
	flags.StringVar(&opts.encKey, "ekey", "", "Encryption key as 64 hex characters.")
	flags.StringVar(&opts.intKey, "ikey", "", "Integrity key as 64 hex characters.")
	flags.StringVarP(&opts.out, "out", "o", "", "keygen: write a keyring to this file instead of printing hex keys.")
	flags.BoolVar(&opts.lock, "lock", false, "keygen: lock the keyring with the passphrase from --passphrase-env.")
	flags.Usage = func() {
		_, _ = fmt.Fprintf(usageOut, `
pricecrypt encrypts and decrypts real-time bidding winning price tokens.
Version: %s

USAGE:  pricecrypt COMMAND [ARGS] [FLAGS]

COMMANDS:
    keygen          Generate a new encryption and integrity key pair.
    encode PRICE    Encrypt PRICE (a signed 64-bit integer) into a token.
    decode TOKEN    Decrypt and verify TOKEN, printing the price and time.
    demo            Encode and decode with well known test keys.

EXIT CODES:
    0 success, 1 other error, 2 token failed authentication,
    3 malformed token or out of range price, 4 invalid key.

FLAGS:
%s
SECURITY:
    Keys given with --ekey and --ikey may be visible to other users in the process list.
Prefer a keyring locked with a passphrase for anything beyond testing.
`, version, flags.FlagUsages())
	}
	return flags
}

func run(args []string, out io.Writer) error {
	var opts options
	flags := newFlags(&opts, os.Stderr)
	help := flags.BoolP("help", "h", false, "Prints this usage information.")
	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("parsing flags: %w", err)
	}
	if *help || flags.NArg() == 0 {
		flags.Usage()
		return errHelp
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	applyFlags(cfg, flags, &opts)
	if err := setupLogging(cfg, opts.verbose); err != nil {
		return err
	}

	cmd, cmdArgs := flags.Arg(0), flags.Args()[1:]
	log.WithField("command", cmd).Debug("Running command")
	switch cmd {
	case "keygen":
		return keygenCmd(cfg, &opts, out)
	case "encode":
		if len(cmdArgs) != 1 {
			return errors.New("encode requires exactly one PRICE argument")
		}
		return encodeCmd(cfg, cmdArgs[0], out)
	case "decode":
		if len(cmdArgs) != 1 {
			return errors.New("decode requires exactly one TOKEN argument")
		}
		return decodeCmd(cfg, cmdArgs[0], out)
	case "demo":
		return demoCmd(out)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// applyFlags overrides config file values with explicitly set flags.
func applyFlags(cfg *Config, flags *flag.FlagSet, opts *options) {
	if flags.Changed("keyring") {
		cfg.Keyring = opts.keyring
	}
	if flags.Changed("passphrase-env") {
		cfg.PassphraseEnv = opts.passEnv
	}
	if flags.Changed("ekey") {
		cfg.EncryptionKey = opts.encKey
	}
	if flags.Changed("ikey") {
		cfg.IntegrityKey = opts.intKey
	}
}

func setupLogging(cfg *Config, verbose bool) error {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	if verbose {
		log.SetLevel(log.DebugLevel)
		return nil
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	log.SetLevel(level)
	return nil
}
