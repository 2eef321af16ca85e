package internal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/saylorsolutions/pricecrypt/pkg/price"
)

// Exit codes, so scripts can tell a rejected token apart from a misconfiguration.
const (
	ExitOK = iota
	ExitError
	ExitAuthFailed
	ExitBadToken
	ExitBadKey
)

// ExitCode maps an error from a command to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, price.ErrAuthentication):
		return ExitAuthFailed
	case errors.Is(err, price.ErrFormat), errors.Is(err, price.ErrRange):
		return ExitBadToken
	case errors.Is(err, price.ErrKeyLength), errors.Is(err, price.ErrKeyEncoding):
		return ExitBadKey
	default:
		return ExitError
	}
}

// Fatal reports err on stderr and exits with its ExitCode.
func Fatal(err error) {
	Echo(os.Stderr, "Error: %v", err)
	os.Exit(ExitCode(err))
}

// Echo writes the message to w without any logging formatting, adding a trailing newline if needed.
func Echo(w io.Writer, msg string, args ...any) {
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	_, _ = fmt.Fprintf(w, msg, args...)
}
