// Package nsterr defines the error taxonomy probes and the SOCKS5 client
// use to classify failures: Config, Connection, Socks5, Io, and Timeout.
// Probes recover Connection/Socks5/Io/Timeout locally; Config errors abort
// before any probe starts.
package nsterr

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed.
type Kind int

// The five error kinds a probe or the SOCKS5 client can report.
const (
	// Config marks a bad address, unparseable argument, or malformed
	// config file. Fatal at startup.
	Config Kind = iota
	// Connection marks a TCP-level failure: refused, reset, truncated,
	// closed-by-peer.
	Connection
	// Socks5 marks a wire-protocol violation or a proxy-reported REP != 0.
	Socks5
	// Io marks an underlying OS error not otherwise classified.
	Io
	// Timeout marks a deadline on a specific operation elapsing. Always
	// distinguishable from the other kinds so probes can split counters.
	Timeout
)

func (k Kind) String() string {
	switch k {
	case Config:
		return "config"
	case Connection:
		return "connection"
	case Socks5:
		return "socks5"
	case Io:
		return "io"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error is an error tagged with a Kind, so callers can dispatch on the
// failure category with errors.As without string-matching messages.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap allows errors.Is/errors.As to see through to the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an *Error of the given kind with a formatted message.
func New(kind Kind, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, a...)}
}

// Wrap builds an *Error of the given kind around an underlying cause.
func Wrap(kind Kind, err error, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, a...), Err: err}
}

// KindOf returns the Kind of err if it (or something it wraps) is an
// *Error, and the Io kind otherwise, so callers always get a usable
// classification for counters like "timeout vs failed".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Io
}

// IsTimeout reports whether err is classified as a Timeout.
func IsTimeout(err error) bool {
	return KindOf(err) == Timeout
}
