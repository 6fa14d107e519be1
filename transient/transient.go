// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"syscall"
)

// A Category is the kind of a transport failure, as reported by
// Categorize.
//
// The retrying client retries every transport failure regardless of its
// category. Categories exist so that failures can be reported and logged
// meaningfully.
type Category int

const (
	// Not indicates a nil error, or an error which does not fall into
	// any of the other categories.
	Not Category = iota
	// Timeout indicates a client-side timeout: the connect timeout or
	// the total attempt timeout expired.
	//
	// Categorize returns Timeout if the error or any of its wrapped
	// causes has a Timeout() function that reports true.
	Timeout
	// ConnRefused indicates the remote host refused the connection,
	// corresponding to the POSIX error code ECONNREFUSED.
	ConnRefused
	// ConnReset indicates the remote host reset a previously active
	// TCP connection, corresponding to the POSIX error code ECONNRESET.
	ConnReset
	// DNS indicates the host name could not be resolved.
	DNS
	// TLS indicates the TLS handshake failed, including failure to
	// verify the server certificate.
	TLS
	// Redirect indicates the redirect limit was exceeded.
	Redirect
)

// ErrTooManyRedirects is returned by the transport when a response
// redirects more times than the redirect policy allows.
var ErrTooManyRedirects = errors.New("apipoll: too many redirects")

var categoryNames = []string{
	"not",
	"timeout",
	"conn_refused",
	"conn_reset",
	"dns",
	"tls",
	"redirect",
}

// String returns a short snake_case name for the category, suitable as
// a structured log field value.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// Categorize returns the category of the given error. A nil error, and
// an error that fits no specific category, both produce Not.
//
// Categorize looks at wrapped cause errors contained within err, not
// just err itself. Timeout is checked first, so a DNS lookup which
// timed out is reported as Timeout.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if errno == syscall.ECONNRESET {
			return ConnReset
		} else if errno == syscall.ECONNREFUSED {
			return ConnRefused
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return DNS
	}

	if isTLS(err) {
		return TLS
	}

	if errors.Is(err, ErrTooManyRedirects) {
		return Redirect
	}

	return Not
}

func isTLS(err error) bool {
	var recordErr tls.RecordHeaderError
	var verifyErr *tls.CertificateVerificationError
	var unknownAuthErr x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	var invalidErr x509.CertificateInvalidError
	var alertErr tls.AlertError
	return errors.As(err, &recordErr) ||
		errors.As(err, &verifyErr) ||
		errors.As(err, &unknownAuthErr) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidErr) ||
		errors.As(err, &alertErr)
}

type hasTimeout interface {
	Timeout() bool
}
