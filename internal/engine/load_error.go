package engine

import (
	"context"
	"errors"
	"io/fs"
	"net"
	"net/url"
	"strings"
)

// presentLoadError turns a page load failure into a one-line message.
// Without verbose, transport details such as full request URLs are
// dropped; the target is already shown next to the message.
func presentLoadError(err error, verbose bool) string {
	if err == nil {
		return "unknown error"
	}
	if verbose {
		return err.Error()
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out loading page"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, fs.ErrNotExist):
		return "file not found"
	case errors.Is(err, fs.ErrPermission):
		return "permission denied"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "could not resolve host " + dnsErr.Name
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return "could not connect to server"
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return "request failed: " + scrubLoadError(urlErr.Err.Error())
	}
	return scrubLoadError(err.Error())
}

// scrubLoadError drops leading "fetch <url>: " or "navigate <url>: "
// prefixes, keeping the innermost message.
func scrubLoadError(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"fetch ", "navigate ", "read "} {
		if !strings.HasPrefix(s, prefix) {
			continue
		}
		if i := strings.Index(s, ": "); i >= 0 {
			s = strings.TrimSpace(s[i+2:])
		}
		break
	}
	if s == "" {
		return "page could not be loaded"
	}
	return s
}
