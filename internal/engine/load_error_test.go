package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"testing"
)

func TestPresentLoadError(t *testing.T) {
	dnsErr := &net.DNSError{Err: "no such host", Name: "example.invalid", IsNotFound: true}
	dialErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}

	tests := []struct {
		name    string
		err     error
		verbose bool
		want    string
	}{
		{"nil", nil, false, "unknown error"},
		{"timeout", fmt.Errorf("navigate https://example.org/: %w", context.DeadlineExceeded), false, "timed out loading page"},
		{"missing file", fmt.Errorf("read /tmp/x.html: %w", fs.ErrNotExist), false, "file not found"},
		{"dns", fmt.Errorf("fetch https://example.invalid/: %w", &url.Error{Op: "Get", URL: "https://example.invalid/", Err: dnsErr}), false, "could not resolve host example.invalid"},
		{"dial", &url.Error{Op: "Get", URL: "http://localhost:1/", Err: dialErr}, false, "could not connect to server"},
		{"http status", errors.New("fetch https://example.org/secret?token=abc: unexpected status 404 Not Found"), false, "unexpected status 404 Not Found"},
		{"verbose keeps everything", errors.New("fetch https://example.org/: unexpected status 500"), true, "fetch https://example.org/: unexpected status 500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := presentLoadError(tt.err, tt.verbose); got != tt.want {
				t.Errorf("presentLoadError() = %q, want %q", got, tt.want)
			}
		})
	}
}
