// Package netx builds the HTTP client used for Telegram traffic.
package netx

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/net/proxy"
)

var ErrUnsupportedProxy = errors.New("unsupported proxy scheme")

// NewHTTPClient returns a client that goes through proxyURL, or a direct
// client when proxyURL is empty. http, https, socks5 and socks5h are supported.
func NewHTTPClient(proxyURL string) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyURL == "" {
		return &http.Client{Transport: transport}, nil
	}

	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("proxy url %q has no host", u.Redacted())
	}

	switch u.Scheme {
	case "http", "https":
		transport.Proxy = http.ProxyURL(u)
	case "socks5", "socks5h":
		dialer, err := proxy.FromURL(u, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("socks5 dialer: %w", err)
		}
		contextDialer, ok := dialer.(proxy.ContextDialer)
		if !ok {
			return nil, errors.New("socks5 dialer does not support contexts")
		}
		transport.Proxy = nil
		transport.DialContext = contextDialer.DialContext
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProxy, u.Scheme)
	}
	return &http.Client{Transport: transport}, nil
}
