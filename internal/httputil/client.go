// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the completion backends.
package httputil

import "net/http"

// Doer sends an HTTP request. *http.Client and *HeaderClient satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HeaderClient sends requests through an underlying Doer after setting a
// fixed set of headers. Requests are cloned, so callers' requests are never
// modified. No timeout or retry is applied.
type HeaderClient struct {
	next   Doer
	header http.Header
}

// NewHeaderClient wraps next. Header entries with no non-empty value are
// dropped. A nil next uses http.DefaultClient.
func NewHeaderClient(next Doer, header http.Header) *HeaderClient {
	if next == nil {
		next = http.DefaultClient
	}
	h := make(http.Header, len(header))
	for k, vs := range header {
		for _, v := range vs {
			if v != "" {
				h.Add(k, v)
			}
		}
	}
	return &HeaderClient{next: next, header: h}
}

// Do sets the configured headers on a clone of req and sends it.
func (c *HeaderClient) Do(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	for k, vs := range c.header {
		out.Header.Del(k)
		for _, v := range vs {
			out.Header.Add(k, v)
		}
	}
	return c.next.Do(out)
}
