// Package transporttest provides an in-memory transport.Transport for tests.
package transporttest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/travigo/countdown/pkg/transport"
)

type HandlerFunc func(ctx context.Context, requestURL string) (*transport.Response, error)

type route struct {
	match   string
	handler HandlerFunc
}

// Transport routes requests to the first handler whose match string is contained in the URL
type Transport struct {
	mu       sync.Mutex
	routes   []route
	requests []string
}

func New() *Transport {
	return &Transport{}
}

func (f *Transport) Handle(match string, handler HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.routes = append(f.routes, route{match: match, handler: handler})
}

// Respond registers a fixed 200 response
func (f *Transport) Respond(match string, body string) {
	f.Handle(match, func(ctx context.Context, requestURL string) (*transport.Response, error) {
		return OK(requestURL, body), nil
	})
}

func (f *Transport) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.requests...)
}

func (f *Transport) RequestCount(match string) int {
	count := 0
	for _, request := range f.Requests() {
		if strings.Contains(request, match) {
			count++
		}
	}

	return count
}

func (f *Transport) Get(ctx context.Context, requestURL string) (*transport.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, requestURL)

	var handler HandlerFunc
	for _, r := range f.routes {
		if strings.Contains(requestURL, r.match) {
			handler = r.handler
			break
		}
	}
	f.mu.Unlock()

	if handler == nil {
		return nil, fmt.Errorf("no fake route for %s", requestURL)
	}

	return handler(ctx, requestURL)
}

func OK(requestURL string, body string) *transport.Response {
	return Status(requestURL, http.StatusOK, body)
}

func Status(requestURL string, statusCode int, body string) *transport.Response {
	parsedURL, _ := url.Parse(requestURL)

	return &transport.Response{
		URL:        parsedURL,
		StatusCode: statusCode,
		Header:     http.Header{},
		Body:       []byte(body),
	}
}

func Redirect(requestURL string, statusCode int, location string) *transport.Response {
	resp := Status(requestURL, statusCode, "")
	resp.Header.Set("Location", location)

	return resp
}
