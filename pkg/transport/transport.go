package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Transport issues a GET and hands back the complete body. Redirects are not followed,
// the 3xx response is returned to the caller instead.
type Transport interface {
	Get(ctx context.Context, requestURL string) (*Response, error)
}

type Response struct {
	URL        *url.URL
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

// RedirectTarget resolves the Location header against the URL that produced the response
func (r *Response) RedirectTarget() (*url.URL, error) {
	location := r.Header.Get("Location")
	if location == "" {
		return nil, fmt.Errorf("redirect %d without Location header", r.StatusCode)
	}

	target, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("parse redirect location: %w", err)
	}

	if r.URL == nil {
		return target, nil
	}

	return r.URL.ResolveReference(target), nil
}

type HTTPTransport struct {
	Client *http.Client
}

func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		Client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (t *HTTPTransport) Get(ctx context.Context, requestURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "curl/7.54.1") // TfL is protected by cloudflare and it gets angry when no user agent is set

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", requestURL, err)
	}

	return &Response{
		URL:        resp.Request.URL,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
