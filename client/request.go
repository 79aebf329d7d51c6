package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"maps"
	"net/http"
	"net/url"

	"github.com/kochabx/eduportal/errors"
)

// Common content types
const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
	ContentTypeText = "text/plain"
)

// RequestOption holds options for a single request.
type RequestOption struct {
	ctx      context.Context
	header   map[string]string
	query    url.Values
	response any
}

// WithContext sets the request context.
func WithContext(ctx context.Context) func(*RequestOption) {
	return func(opt *RequestOption) {
		opt.ctx = ctx
	}
}

// WithHeader adds headers. Authorization is always owned by the client.
func WithHeader(header map[string]string) func(*RequestOption) {
	return func(opt *RequestOption) {
		maps.Copy(opt.header, header)
	}
}

// WithQuery sets the query string.
func WithQuery(query url.Values) func(*RequestOption) {
	return func(opt *RequestOption) {
		opt.query = query
	}
}

// WithResponse decodes a 2xx JSON body into dest.
func WithResponse(dest any) func(*RequestOption) {
	return func(opt *RequestOption) {
		opt.response = dest
	}
}

// attempt carries one logical request through send, refresh and retry.
// The body is buffered so the request can be replayed.
type attempt struct {
	ctx         context.Context
	method      string
	url         string
	header      map[string]string
	body        []byte
	contentType string
	retries     int
}

func (a *attempt) retried() bool {
	return a.retries > 0
}

func (a *attempt) request(token string) (*http.Request, error) {
	var body io.Reader
	if a.body != nil {
		body = bytes.NewReader(a.body)
	}
	req, err := http.NewRequestWithContext(a.ctx, a.method, a.url, body)
	if err != nil {
		return nil, err
	}
	if a.contentType != "" {
		req.Header.Set("Content-Type", a.contentType)
	}
	for k, v := range a.header {
		req.Header.Set(k, v)
	}
	req.Header.Set("Accept", ContentTypeJSON)
	req.Header.Del("Authorization")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// Request sends method to the API path p. Non-2xx responses come back as
// *errors.Error together with the response; the body has already been read
// and is replayable from the returned response.
func (c *Client) Request(method, p string, body any, opts ...func(*RequestOption)) (*http.Response, error) {
	opt := &RequestOption{header: make(map[string]string, 4)}
	for _, o := range opts {
		o(opt)
	}
	ctx := opt.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	a := &attempt{
		ctx:    ctx,
		method: method,
		url:    c.URL(p, opt.query),
		header: opt.header,
	}
	if err := c.encodeBody(a, body); err != nil {
		return nil, errors.Wrap(err, http.StatusBadRequest, "failed to encode request body")
	}

	resp, data, err := c.do(a)
	if err != nil {
		return resp, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, errors.FromResponse(resp.StatusCode, data)
	}
	if opt.response != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, opt.response); err != nil {
			return resp, errors.Wrap(err, http.StatusBadGateway, "invalid upstream response")
		}
	}
	return resp, nil
}

func (c *Client) encodeBody(a *attempt, body any) error {
	switch v := body.(type) {
	case nil:
		return nil
	case *Form:
		data, contentType, err := v.encode()
		if err != nil {
			return err
		}
		a.body, a.contentType = data, contentType
	case []byte:
		a.body = v
	case io.Reader:
		data, err := io.ReadAll(v)
		if err != nil {
			return err
		}
		a.body = data
	case url.Values:
		a.body, a.contentType = []byte(v.Encode()), ContentTypeForm
	default:
		buf := c.getBuffer()
		defer c.putBuffer(buf)
		if err := json.NewEncoder(buf).Encode(v); err != nil {
			return err
		}
		a.body = bytes.Clone(buf.Bytes())
		a.contentType = ContentTypeJSON
	}
	return nil
}

// send performs one HTTP exchange and reads the whole body.
func (c *Client) send(a *attempt, token string) (*http.Response, []byte, error) {
	req, err := a.request(token)
	if err != nil {
		return nil, nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observeRequest(a.method, 0)
		return nil, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.metrics.observeRequest(a.method, resp.StatusCode)
	if err != nil {
		return nil, nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return resp, data, nil
}

// Convenience methods

func (c *Client) Get(p string, opts ...func(*RequestOption)) (*http.Response, error) {
	return c.Request(http.MethodGet, p, nil, opts...)
}

func (c *Client) Post(p string, body any, opts ...func(*RequestOption)) (*http.Response, error) {
	return c.Request(http.MethodPost, p, body, opts...)
}

func (c *Client) Put(p string, body any, opts ...func(*RequestOption)) (*http.Response, error) {
	return c.Request(http.MethodPut, p, body, opts...)
}

func (c *Client) Patch(p string, body any, opts ...func(*RequestOption)) (*http.Response, error) {
	return c.Request(http.MethodPatch, p, body, opts...)
}

func (c *Client) Delete(p string, opts ...func(*RequestOption)) (*http.Response, error) {
	return c.Request(http.MethodDelete, p, nil, opts...)
}

// PostMultipart sends form as multipart/form-data.
func (c *Client) PostMultipart(p string, form *Form, opts ...func(*RequestOption)) (*http.Response, error) {
	return c.Request(http.MethodPost, p, form, opts...)
}

// PutMultipart sends form as multipart/form-data.
func (c *Client) PutMultipart(p string, form *Form, opts ...func(*RequestOption)) (*http.Response, error) {
	return c.Request(http.MethodPut, p, form, opts...)
}
