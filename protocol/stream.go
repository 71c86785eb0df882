package protocol

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// OpenStream opens a streaming HTTP POST to endpointURL with body as the
// request payload, wiring the api_version/auth headers per wire protocol
// (spec.md §4.2). The caller reads the response body and feeds chunks to a
// stream.Parser; closing the returned io.ReadCloser ends the request.
func OpenStream(ctx context.Context, client *http.Client, endpointURL string, wire WireProtocol, body []byte, opts Options) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL, strings.NewReader(string(body)))
	if err != nil {
		return nil, &TransportError{Kind: ErrOther, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	switch wire {
	case Anthropic:
		if opts.APIVersion != "" {
			req.Header.Set("anthropic-version", opts.APIVersion)
		}
		if opts.Auth != "" {
			req.Header.Set("x-api-key", opts.Auth)
		}
	case OpenAI:
		if opts.Auth != "" {
			req.Header.Set("Authorization", "Bearer "+opts.Auth)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, classifyTransportError(endpointURL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &TransportError{Kind: ErrHTTPStatus, StatusCode: resp.StatusCode, Err: errBodyAsErr(body)}
	}
	return resp.Body, nil
}

func classifyTransportError(endpointURL string, err error) *TransportError {
	isLocal := IsLocalEndpoint(endpointURL)
	if urlErr, ok := err.(*url.Error); ok {
		if urlErr.Timeout() {
			return &TransportError{Kind: ErrTimeout, IsLocal: isLocal, Err: err}
		}
		return &TransportError{Kind: ErrUnreachable, IsLocal: isLocal, Err: err}
	}
	return &TransportError{Kind: ErrOther, IsLocal: isLocal, Err: err}
}

func errBodyAsErr(body []byte) error {
	if len(body) == 0 {
		return io.EOF
	}
	return &statusBodyError{body: string(body)}
}

type statusBodyError struct{ body string }

func (e *statusBodyError) Error() string { return e.body }
