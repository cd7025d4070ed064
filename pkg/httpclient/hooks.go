package httpclient

import (
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/oklog/ulid/v2"
)

// beforeRequest attaches the bearer token and a request id.
func (c *Client) beforeRequest(_ *resty.Client, req *resty.Request) error {
	ctx := req.Context()
	state := callStateFrom(ctx)

	if req.Header.Get(headerRequestID) == "" {
		req.SetHeader(headerRequestID, ulid.Make().String())
	}

	if state.opts.withoutToken {
		return nil
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	if token != "" {
		req.SetHeader(headerAuthorization, "Bearer "+token)
	}
	return nil
}

// afterResponse handles every response that reached the server. Non-2xx
// statuses become a StatusError for onError; 2xx bodies must carry a
// success envelope.
func (c *Client) afterResponse(_ *resty.Client, resp *resty.Response) error {
	ctx := resp.Request.Context()
	state := callStateFrom(ctx)

	if !resp.IsSuccess() {
		return newStatusError(resp)
	}

	env, err := decodeEnvelope(resp.Body())
	if err != nil {
		apiErr := &APIError{
			Message: MessageRequestFailed,
			URL:     requestURL(resp.Request),
			Err:     err,
		}
		c.reportAPIError(resp.Request, state, apiErr)
		return apiErr
	}

	if !env.OK() {
		apiErr := &APIError{
			Code:     env.Code,
			Message:  messageOrDefault(env.Message),
			URL:      requestURL(resp.Request),
			Envelope: env,
		}
		c.reportAPIError(resp.Request, state, apiErr)
		return apiErr
	}

	state.envelope = env
	c.log.DebugObj("request completed", "request_meta", map[string]any{
		"method": resp.Request.Method,
		"url":    requestURL(resp.Request),
		"status": resp.StatusCode(),
		"code":   env.Code,
	})
	return nil
}

func (c *Client) reportAPIError(req *resty.Request, state *callState, apiErr *APIError) {
	if state.opts.skipErrorHandler {
		return
	}

	fields := map[string]any{
		"method": req.Method,
		"url":    apiErr.URL,
		"code":   apiErr.Code,
	}
	if apiErr.Err != nil {
		fields["error"] = apiErr.Err.Error()
	}
	c.log.ErrorObj(apiErr.Message, "request_error", fields)

	if apiErr.Envelope != nil && apiErr.Code == CodeUnauthorized {
		c.expireSession(req.Context(), SourceApplication, apiErr.Code, apiErr.URL)
	}
}

// onError handles transport-level failures. Application errors were already
// reported by afterResponse. The caller always receives the original error.
func (c *Client) onError(req *resty.Request, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return
	}

	ctx := req.Context()
	state := callStateFrom(ctx)
	if state.opts.skipErrorHandler {
		return
	}

	fields := map[string]any{
		"method": req.Method,
		"url":    requestURL(req),
		"error":  err.Error(),
	}

	var message string
	var statusErr *StatusError
	var respErr *resty.ResponseError
	switch {
	case errors.As(err, &statusErr):
		message = StatusMessage(statusErr.StatusCode)
		fields["status"] = statusErr.StatusCode
	case errors.As(err, &respErr):
		// Sent, but nothing came back.
		message = MessageNoResponse
	default:
		message = MessageNetworkError
	}
	c.log.ErrorObj(message, "request_error", fields)

	if statusErr != nil && statusErr.StatusCode == CodeUnauthorized {
		c.expireSession(ctx, SourceTransport, statusErr.StatusCode, statusErr.URL)
	}
}
