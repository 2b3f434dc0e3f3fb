// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"syscall"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"resty.dev/v3"

	apimodel "github.com/platform-engineering-labs/stackdeploy/internal/api/model"
	"github.com/platform-engineering-labs/stackdeploy/internal/logging"
	"github.com/platform-engineering-labs/stackdeploy/internal/util"
)

// Client talks to the Portainer REST API. The endpoint is the API root, for
// example https://portainer.example.com/api.
type Client struct {
	endpoint string
	resty    *resty.Client
}

func NewClient(endpoint string, net *http.Client) *Client {
	client := resty.New()

	if net != nil {
		client = resty.NewWithClient(net)
	}

	client.SetLogger(&logging.RestyLogger{})
	client.AddContentTypeEncoder("json", func(w io.Writer, v any) error {
		return json.NewEncoder(w).Encode(v)
	})
	client.AddContentTypeDecoder("json", func(r io.Reader, v any) error {
		return json.NewDecoder(r).Decode(v)
	})
	client.OnSuccess(func(_ *resty.Client, resp *resty.Response) {
		logging.LogAPICall(resp.Request.Context(), resp.Request.Method, resp.Request.URL, resp.StatusCode(), resp.Duration())
	})
	client.OnError(func(req *resty.Request, err error) {
		logging.LogAPIError(req.Context(), req.Method, req.URL, err)
	})

	return &Client{
		endpoint: util.TrimURL(endpoint),
		resty:    client,
	}
}

// Authenticate exchanges the credentials for a JWT used as bearer token by
// every other call.
func (c *Client) Authenticate(ctx context.Context, username, password string) (string, error) {
	var auth apimodel.AuthResponse

	resp, err := c.resty.R().
		SetContext(ctx).
		SetBody(apimodel.AuthRequest{Username: username, Password: password}).
		SetResult(&auth).
		SetError(&apimodel.ErrorResponse{}).
		Post(c.endpoint + "/auth")
	if err != nil {
		return "", requestError(apimodel.OperationAuthenticate, err)
	}

	//nolint:errcheck
	defer resp.Body.Close()

	if !resp.IsSuccess() {
		return "", statusError(apimodel.OperationAuthenticate, resp)
	}

	if auth.JWT == "" {
		return "", fmt.Errorf("authentication succeeded but the response did not contain a token")
	}

	return auth.JWT, nil
}

func (c *Client) ListStacks(ctx context.Context, token string) ([]apimodel.Stack, error) {
	var stacks []apimodel.Stack

	resp, err := c.resty.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&stacks).
		SetError(&apimodel.ErrorResponse{}).
		Get(c.endpoint + "/stacks")
	if err != nil {
		return nil, requestError(apimodel.OperationListStacks, err)
	}

	//nolint:errcheck
	defer resp.Body.Close()

	if !resp.IsSuccess() {
		return nil, statusError(apimodel.OperationListStacks, resp)
	}

	return stacks, nil
}

func (c *Client) GetStackFile(ctx context.Context, token string, stackID int) (string, error) {
	var file apimodel.StackFile

	resp, err := c.resty.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&file).
		SetError(&apimodel.ErrorResponse{}).
		SetPathParam("id", strconv.Itoa(stackID)).
		Get(c.endpoint + "/stacks/{id}/file")
	if err != nil {
		return "", requestError(apimodel.OperationGetStackFile, err)
	}

	//nolint:errcheck
	defer resp.Body.Close()

	if !resp.IsSuccess() {
		return "", statusError(apimodel.OperationGetStackFile, resp)
	}

	return file.StackFileContent, nil
}

// UpdateStack submits the new stack file and environment. Prune is never
// requested. A non-success status is not an error here; the caller inspects
// the returned status and body.
func (c *Client) UpdateStack(ctx context.Context, token string, stackID, endpointID int, content string, env []apimodel.EnvVar) (*apimodel.UpdateStackResponse, error) {
	if env == nil {
		env = []apimodel.EnvVar{}
	}

	resp, err := c.resty.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetPathParam("id", strconv.Itoa(stackID)).
		SetQueryParam("endpointId", strconv.Itoa(endpointID)).
		SetBody(apimodel.UpdateStackRequest{
			StackFileContent: content,
			Env:              env,
			Prune:            false,
		}).
		Put(c.endpoint + "/stacks/{id}")
	if err != nil {
		return nil, requestError(apimodel.OperationUpdateStack, err)
	}

	//nolint:errcheck
	defer resp.Body.Close()

	return &apimodel.UpdateStackResponse{
		StatusCode: resp.StatusCode(),
		Body:       resp.Bytes(),
	}, nil
}

func requestError(op apimodel.Operation, err error) error {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("failed to %s: connection refused by the Portainer API: %w", op, err)
	}

	return fmt.Errorf("failed to %s: %w", op, err)
}

func statusError(op apimodel.Operation, resp *resty.Response) error {
	statusErr := &apimodel.StatusError{Operation: op, StatusCode: resp.StatusCode()}

	if apiErr, ok := resp.Error().(*apimodel.ErrorResponse); ok && apiErr != nil && apiErr.Message != "" {
		statusErr.Response = apiErr
		return statusErr
	}

	statusErr.Response = ParseErrorBody(resp.Bytes())
	return statusErr
}

// ParseErrorBody extracts the message and details fields Portainer puts in
// error responses. It returns nil when the body carries neither.
func ParseErrorBody(body []byte) *apimodel.ErrorResponse {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return nil
	}

	res := gjson.GetManyBytes(body, "message", "details")
	if res[0].String() == "" && res[1].String() == "" {
		return nil
	}

	return &apimodel.ErrorResponse{
		Message: res[0].String(),
		Details: res[1].String(),
	}
}
