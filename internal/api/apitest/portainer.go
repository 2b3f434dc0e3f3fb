// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package apitest provides an in-process stand-in for the Portainer API.
package apitest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"

	apimodel "github.com/platform-engineering-labs/stackdeploy/internal/api/model"
)

const (
	AuthRoute      = "/api/auth"
	StacksRoute    = "/api/stacks"
	StackFileRoute = "/api/stacks/:id/file"
	StackRoute     = "/api/stacks/:id"
)

// Update is a stack update received by the fake.
type Update struct {
	StackID    int
	EndpointID string
	Request    apimodel.UpdateStackRequest
}

// Portainer serves the subset of the Portainer API used by stackdeploy.
// Fail maps a route to a status code the route answers with instead of
// handling the request.
type Portainer struct {
	Username string
	Password string
	Token    string
	Stacks   []apimodel.Stack
	Files    map[int]string
	Fail     map[string]int

	mu      sync.Mutex
	calls   []string
	updates []Update
	server  *httptest.Server
}

func NewPortainer() *Portainer {
	return &Portainer{
		Username: "admin",
		Password: "secret",
		Token:    "test-jwt",
		Files:    map[int]string{},
		Fail:     map[string]int{},
	}
}

func (p *Portainer) Start() *Portainer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.POST(AuthRoute, p.authenticate)
	e.GET(StacksRoute, p.authorized(p.listStacks))
	e.GET(StackFileRoute, p.authorized(p.stackFile))
	e.PUT(StackRoute, p.authorized(p.updateStack))

	p.server = httptest.NewServer(e)
	return p
}

// URL is the API root, the value a user passes as the Portainer URL.
func (p *Portainer) URL() string {
	return p.server.URL + "/api"
}

func (p *Portainer) Close() {
	p.server.Close()
}

// Calls lists the requests received so far as "METHOD route".
func (p *Portainer) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string{}, p.calls...)
}

func (p *Portainer) Updates() []Update {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Update{}, p.updates...)
}

func (p *Portainer) record(c echo.Context) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	route := c.Path()
	p.calls = append(p.calls, c.Request().Method+" "+route)

	status, fail := p.Fail[route]
	return status, fail
}

func failure(c echo.Context, status int) error {
	return c.JSON(status, apimodel.ErrorResponse{
		Message: http.StatusText(status),
		Details: fmt.Sprintf("forced failure on %s", c.Path()),
	})
}

func (p *Portainer) authorized(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if status, fail := p.record(c); fail {
			return failure(c, status)
		}

		if c.Request().Header.Get("Authorization") != "Bearer "+p.Token {
			return c.JSON(http.StatusUnauthorized, apimodel.ErrorResponse{
				Message: "Unauthorized",
				Details: "A valid authorisation token is missing",
			})
		}

		return next(c)
	}
}

func (p *Portainer) authenticate(c echo.Context) error {
	if status, fail := p.record(c); fail {
		return failure(c, status)
	}

	var req apimodel.AuthRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apimodel.ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
	}

	if req.Username != p.Username || req.Password != p.Password {
		return c.JSON(http.StatusUnprocessableEntity, apimodel.ErrorResponse{
			Message: "Invalid credentials",
			Details: "Unauthorized",
		})
	}

	return c.JSON(http.StatusOK, apimodel.AuthResponse{JWT: p.Token})
}

func (p *Portainer) listStacks(c echo.Context) error {
	stacks := p.Stacks
	if stacks == nil {
		stacks = []apimodel.Stack{}
	}
	return c.JSON(http.StatusOK, stacks)
}

func (p *Portainer) stackFile(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, apimodel.ErrorResponse{Message: "Invalid stack identifier route variable"})
	}

	content, ok := p.Files[id]
	if !ok {
		return c.JSON(http.StatusNotFound, apimodel.ErrorResponse{Message: "Unable to find a stack with the specified identifier inside the database"})
	}

	return c.JSON(http.StatusOK, apimodel.StackFile{StackFileContent: content})
}

func (p *Portainer) updateStack(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, apimodel.ErrorResponse{Message: "Invalid stack identifier route variable"})
	}

	endpointID := c.QueryParam("endpointId")
	if strings.TrimSpace(endpointID) == "" {
		return c.JSON(http.StatusBadRequest, apimodel.ErrorResponse{Message: "Invalid query parameter: endpointId"})
	}

	var req apimodel.UpdateStackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apimodel.ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
	}

	p.mu.Lock()
	p.updates = append(p.updates, Update{StackID: id, EndpointID: endpointID, Request: req})
	p.Files[id] = req.StackFileContent
	p.mu.Unlock()

	for _, s := range p.Stacks {
		if s.ID == id {
			s.Env = req.Env
			return c.JSON(http.StatusOK, s)
		}
	}

	return c.JSON(http.StatusNotFound, apimodel.ErrorResponse{Message: "Unable to find a stack with the specified identifier inside the database"})
}
