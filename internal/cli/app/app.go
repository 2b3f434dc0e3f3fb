// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/platform-engineering-labs/stackdeploy/internal/api"
	apimodel "github.com/platform-engineering-labs/stackdeploy/internal/api/model"
	"github.com/platform-engineering-labs/stackdeploy/internal/cli/config"
	"github.com/platform-engineering-labs/stackdeploy/internal/stackfile"
)

const (
	StageAuthenticate = "Getting auth token"
	StageFindStack    = "Getting target stack ID"
	StageGetStackFile = "Getting stackfile"
	StagePatch        = "Patching service image"
	StageUpdate       = "Requesting stack update"
)

// Reporter is told about the progress of a deploy run.
type Reporter interface {
	EnvOverrides(env []apimodel.EnvVar)
	StageStarted(stage string)
	StageDone(stage string)
	StageFailed(stage string, err error)
}

type nopReporter struct{}

func (nopReporter) EnvOverrides([]apimodel.EnvVar) {}
func (nopReporter) StageStarted(string) {}
func (nopReporter) StageDone(string) {}
func (nopReporter) StageFailed(string, error) {}

// NopReporter discards all progress.
var NopReporter Reporter = nopReporter{}

type App struct {
	// NetClient is the HTTP client used for the Portainer API. Nil means
	// the resty default.
	NetClient *http.Client
}

func NewApp() *App {
	return &App{}
}

func (a *App) client(conn config.Connection) *api.Client {
	return api.NewClient(conn.URL, a.NetClient)
}

// Deployment is everything a deploy run produced. Response is nil when the
// update was not sent.
type Deployment struct {
	Summary  apimodel.DeploymentSummary
	Before   string
	After    string
	Response *apimodel.UpdateStackResponse
}

type run struct {
	cfg        config.Deploy
	client     *api.Client
	token      string
	stack      apimodel.Stack
	deployment *Deployment
}

type step struct {
	name string
	run  func(ctx context.Context, r *run) error
}

var deploySteps = []step{
	{StageAuthenticate, authenticate},
	{StageFindStack, findStack},
	{StageGetStackFile, getStackFile},
	{StagePatch, patchImage},
	{StageUpdate, updateStack},
}

// Deploy replaces the image of one service in a Portainer stack and asks
// Portainer to redeploy it. The stages run in order and the first failure
// stops the run. In dry run mode the update is not sent.
//
// A rejected update is reported as *apimodel.UpdateRejectedError together with
// the Deployment, so the caller can still show the response.
func (a *App) Deploy(ctx context.Context, cfg config.Deploy, reporter Reporter) (*Deployment, error) {
	if reporter == nil {
		reporter = NopReporter
	}

	logger := slog.With("run", ksuid.New().String(), "stack", cfg.StackName, "service", cfg.ServiceName)
	logger.Info("Starting deployment", "image", cfg.NewImage, "dryRun", cfg.DryRun)

	r := &run{
		cfg:    cfg,
		client: a.client(cfg.Connection),
		deployment: &Deployment{
			Summary: apimodel.DeploymentSummary{
				Stack:    cfg.StackName,
				Service:  cfg.ServiceName,
				NewImage: cfg.NewImage,
				DryRun:   cfg.DryRun,
			},
		},
	}

	reporter.EnvOverrides(cfg.Env)

	for _, s := range deploySteps {
		if s.name == StageUpdate && cfg.DryRun {
			logger.Info("Dry run, skipping stack update")
			break
		}

		start := time.Now()
		reporter.StageStarted(s.name)

		if err := s.run(ctx, r); err != nil {
			logger.Error("Deployment stage failed", "stage", s.name, "error", err)
			reporter.StageFailed(s.name, err)
			return r.deployment, err
		}

		logger.Debug("Deployment stage done", "stage", s.name, "duration", time.Since(start))
		reporter.StageDone(s.name)
	}

	if resp := r.deployment.Response; resp != nil && !resp.IsSuccess() {
		logger.Error("Stack update rejected", "status", resp.StatusCode)
		return r.deployment, &apimodel.UpdateRejectedError{
			StackName:  cfg.StackName,
			StatusCode: resp.StatusCode,
			Response:   api.ParseErrorBody(resp.Body),
		}
	}

	logger.Info("Deployment finished", "previousImage", r.deployment.Summary.PreviousImage)
	return r.deployment, nil
}

func authenticate(ctx context.Context, r *run) error {
	token, err := r.client.Authenticate(ctx, r.cfg.Username, r.cfg.Password)
	if err != nil {
		return err
	}

	r.token = token
	return nil
}

func findStack(ctx context.Context, r *run) error {
	stacks, err := r.client.ListStacks(ctx, r.token)
	if err != nil {
		return err
	}

	stack, err := apimodel.FindStack(stacks, r.cfg.StackName)
	if err != nil {
		return err
	}

	r.stack = stack
	return nil
}

func getStackFile(ctx context.Context, r *run) error {
	content, err := r.client.GetStackFile(ctx, r.token, r.stack.ID)
	if err != nil {
		return err
	}

	r.deployment.Before = content
	return nil
}

func patchImage(_ context.Context, r *run) error {
	patched, previous, err := stackfile.FindAndReplaceImage(r.deployment.Before, r.cfg.ServiceName, r.cfg.NewImage)
	if err != nil {
		return err
	}

	r.deployment.After = patched
	r.deployment.Summary.PreviousImage = previous
	return nil
}

func updateStack(ctx context.Context, r *run) error {
	resp, err := r.client.UpdateStack(ctx, r.token, r.stack.ID, r.stack.EndpointID, r.deployment.After, r.cfg.Env)
	if err != nil {
		return err
	}

	r.deployment.Response = resp
	r.deployment.Summary.StatusCode = resp.StatusCode
	return nil
}

// ListStacks authenticates and returns every stack visible to the user.
func (a *App) ListStacks(ctx context.Context, conn config.Connection) ([]apimodel.Stack, error) {
	client := a.client(conn)

	token, err := client.Authenticate(ctx, conn.Username, conn.Password)
	if err != nil {
		return nil, err
	}

	stacks, err := client.ListStacks(ctx, token)
	if err != nil {
		return nil, err
	}

	if stacks == nil {
		stacks = []apimodel.Stack{}
	}

	return stacks, nil
}
