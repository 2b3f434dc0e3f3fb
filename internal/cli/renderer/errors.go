// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package renderer

import (
	"errors"
	"fmt"

	apimodel "github.com/platform-engineering-labs/stackdeploy/internal/api/model"
	"github.com/platform-engineering-labs/stackdeploy/internal/cli/display"
	"github.com/platform-engineering-labs/stackdeploy/internal/stackfile"
)

// RenderErrorMessage turns the errors of a deploy run into the message shown
// to the user.
func RenderErrorMessage(err error) string {
	var statusErr *apimodel.StatusError
	if errors.As(err, &statusErr) {
		msg := display.Redf("HTTP %d error while trying to %s\n", statusErr.StatusCode, statusErr.Operation)
		if statusErr.Response != nil && statusErr.Response.Error() != "" {
			msg += display.Grey(fmt.Sprintf("  %s\n", statusErr.Response.Error()))
		}
		return msg
	}

	var notFound *apimodel.StackNotFoundError
	if errors.As(err, &notFound) {
		return display.Redf("can't find stack \"%s\" in Portainer\n", notFound.StackName)
	}

	var serviceNotFound *stackfile.ServiceNotFoundError
	if errors.As(err, &serviceNotFound) {
		return display.Redf("Service %s definition was not found in stack yaml.\n", serviceNotFound.Service)
	}

	var imageMissing *stackfile.ImageKeyMissingError
	if errors.As(err, &imageMissing) {
		return display.Redf("First line of service %s definition was not `image` key. Can't proceed with update.\n", imageMissing.Service)
	}

	var rejected *apimodel.UpdateRejectedError
	if errors.As(err, &rejected) {
		msg := display.Red("Deployment failed\n")
		if rejected.Response != nil && rejected.Response.Error() != "" {
			msg += display.Grey(fmt.Sprintf("  %s\n", rejected.Response.Error()))
		}
		return msg
	}

	return display.Red(err.Error() + "\n")
}
