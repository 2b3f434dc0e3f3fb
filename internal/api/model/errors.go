// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package model

import (
	"fmt"
	"strings"
)

type Operation string

const (
	OperationAuthenticate Operation = "authenticate"
	OperationListStacks   Operation = "list stacks"
	OperationGetStackFile Operation = "get stack file"
	OperationUpdateStack  Operation = "update stack"
)

// ErrorResponse is the error body returned by the Portainer API
type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details"`
}

func (e ErrorResponse) Error() string {
	if e.Message == "" {
		return e.Details
	}
	if e.Details != "" && e.Details != e.Message {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

// StatusError is returned when the API answers with a non-success status code
type StatusError struct {
	Operation  Operation
	StatusCode int
	Response   *ErrorResponse
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("HTTP %d error while trying to %s", e.StatusCode, e.Operation)
	if e.Response != nil && strings.TrimSpace(e.Response.Error()) != "" {
		msg += ": " + e.Response.Error()
	}
	return msg
}

type StackNotFoundError struct {
	StackName string
}

func (e *StackNotFoundError) Error() string {
	return fmt.Sprintf("can't find stack %q in Portainer", e.StackName)
}

// UpdateRejectedError is returned when the stack update call did not succeed
type UpdateRejectedError struct {
	StackName  string
	StatusCode int
	Response   *ErrorResponse
}

func (e *UpdateRejectedError) Error() string {
	msg := fmt.Sprintf("deployment of stack %s failed with HTTP %d", e.StackName, e.StatusCode)
	if e.Response != nil && e.Response.Error() != "" {
		msg += ": " + e.Response.Error()
	}
	return msg
}
