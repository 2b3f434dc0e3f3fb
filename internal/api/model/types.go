// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package model

type AuthRequest struct {
	Username string `json:"Username"`
	Password string `json:"Password"`
}

type AuthResponse struct {
	JWT string `json:"jwt"`
}

type Stack struct {
	ID         int      `json:"Id" yaml:"id"`
	Name       string   `json:"Name" yaml:"name"`
	EndpointID int      `json:"EndpointId" yaml:"endpointId"`
	Type       int      `json:"Type,omitempty" yaml:"type,omitempty"`
	Status     int      `json:"Status,omitempty" yaml:"status,omitempty"`
	Env        []EnvVar `json:"Env,omitempty" yaml:"env,omitempty"`
}

type StackFile struct {
	StackFileContent string `json:"StackFileContent"`
}

type UpdateStackRequest struct {
	StackFileContent string   `json:"StackFileContent"`
	Env              []EnvVar `json:"Env"`
	Prune            bool     `json:"Prune"`
}

// UpdateStackResponse is what the update endpoint answered. The body is kept
// raw because the caller decides how to present it.
type UpdateStackResponse struct {
	StatusCode int
	Body       []byte
}

func (r *UpdateStackResponse) IsSuccess() bool {
	return r.StatusCode > 199 && r.StatusCode < 300
}

// DeploymentSummary is the outcome of a single deploy run, for humans and machines.
type DeploymentSummary struct {
	Stack         string `json:"Stack" yaml:"stack"`
	Service       string `json:"Service" yaml:"service"`
	PreviousImage string `json:"PreviousImage" yaml:"previousImage"`
	NewImage      string `json:"NewImage" yaml:"newImage"`
	StatusCode    int    `json:"StatusCode,omitempty" yaml:"statusCode,omitempty"`
	DryRun        bool   `json:"DryRun,omitempty" yaml:"dryRun,omitempty"`
}

// FindStack returns the first stack whose name matches exactly.
func FindStack(stacks []Stack, name string) (Stack, error) {
	for _, s := range stacks {
		if s.Name == name {
			return s, nil
		}
	}

	return Stack{}, &StackNotFoundError{StackName: name}
}
