// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package model

import (
	"fmt"
	"strings"
)

// EnvVar is a stack environment variable as the Portainer API expects it
type EnvVar struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// ParseEnvVar splits a KEY=VALUE token on the first '='. The value may itself
// contain '=' and may be empty.
func ParseEnvVar(token string) (EnvVar, error) {
	name, value, _ := strings.Cut(token, "=")
	if strings.TrimSpace(name) == "" {
		return EnvVar{}, fmt.Errorf("invalid environment variable %q: expected KEY=VALUE", token)
	}

	return EnvVar{Name: name, Value: value}, nil
}

func ParseEnvVars(tokens []string) ([]EnvVar, error) {
	env := make([]EnvVar, 0, len(tokens))
	for _, token := range tokens {
		e, err := ParseEnvVar(token)
		if err != nil {
			return nil, err
		}
		env = append(env, e)
	}

	return env, nil
}
