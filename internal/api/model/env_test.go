// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

//go:build unit

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvVar(t *testing.T) {
	t.Run("value containing equal signs", func(t *testing.T) {
		e, err := ParseEnvVar("FOO=bar=baz")
		require.NoError(t, err)
		assert.Equal(t, EnvVar{Name: "FOO", Value: "bar=baz"}, e)
	})

	t.Run("empty value", func(t *testing.T) {
		e, err := ParseEnvVar("FOO=")
		require.NoError(t, err)
		assert.Equal(t, EnvVar{Name: "FOO", Value: ""}, e)
	})

	t.Run("no separator", func(t *testing.T) {
		e, err := ParseEnvVar("FOO")
		require.NoError(t, err)
		assert.Equal(t, EnvVar{Name: "FOO", Value: ""}, e)
	})

	t.Run("value with commas is kept whole", func(t *testing.T) {
		e, err := ParseEnvVar("HOSTS=a,b,c")
		require.NoError(t, err)
		assert.Equal(t, "a,b,c", e.Value)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := ParseEnvVar("=value")
		assert.Error(t, err)
	})
}

func TestParseEnvVars(t *testing.T) {
	env, err := ParseEnvVars([]string{"A=1", "B=x=y"})
	require.NoError(t, err)
	assert.Equal(t, []EnvVar{{Name: "A", Value: "1"}, {Name: "B", Value: "x=y"}}, env)

	_, err = ParseEnvVars([]string{"A=1", "=2"})
	assert.Error(t, err)
}

func TestFindStack(t *testing.T) {
	stacks := []Stack{
		{ID: 1, Name: "web-staging", EndpointID: 2},
		{ID: 3, Name: "web", EndpointID: 4},
		{ID: 5, Name: "web", EndpointID: 6},
	}

	t.Run("first exact match wins", func(t *testing.T) {
		s, err := FindStack(stacks, "web")
		require.NoError(t, err)
		assert.Equal(t, 3, s.ID)
		assert.Equal(t, 4, s.EndpointID)
	})

	t.Run("no substring matches", func(t *testing.T) {
		_, err := FindStack(stacks, "staging")
		var notFound *StackNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "staging", notFound.StackName)
		assert.Equal(t, `can't find stack "staging" in Portainer`, err.Error())
	})
}

func TestStatusError(t *testing.T) {
	err := &StatusError{Operation: OperationListStacks, StatusCode: 403}
	assert.Equal(t, "HTTP 403 error while trying to list stacks", err.Error())

	err.Response = &ErrorResponse{Message: "Access denied", Details: "Unauthorized"}
	assert.Equal(t, "HTTP 403 error while trying to list stacks: Access denied: Unauthorized", err.Error())
}
