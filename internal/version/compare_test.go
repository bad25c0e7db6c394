package version

import (
	"testing"

	"github.com/rxtech-lab/argo-sweep/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckConfigCompatibility(t *testing.T) {
	tests := []struct {
		name          string
		engine        string
		config        string
		expectError   bool
		errorContains string
	}{
		{name: "exact match", engine: "1.2.0", config: "1.2.0"},
		{name: "patch differs", engine: "1.2.1", config: "1.2.7"},
		{name: "v prefix", engine: "v1.2.0", config: "1.2.3"},
		{name: "prerelease", engine: "1.2.0-alpha", config: "1.2.0"},
		{name: "empty config", engine: "1.2.0", config: ""},
		{name: "engine main", engine: "main", config: "9.9.9"},
		{name: "config main", engine: "1.2.0", config: "main"},
		{name: "minor differs", engine: "1.3.0", config: "1.2.0", expectError: true, errorContains: "minor version mismatch"},
		{name: "major differs", engine: "2.0.0", config: "1.2.0", expectError: true, errorContains: "major version mismatch"},
		{name: "invalid engine", engine: "nope", config: "1.2.0", expectError: true, errorContains: "invalid engine version"},
		{name: "invalid config", engine: "1.2.0", config: "nope", expectError: true, errorContains: "invalid config version"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckConfigCompatibility(tc.engine, tc.config)
			if !tc.expectError {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errorContains)
			assert.True(t, errors.IsConfigError(err))
		})
	}
}

func TestGetVersion(t *testing.T) {
	original := Version
	defer func() { Version = original }()

	Version = "v2.0.0"
	assert.Equal(t, "v2.0.0", GetVersion())
}
