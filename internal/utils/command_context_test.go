package utils_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fleetops/fleet/internal/utils"
)

func TestCommandContextAccessorRoundTripsConfigurationFilePath(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	executionContext := accessor.WithConfigurationFilePath(context.Background(), "/tmp/fleet.yaml")
	configurationFilePath, pathAvailable := accessor.ConfigurationFilePath(executionContext)
	require.True(testInstance, pathAvailable)
	require.Equal(testInstance, "/tmp/fleet.yaml", configurationFilePath)
}

func TestCommandContextAccessorHandlesMissingValues(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	_, pathAvailable := accessor.ConfigurationFilePath(context.Background())
	require.False(testInstance, pathAvailable)

	_, nilContextAvailable := accessor.ConfigurationFilePath(nil)
	require.False(testInstance, nilContextAvailable)
}

func TestCommandContextAccessorToleratesNilParentContext(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	executionContext := accessor.WithConfigurationFilePath(nil, "fleet.yaml")
	configurationFilePath, pathAvailable := accessor.ConfigurationFilePath(executionContext)
	require.True(testInstance, pathAvailable)
	require.Equal(testInstance, "fleet.yaml", configurationFilePath)
}
