package develop_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/log2timeline/devtools/internal/develop"
)

func environmentLookup(values map[string]string) develop.EnvironmentLookup {
	return func(name string) (string, bool) {
		value, found := values[name]
		return value, found
	}
}

func executeDevelopCommand(testInstance *testing.T, builder develop.CommandBuilder, arguments ...string) (string, error) {
	testInstance.Helper()
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	var output bytes.Buffer
	command.SetOut(&output)
	command.SetErr(&output)
	command.SetContext(context.Background())
	command.SetArgs(arguments)
	executionError := command.Execute()
	return output.String(), executionError
}

func TestCommandBuilderRunsActions(testInstance *testing.T) {
	testCases := []struct {
		name            string
		action          string
		configuration   develop.Configuration
		expectedCommand []string
	}{
		{
			name:            "test",
			action:          "test",
			expectedCommand: []string{"python", "run_tests.py"},
		},
		{
			name:            "check_dependencies",
			action:          "check_dependencies",
			expectedCommand: []string{"python", "utils/check_dependencies.py"},
		},
		{
			name:            "configured_python",
			action:          "TEST",
			configuration:   develop.Configuration{PythonExecutable: "python3", ImageName: "plaso-dev:py3"},
			expectedCommand: []string{"python3", "run_tests.py"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			engine := &fakeEngine{logs: "OK\n"}
			builder := develop.CommandBuilder{
				Engine:            engine,
				EnvironmentLookup: environmentLookup(map[string]string{"PLASO_SRC": "/src/plaso"}),
				ConfigurationProvider: func() develop.Configuration {
					return testCase.configuration
				},
			}

			output, executionError := executeDevelopCommand(testInstance, builder, testCase.action)
			require.NoError(testInstance, executionError)
			require.Len(testInstance, engine.runRequests, 1)
			require.Equal(testInstance, testCase.expectedCommand, engine.runRequests[0].Command)
			require.Equal(testInstance, []string{"/src/plaso:/root/plaso:rw"}, engine.runRequests[0].Volumes)
			require.Contains(testInstance, output, "OK\n")
		})
	}
}

func TestCommandBuilderBuild(testInstance *testing.T) {
	testInstance.Setenv("TMPDIR", testInstance.TempDir())
	sourceDirectory := newSourceTree(testInstance)
	engine := &fakeEngine{buildOutput: []string{"Step 1/2 : FROM ubuntu:bionic", " ---> 4c108a37151f"}}
	builder := develop.CommandBuilder{
		Engine:            engine,
		EnvironmentLookup: environmentLookup(map[string]string{"DEVTOOLS_SOURCE": sourceDirectory}),
		ConfigurationProvider: func() develop.Configuration {
			return develop.Configuration{SourceEnvironmentVariable: "DEVTOOLS_SOURCE"}
		},
	}

	output, executionError := executeDevelopCommand(testInstance, builder, "build", "-v", "--nocache")
	require.NoError(testInstance, executionError)
	require.Len(testInstance, engine.buildRequests, 1)
	require.True(testInstance, engine.buildRequests[0].NoCache)
	require.Equal(testInstance, "plaso-dev-environment", engine.buildRequests[0].Tag)
	require.Contains(testInstance, output, "---> 4c108a37151f\n")
	require.Contains(testInstance, output, "Built image with SHA: sha256:5d1f0c6d")
}

func TestCommandBuilderStart(testInstance *testing.T) {
	engine := &fakeEngine{containerNames: map[string]string{"f00dcafe": "quirky_turing"}}
	builder := develop.CommandBuilder{
		Engine:            engine,
		EnvironmentLookup: environmentLookup(map[string]string{"PLASO_SRC": "/src/plaso"}),
		TerminalSize: func() (int, int, error) {
			return 100, 30, nil
		},
	}

	output, executionError := executeDevelopCommand(testInstance, builder, "start")
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, []string{"COLUMNS=100", "ROWS=30"}, engine.runRequests[0].Environment)
	require.Contains(testInstance, output, "docker exec -it quirky_turing /bin/bash")
}

func TestCommandBuilderFailures(testInstance *testing.T) {
	sourceLookup := environmentLookup(map[string]string{"PLASO_SRC": "/src/plaso"})

	testCases := []struct {
		name          string
		builder       develop.CommandBuilder
		arguments     []string
		expectedError string
		expectedIs    error
	}{
		{
			name:          "missing_action",
			builder:       develop.CommandBuilder{Engine: &fakeEngine{}, EnvironmentLookup: sourceLookup},
			arguments:     []string{},
			expectedError: "develop requires exactly one action: `<build|check_dependencies|test|start>`",
		},
		{
			name:          "unsupported_action",
			builder:       develop.CommandBuilder{Engine: &fakeEngine{}, EnvironmentLookup: sourceLookup},
			arguments:     []string{"deploy"},
			expectedError: "unsupported action \"deploy\": `<build|check_dependencies|test|start>`",
		},
		{
			name:          "missing_source",
			builder:       develop.CommandBuilder{Engine: &fakeEngine{}, EnvironmentLookup: environmentLookup(nil)},
			arguments:     []string{"test"},
			expectedError: "Please set the PLASO_SRC environment variable to the absolute path to your Plaso source tree",
		},
		{
			name:       "engine_unavailable",
			builder:    develop.CommandBuilder{Engine: &fakeEngine{infoError: errors.New("connection refused")}, EnvironmentLookup: sourceLookup},
			arguments:  []string{"test"},
			expectedIs: develop.ErrEngineUnavailable,
		},
		{
			name: "invalid_image",
			builder: develop.CommandBuilder{
				Engine:            &fakeEngine{},
				EnvironmentLookup: sourceLookup,
				ConfigurationProvider: func() develop.Configuration {
					return develop.Configuration{ImageName: "Plaso-Dev"}
				},
			},
			arguments:     []string{"test"},
			expectedError: "invalid image name \"Plaso-Dev\"",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			_, executionError := executeDevelopCommand(testInstance, testCase.builder, testCase.arguments...)
			require.Error(testInstance, executionError)
			if testCase.expectedIs != nil {
				require.ErrorIs(testInstance, executionError, testCase.expectedIs)
				return
			}
			require.Contains(testInstance, executionError.Error(), testCase.expectedError)
		})
	}
}

func TestConfigurationSanitize(testInstance *testing.T) {
	sanitized := develop.Configuration{ImageName: "  custom-image  ", Dockerfile: " /tmp/dockerfile "}.Sanitize()
	require.Equal(testInstance, develop.Configuration{
		SourceEnvironmentVariable: "PLASO_SRC",
		ImageName:                 "custom-image",
		Dockerfile:                "/tmp/dockerfile",
		InstallerScript:           "config/linux/gift_ppa_install.sh",
		ContainerSourceDirectory:  "/root/plaso",
		PythonExecutable:          "python",
	}, sanitized)
	require.Equal(testInstance, []string{"build", "check_dependencies", "test", "start"}, develop.SupportedActions())
}
