package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Session Command Tests

func TestSessionCmd_Use(t *testing.T) {
	assert.Equal(t, "session", sessionCmd.Use)
}

func TestSessionCmd_Short(t *testing.T) {
	assert.Equal(t, "Manage chat sessions", sessionCmd.Short)
}

func TestSessionCmd_HasSubcommands(t *testing.T) {
	commands := sessionCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "create")
	assert.Contains(t, commandNames, "list")
	assert.Contains(t, commandNames, "show")
	assert.Contains(t, commandNames, "destroy")
}

// Session Create Tests

func TestSessionCreateCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"session", "create"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Created session sess-new")
}

func TestSessionCreateCmd_ErrorsWithoutServices(t *testing.T) {
	oldSessionService := sessionService
	sessionService = nil
	defer func() { sessionService = oldSessionService }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"session", "create"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

// Session List Tests

func TestSessionListCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"session", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "sess-1")
	assert.Contains(t, buf.String(), "ready")
}

func TestSessionListCmd_EmptyListShowsHint(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	sessionService.(*mockSessionService).sessions = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"session", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No sessions")
}

// Session Show Tests

func TestSessionShowCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"session", "show"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSessionShowCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"session", "show", "sess-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Session:   sess-1")
	assert.Contains(t, buf.String(), "Embedding: test-embed")
	assert.Contains(t, buf.String(), "Vectors:   12")
	assert.Contains(t, buf.String(), "report.txt")
}

// Session Destroy Tests

func TestSessionDestroyCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"session", "destroy", "sess-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Destroyed session sess-1")
	assert.Equal(t, []string{"sess-1"}, sessionService.(*mockSessionService).destroyed)
}
