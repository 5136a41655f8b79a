package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/mcp-google-workspace/internal/config"
	"github.com/teemow/mcp-google-workspace/internal/dispatch"
)

// setupEnv points the configuration at a temporary client secret and token.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	secret := filepath.Join(dir, "client_secret.json")
	body := `{"installed":{"client_id":"cli-client","client_secret":"s",` +
		`"auth_uri":"https://accounts.example.com/auth","token_uri":"https://oauth.example.com/token","redirect_uris":["http://localhost"]}}`
	require.NoError(t, os.WriteFile(secret, []byte(body), 0600))

	t.Setenv(config.EnvClientSecretPath, secret)
	t.Setenv(config.EnvFolderID, "folder-1")
	t.Setenv(config.EnvTokenPath, filepath.Join(dir, "token.json"))
	t.Setenv(config.EnvRetryMaxAttempts, "1")
	return dir
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := &cobra.Command{Use: "mcp-google-workspace", SilenceUsage: true, SilenceErrors: true}
	root.AddCommand(newRunCmd(), newAuthCmd(), newVersionCmd())

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCatalog(t *testing.T) {
	descriptors, err := catalog()
	require.NoError(t, err)

	names := make(map[string]bool, len(descriptors))
	for _, d := range descriptors {
		assert.False(t, names[d.Name], "duplicate command %s", d.Name)
		names[d.Name] = true
	}
	for _, name := range []string{"list_files", "get_sheet_data", "create_document", "add_slide_to_presentation", "get_auth_url", "run_batch"} {
		assert.True(t, names[name], "missing command %s", name)
	}
}

func TestRunCmd_SubcommandFlags(t *testing.T) {
	run := newRunCmd()

	sub, _, err := run.Find([]string{"batch_update_cells"})
	require.NoError(t, err)
	assert.Equal(t, "batch_update_cells", sub.Name())
	for _, flag := range []string{"sheet_name", "range", "values", "merge_cells", "spreadsheet_id"} {
		assert.NotNil(t, sub.Flags().Lookup(flag), "missing flag --%s", flag)
	}
	assert.Equal(t, "true", sub.Flags().Lookup("merge_cells").NoOptDefVal)
	assert.Empty(t, sub.Flags().Lookup("range").NoOptDefVal)
}

func TestRun_InvalidArgument(t *testing.T) {
	setupEnv(t)

	stdout, stderr, err := execute(t, "run", "rename_file", "--new_name", "x")
	require.ErrorIs(t, err, errCommandFailed)
	assert.Empty(t, stdout)

	var desc dispatch.ErrorDescriptor
	require.NoError(t, json.Unmarshal([]byte(stderr), &desc))
	assert.Equal(t, dispatch.KindInvalidArgument, desc.Kind)
	assert.Equal(t, "file_id", desc.Param)
}

func TestRun_CoercionErrorIsReported(t *testing.T) {
	setupEnv(t)

	_, stderr, err := execute(t, "run", "delete_rows", "--sheet_name", "Data", "--start_index", "two")
	require.ErrorIs(t, err, errCommandFailed)

	var desc dispatch.ErrorDescriptor
	require.NoError(t, json.Unmarshal([]byte(stderr), &desc))
	assert.Equal(t, dispatch.KindInvalidArgument, desc.Kind)
	assert.Equal(t, "start_index", desc.Param)
}

func TestRun_UnknownCommand(t *testing.T) {
	setupEnv(t)

	_, stderr, err := execute(t, "run", "no_such_command")
	require.ErrorIs(t, err, errCommandFailed)

	var desc dispatch.ErrorDescriptor
	require.NoError(t, json.Unmarshal([]byte(stderr), &desc))
	assert.Equal(t, dispatch.KindUnknownCommand, desc.Kind)
}

func TestRun_Success(t *testing.T) {
	setupEnv(t)

	stdout, stderr, err := execute(t, "run", "get_auth_url")
	require.NoError(t, err)
	assert.Empty(t, stderr)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &payload))
	assert.Contains(t, payload["authUrl"], "client_id=cli-client")
	assert.Equal(t, false, payload["tokenValid"])
}

func TestRun_MissingConfiguration(t *testing.T) {
	setupEnv(t)
	t.Setenv(config.EnvFolderID, "")

	stdout, stderr, err := execute(t, "run", "list_files")
	require.ErrorIs(t, err, errCommandFailed)
	assert.Empty(t, stdout)

	var desc dispatch.ErrorDescriptor
	require.NoError(t, json.Unmarshal([]byte(stderr), &desc))
	assert.Equal(t, dispatch.KindAuthentication, desc.Kind)
	assert.Contains(t, desc.Message, config.EnvFolderID)
}

func TestRun_InvalidConfiguration(t *testing.T) {
	setupEnv(t)
	t.Setenv(config.EnvRetryMaxAttempts, "0")

	_, stderr, err := execute(t, "run", "list_files")
	require.ErrorIs(t, err, errCommandFailed)

	var desc dispatch.ErrorDescriptor
	require.NoError(t, json.Unmarshal([]byte(stderr), &desc))
	assert.Equal(t, dispatch.KindInternal, desc.Kind)
	assert.Contains(t, desc.Message, config.EnvRetryMaxAttempts)
}

func TestAuth_PrintsConsentURL(t *testing.T) {
	setupEnv(t)

	stdout, _, err := execute(t, "auth")
	require.NoError(t, err)
	assert.Contains(t, stdout, "client_id=cli-client")
	assert.Contains(t, stdout, "auth --code")
}

func TestVersion(t *testing.T) {
	SetVersion("1.2.3")
	t.Cleanup(func() { SetVersion("dev") })

	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "mcp-google-workspace version 1.2.3\n", stdout)
}

func TestWriteResponse(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := writeResponse(&dispatch.Response{Success: true, Payload: map[string]int{"rows": 2}}, &stdout, &stderr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rows": 2}`, stdout.String())
	assert.Empty(t, stderr.String())

	stdout.Reset()
	err = writeResponse(&dispatch.Response{Error: &dispatch.ErrorDescriptor{Kind: dispatch.KindVendorAPI, Message: "boom", StatusCode: 500, Retryable: true}}, &stdout, &stderr)
	require.ErrorIs(t, err, errCommandFailed)
	assert.Empty(t, stdout.String())
	assert.JSONEq(t, `{"kind":"vendor_api","message":"boom","retryable":true,"statusCode":500}`, stderr.String())
}
