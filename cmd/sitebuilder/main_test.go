package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommandsEndToEnd(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SITEBUILDER_CONFIG", filepath.Join(dir, "config.yaml"))

	out, err := runCLI(t, "bundle", "create", "-n",
		"--entity-type", "node", "--bundle-name", "event", "--grant-role", "editor")
	require.NoError(t, err)
	assert.Contains(t, out, `Bundle "Event" created.`)

	out, err = runCLI(t, "field", "create", "-n",
		"--entity-type", "node", "--bundle-name", "event",
		"--field-type", "string", "--field-name", "field_venue")
	require.NoError(t, err)
	assert.Contains(t, out, `Field "field_venue" created on "node" "event".`)

	out, err = runCLI(t, "field", "list", "-n", "--entity-type", "node", "--bundle-name", "event")
	require.NoError(t, err)
	assert.Contains(t, out, "field_venue")
	assert.Contains(t, out, "Venue")

	out, err = runCLI(t, "responsive-image", "create", "-n", "--id", "hero", "--width", "800", "--height", "450")
	require.NoError(t, err)
	assert.Contains(t, out, `Responsive image style "Hero" (hero) created.`)

	out, err = runCLI(t, "image-style", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "hero_400")

	syncDir := filepath.Join(dir, "sync")
	_, err = runCLI(t, "config", "export", "--dir", syncDir)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(syncDir, "field.field.node.event.field_venue.yml"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(syncDir, "user.role.editor.yml"))
	assert.NoError(t, err)

	out, err = runCLI(t, "bundle", "delete", "-n", "--entity-type", "node", "--bundle-name", "event")
	require.NoError(t, err)
	assert.Contains(t, out, `Bundle "event" deleted.`)

	out, err = runCLI(t, "bundle", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "event")
}

func TestConfigSetAndGet(t *testing.T) {
	t.Setenv("SITEBUILDER_CONFIG", filepath.Join(t.TempDir(), "config.yaml"))

	_, err := runCLI(t, "config", "set", "server.http_port", "9090")
	require.NoError(t, err)

	out, err := runCLI(t, "config", "get", "server.http_port")
	require.NoError(t, err)
	assert.Equal(t, "9090\n", out)
}

func TestFlatten(t *testing.T) {
	flat := flatten("", map[string]interface{}{
		"server": map[string]interface{}{"http_port": "8080"},
		"log":    map[string]interface{}{"level": "warn"},
		"top":    1,
	})

	assert.Equal(t, map[string]interface{}{
		"server.http_port": "8080",
		"log.level":        "warn",
		"top":              1,
	}, flat)
}
