package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsQuestionMirrorsShape(t *testing.T) {
	settings := map[string]any{
		"alt_field": true,
		"default_image": map[string]any{
			"alt":   "",
			"width": 0,
		},
		"handler_settings": map[string]any{},
		"max_length":       255,
		"tags":             []any{"a", "b"},
	}

	// Keys are asked in sorted order: alt_field, default_image.alt,
	// default_image.width, max_length.
	c, out := newTestIO("false\nA cat\n640\n\n")

	values, err := c.SettingsQuestion(settings)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"alt_field": false,
		"default_image": map[string]any{
			"alt":   "A cat",
			"width": 640,
		},
		"handler_settings": map[string]any{},
		"max_length":       255,
		"tags":             []any{"a", "b"},
	}, values)

	output := out.String()
	assert.Contains(t, output, `Recursing into "default_image" setting hash.`)
	assert.Contains(t, output, `"default_image" setting hash recursing end.`)
	assert.Contains(t, output, `Value for "max_length" setting`)
	assert.NotContains(t, output, `Recursing into "handler_settings"`)
}

func TestSettingsQuestionRepromptsOnWrongKind(t *testing.T) {
	c, out := newTestIO("lots\n128\n")

	values, err := c.SettingsQuestion(map[string]any{"max_length": 255})
	require.NoError(t, err)
	assert.Equal(t, 128, values["max_length"])
	assert.Contains(t, out.String(), `Value for "max_length" must be a int`)
}

func TestSettingsQuestionNonInteractiveKeepsDefaults(t *testing.T) {
	settings := map[string]any{
		"on_label":  "On",
		"unsigned":  false,
		"precision": 10,
		"nested":    map[string]any{"scale": 2},
	}
	c := New(strings.NewReader(""), &bytes.Buffer{}, false)

	values, err := c.SettingsQuestion(settings)
	require.NoError(t, err)
	assert.Equal(t, settings, values)
}

func TestSettingsQuestionDoesNotMutateInput(t *testing.T) {
	nested := map[string]any{"alt": "default"}
	settings := map[string]any{"default_image": nested}
	c, _ := newTestIO("changed\n")

	_, err := c.SettingsQuestion(settings)
	require.NoError(t, err)
	assert.Equal(t, "default", nested["alt"])
}
