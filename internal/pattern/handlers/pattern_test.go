package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pattern-mapper/internal/pattern/loader"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApp(t *testing.T) (*fiber.App, *PatternHandler) {
	t.Helper()
	logger := log.New(&bytes.Buffer{}, "", 0)
	pattern := NewPatternHandler(loader.NewBuilder(logger), logger)
	app := fiber.New()
	Register(app, pattern, NewHealthHandler(pattern))
	return app, pattern
}

func do(t *testing.T, app *fiber.App, method, path, contentType, body string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(data, &out), string(data))
	return resp, out
}

const patternJSON = `{
	"settings": {
		"autosides": false,
		"groups": [{"groupname": "right", "xmin": 0}],
		"defaultshapestate": {"pathcolor": "0 0 0 1"},
		"groupshapestates": [{"group": "right", "pathcolor": "1 0 0 1"}]
	},
	"shapes": [
		{"shapename": "a", "parentpath": "svg", "center": "-1 0"},
		{"shapename": "b", "parentpath": "svg", "center": "1 0"}
	]
}`

func TestBuildPattern(t *testing.T) {
	app, pattern := testApp(t)

	resp, out := do(t, app, fiber.MethodPost, "/pattern", fiber.MIMEApplicationJSON, patternJSON)

	require.Equal(t, 200, resp.StatusCode, out)
	loadID := resp.Header.Get("X-Load-Id")
	assert.Len(t, loadID, 36)
	assert.Equal(t, loadID, out["loadid"])
	assert.EqualValues(t, 1, pattern.Loads())

	pd := out["pattern"].(map[string]any)
	groups := pd["groups"].([]any)
	var names []string
	for _, g := range groups {
		names = append(names, g.(map[string]any)["groupname"].(string))
	}
	assert.Contains(t, names, "right")
	assert.Contains(t, names, "svg")

	shapeStates := out["shapestates"].([]any)
	require.Len(t, shapeStates, 2)
	assert.Equal(t, "0 0 0 1", shapeStates[0].(map[string]any)["pathcolor"])
	assert.Equal(t, "1 0 0 1", shapeStates[1].(map[string]any)["pathcolor"])
}

func TestBuildPatternYAML(t *testing.T) {
	app, _ := testApp(t)
	body := `
settings:
  autogroup: false
  autosides: false
  groups:
    - groupname: all
      shapeindices: 0 1
shapes:
  - center: 0 0
  - center: 1 1
`
	resp, out := do(t, app, fiber.MethodPost, "/pattern", "application/yaml", body)

	require.Equal(t, 200, resp.StatusCode, out)
	groups := out["pattern"].(map[string]any)["groups"].([]any)
	require.Len(t, groups, 1)
	assert.Equal(t, "0 1", groups[0].(map[string]any)["shapeindices"])
}

func TestBuildPatternTOML(t *testing.T) {
	app, _ := testApp(t)
	body := `
[settings]
autogroup = false
autosides = false

[[settings.groups]]
groupname = "left"
xmax = 0

[[shapes]]
center = "-1 0"

[[shapes]]
center = "1 0"
`
	resp, out := do(t, app, fiber.MethodPost, "/pattern", "application/toml", body)

	require.Equal(t, 200, resp.StatusCode, out)
	groups := out["pattern"].(map[string]any)["groups"].([]any)
	require.Len(t, groups, 1)
	assert.Equal(t, "0", groups[0].(map[string]any)["shapeindices"])
}

func TestBuildPatternBadRequests(t *testing.T) {
	app, pattern := testApp(t)
	cases := []struct {
		name        string
		contentType string
		body        string
	}{
		{"NotJSON", fiber.MIMEApplicationJSON, `{`},
		{"BadYAML", "application/yaml", "a: [1"},
		{"BadSettings", fiber.MIMEApplicationJSON, `{"settings": {"mergedups": "yes"}}`},
		{"NullShape", fiber.MIMEApplicationJSON, `{"shapes": [null]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, out := do(t, app, fiber.MethodPost, "/pattern", tc.contentType, tc.body)
			assert.Equal(t, 400, resp.StatusCode)
			assert.NotEmpty(t, out["error"])
		})
	}
	assert.EqualValues(t, 0, pattern.Loads())
}

func TestCheckSettings(t *testing.T) {
	app, _ := testApp(t)
	body := `{"groups": [
		{"groupname": "box", "xmin": 0},
		{"groupname": "both", "xmin": 0, "paths": "a"},
		{"groupname": "seq", "paths": "a", "sequenceby": "nope"}
	]}`

	resp, out := do(t, app, fiber.MethodPost, "/pattern/settings/check", fiber.MIMEApplicationJSON, body)

	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, false, out["valid"])
	specs := out["specs"].([]any)
	require.Len(t, specs, 3)
	first := specs[0].(map[string]any)
	assert.Equal(t, "boxbound", first["kind"])
	assert.Nil(t, first["error"])
	assert.Equal(t, "invalid", specs[1].(map[string]any)["kind"])
	assert.Equal(t, "both", specs[1].(map[string]any)["groupname"])
	assert.NotEmpty(t, specs[2].(map[string]any)["error"])
}

func TestHealth(t *testing.T) {
	app, _ := testApp(t)

	resp, out := do(t, app, fiber.MethodGet, "/health/live", "", "")
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "alive", out["status"])

	resp, out = do(t, app, fiber.MethodGet, "/health/ready", "", "")
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "ready", out["status"])
	assert.EqualValues(t, 0, out["loads"])
}
