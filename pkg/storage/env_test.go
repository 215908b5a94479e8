package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holps-7/striko/pkg/model"
)

func TestEnvironmentStore_SaveGetList(t *testing.T) {
	ctx := context.Background()
	store := NewEnvironmentStore(t.TempDir(), discardLogger())

	require.NoError(t, store.Save(ctx, model.Environment{ID: "e2", Name: "prod", Variables: map[string]string{"BASE": "https://api"}}))
	require.NoError(t, store.Save(ctx, model.Environment{ID: "e1", Name: "dev"}))

	got, found, err := store.Get(ctx, "e2")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "https://api", got.Variables["BASE"])

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "dev", list[0].Name)
	assert.NotNil(t, list[0].Variables)
}

func TestEnvironmentStore_Find(t *testing.T) {
	ctx := context.Background()
	store := NewEnvironmentStore(t.TempDir(), discardLogger())
	require.NoError(t, store.Save(ctx, model.Environment{ID: "e1", Name: "Staging"}))

	env, found, err := store.Find(ctx, "e1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Staging", env.Name)

	env, found, err = store.Find(ctx, "staging")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "e1", env.ID)

	_, found, err = store.Find(ctx, "prod/eu")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestEnvironmentStore_Import(t *testing.T) {
	t.Setenv("STRIKO_TEST_TOKEN", "s3cret")

	src := filepath.Join(t.TempDir(), "staging.yaml")
	content := "BASE_URL: https://staging.example.com\nTOKEN: \"{{env:STRIKO_TEST_TOKEN}}\"\nMISSING: \"{{env:STRIKO_TEST_UNSET_VAR}}\"\n"
	require.NoError(t, os.WriteFile(src, []byte(content), 0644))

	ctx := context.Background()
	store := NewEnvironmentStore(t.TempDir(), discardLogger())

	env, err := store.Import(ctx, src, "")
	require.NoError(t, err)
	assert.NotEmpty(t, env.ID)
	assert.Equal(t, "staging", env.Name)
	assert.Equal(t, map[string]string{
		"BASE_URL": "https://staging.example.com",
		"TOKEN":    "s3cret",
		"MISSING":  "{{env:STRIKO_TEST_UNSET_VAR}}",
	}, env.Variables)

	stored, found, err := store.Get(ctx, env.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, env, stored)
}

func TestEnvironmentStore_ImportRejectsNestedYAML(t *testing.T) {
	src := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(src, []byte("a:\n  b: c\n"), 0644))

	_, err := NewEnvironmentStore(t.TempDir(), discardLogger()).Import(context.Background(), src, "x")
	assert.Error(t, err)
}

func TestLoadRequestFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "get-user.yaml")
	yamlSrc := `name: Get user
url: https://api.example.com/users
method: get
headers:
  Accept: application/json
params:
  z: "1"
  a: "2"
  z2: "3"
body:
  active: true
auth:
  type: basic
  credentials:
    username: u
    password: p
`
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlSrc), 0644))

	req, err := LoadRequestFile(yamlPath)
	require.NoError(t, err)
	assert.NotEmpty(t, req.ID)
	assert.Equal(t, "Get user", req.Name)
	assert.Equal(t, "get", req.Method)
	assert.Equal(t, model.KeyValues{{Key: "z", Value: "1"}, {Key: "a", Value: "2"}, {Key: "z2", Value: "3"}}, req.Params)
	assert.Equal(t, map[string]any{"active": true}, req.Body)
	assert.Equal(t, model.BasicAuth{Username: "u", Password: "p"}, req.Auth)

	jsonPath := filepath.Join(dir, "ping.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"id":"r1","url":"https://x.test"}`), 0644))

	req, err = LoadRequestFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "r1", req.ID)
	assert.Equal(t, model.MethodGet, req.Method)
	assert.NotNil(t, req.Headers)

	_, err = LoadRequestFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
