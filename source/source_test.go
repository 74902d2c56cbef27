package source_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/typeconv"
	"github.com/reoring/typeconv/source"
)

func issuesOf(t *testing.T, err error) typeconv.Issues {
	t.Helper()
	iss, ok := typeconv.AsIssues(err)
	require.True(t, ok, "expected Issues, got %v", err)
	require.NotEmpty(t, iss)
	return iss
}

func TestJSON_NativeNumbers(t *testing.T) {
	v, err := source.JSON([]byte(`{"a": 1, "b": 1.5, "c": [true, null, "x"], "d": 1e3}`), source.Options{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": 1,
		"b": 1.5,
		"c": []any{true, nil, "x"},
		"d": 1000.0,
	}, v)
}

func TestJSON_NumberMode(t *testing.T) {
	v, err := source.JSON([]byte(`[1, 2.5]`), source.Options{Numbers: source.NumberJSON})
	require.NoError(t, err)
	assert.Equal(t, []any{json.Number("1"), json.Number("2.5")}, v)
}

func TestJSON_DuplicateKeys(t *testing.T) {
	_, err := source.JSON([]byte(`{"x": {"k": 1, "k": 2}}`), source.Options{})
	iss := issuesOf(t, err)
	assert.Equal(t, typeconv.CodeDuplicateKey, iss[0].Code)
	assert.Equal(t, "/x/k", iss[0].Path)
	assert.Equal(t, `duplicate key "k"`, iss[0].Message)
	assert.True(t, errors.Is(err, source.ErrDuplicateKey))

	var warned []typeconv.Issue
	v, err := source.JSON([]byte(`{"a": 1, "a": 2}`), source.Options{
		OnDuplicate: source.DupWarn,
		Warn:        func(it typeconv.Issue) { warned = append(warned, it) },
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 2}, v)
	require.Len(t, warned, 1)
	assert.Equal(t, "/a", warned[0].Path)

	v, err = source.JSON([]byte(`{"a": 1, "a": 2}`), source.Options{OnDuplicate: source.DupIgnore})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 2}, v)
}

func TestJSON_MaxDepth(t *testing.T) {
	_, err := source.JSON([]byte(`[[[1]]]`), source.Options{MaxDepth: 2})
	iss := issuesOf(t, err)
	assert.Equal(t, typeconv.CodeParseError, iss[0].Code)
	assert.Equal(t, "/0/0", iss[0].Path)
	assert.True(t, errors.Is(err, source.ErrMaxDepth))

	_, err = source.JSON([]byte(`[[[1]]]`), source.Options{MaxDepth: -1})
	require.NoError(t, err)
}

func TestJSON_Malformed(t *testing.T) {
	for _, in := range []string{`{"a":`, `{} 1`, ``} {
		_, err := source.JSON([]byte(in), source.Options{})
		iss := issuesOf(t, err)
		assert.Equal(t, typeconv.CodeParseError, iss[0].Code, "input %q", in)
		assert.Equal(t, "/", iss[0].Path)
	}
}

func TestYAML(t *testing.T) {
	v, err := source.YAML([]byte("a: 1\nb: [x, 2.5]\nc: ~\nbase: &b {x: 1}\nother: *b\n"), source.Options{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a":     1,
		"b":     []any{"x", 2.5},
		"c":     nil,
		"base":  map[string]any{"x": 1},
		"other": map[string]any{"x": 1},
	}, v)

	v, err = source.YAML(nil, source.Options{})
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestYAML_Errors(t *testing.T) {
	_, err := source.YAML([]byte("a: 1\nb:\n  c: 1\n  c: 2\n"), source.Options{})
	iss := issuesOf(t, err)
	assert.Equal(t, typeconv.CodeDuplicateKey, iss[0].Code)
	assert.Equal(t, "/b/c", iss[0].Path)
	assert.Contains(t, iss[0].Cause.Error(), "line 4, column 3")

	_, err = source.YAML([]byte("? [1]\n: 2\n"), source.Options{})
	iss = issuesOf(t, err)
	assert.Equal(t, typeconv.CodeParseError, iss[0].Code)

	_, err = source.YAML([]byte("a: [1, 2\n"), source.Options{})
	iss = issuesOf(t, err)
	assert.Equal(t, typeconv.CodeParseError, iss[0].Code)

	_, err = source.YAML([]byte("a: [[1]]\n"), source.Options{MaxDepth: 2})
	iss = issuesOf(t, err)
	assert.Equal(t, "/a/0", iss[0].Path)
	assert.True(t, errors.Is(err, source.ErrMaxDepth))
}

func TestCUE(t *testing.T) {
	v, err := source.CUE([]byte("a: 1\nb: \"x\"\nc: [1, 2.5]\nd: a + 1\n"), source.Options{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1, "b": "x", "c": []any{1, 2.5}, "d": 2}, v)

	_, err = source.CUE([]byte("a: int\n"), source.Options{})
	iss := issuesOf(t, err)
	assert.Equal(t, typeconv.CodeParseError, iss[0].Code)

	_, err = source.CUE([]byte("a: {\n"), source.Options{})
	issuesOf(t, err)
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		return p
	}
	for _, p := range []string{
		write("v.json", `{"n": 3}`),
		write("v.yaml", "n: 3\n"),
		write("v.YML", "n: 3\n"),
		write("v.cue", "n: 3\n"),
	} {
		v, err := source.File(p, source.Options{})
		require.NoError(t, err, p)
		assert.Equal(t, map[string]any{"n": 3}, v, p)
	}

	_, err := source.File(write("v.txt", "n"), source.Options{})
	require.Error(t, err)
	_, err = source.File(filepath.Join(dir, "missing.json"), source.Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
