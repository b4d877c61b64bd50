package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/lifecycle/pkg/core"
	lcerrors "github.com/go-drift/lifecycle/pkg/errors"
	"github.com/go-drift/lifecycle/pkg/frame"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestResolve_Defaults(t *testing.T) {
	dir := t.TempDir()

	r, err := Resolve(dir)
	require.NoError(t, err)

	assert.Equal(t, "lifecycle", r.ProjectName)
	assert.Empty(t, r.ModulePath)
	assert.Equal(t, core.MomentEffect, r.Effects.Moment)
	assert.True(t, r.Effects.UseDigestProps)
	assert.True(t, r.Effects.Debounce)
	assert.Equal(t, frame.DefaultRefreshRate, r.RefreshHz)
	assert.False(t, r.Strict)
	assert.False(t, r.Headless)
}

func TestResolve_FromFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module example.com/widgets/v2\n\ngo 1.24\n")
	writeFile(t, dir, FileName, `
effects:
  moment: layoutEffect
  debounce: false
display:
  refresh_hz: 120
  strict: true
`)

	r, err := Resolve(dir)
	require.NoError(t, err)

	assert.Equal(t, "example.com/widgets/v2", r.ModulePath)
	assert.Equal(t, "widgets", r.ProjectName)
	assert.Equal(t, core.MomentLayoutEffect, r.Effects.Moment)
	assert.False(t, r.Effects.Debounce)
	assert.True(t, r.Effects.UseDigestProps)
	assert.Equal(t, 120, r.RefreshHz)
	assert.True(t, r.Strict)
}

func TestResolve_UnknownMoment(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, "effects:\n  moment: afterPaint\n")

	_, err := Resolve(dir)
	require.Error(t, err)

	var le *lcerrors.LifecycleError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, lcerrors.KindConfig, le.Kind)
	assert.ErrorIs(t, err, lcerrors.ErrUnknownKind)
}

func TestResolve_NegativeRefreshRate(t *testing.T) {
	cfg := &Config{Display: DisplayConfig{RefreshHz: -1}}
	_, err := cfg.Resolve("")
	assert.Error(t, err)
}

func TestLoad_Malformed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, "effects: [\n")

	_, err := Resolve(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse lifecycle.yaml")
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "custom.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "go.mod", "module example.com/app\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	t.Chdir(nested)

	got, err := FindProjectRoot()
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	got, err = filepath.EvalSymlinks(got)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
