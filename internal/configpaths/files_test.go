package configpaths

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProfilePath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses XDG_CONFIG_HOME")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	p, err := DefaultProfilePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "kb2pad", "profile.yaml"), p)

	p, err = DefaultNamedConfigPath("run", "yml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "kb2pad", "run.yaml"), p)
}

func TestConfigCandidatePathsRoutesUserFile(t *testing.T) {
	type testCase struct {
		user string
		want string
	}
	for _, tc := range []testCase{
		{user: "/tmp/a.toml", want: "toml"},
		{user: "/tmp/a.yml", want: "yaml"},
		{user: "/tmp/a.conf", want: "json"},
	} {
		t.Run(tc.user, func(t *testing.T) {
			j, y, tm := ConfigCandidatePaths(tc.user)
			first := map[string]string{"json": j[0], "yaml": y[0], "toml": tm[0]}
			assert.Equal(t, tc.user, first[tc.want])
		})
	}
}

func TestEnsureDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "profile.yaml")
	require.NoError(t, EnsureDir(target))
	assert.DirExists(t, filepath.Dir(target))
}
