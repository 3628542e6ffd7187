package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xplshn/svimport/pkg/cli"
)

func TestDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.True(t, cfg.IsFeatureEnabled(FeatWideLiterals))
	assert.True(t, cfg.IsFeatureEnabled(FeatLocalDecls))
	assert.True(t, cfg.IsFeatureEnabled(FeatProceduralAssign))
	assert.False(t, cfg.IsWarningEnabled(WarnImplicitConversion))
	assert.False(t, cfg.IsWarningEnabled(WarnIncDecWriteback))
	assert.True(t, cfg.IsWarningEnabled(WarnLiteralTruncation))
	assert.Equal(t, 20, cfg.MaxErrors)
	assert.Equal(t, "literal-truncation", cfg.WarningName(WarnLiteralTruncation))
}

func TestApplyFlag(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.ApplyFlag("-Wimplicit-conversion"))
	require.NoError(t, cfg.ApplyFlag("-Wno-literal-truncation"))
	require.NoError(t, cfg.ApplyFlag("-Fno-wide-literals"))
	require.NoError(t, cfg.ApplyFlag("Fno-local-decls"))

	assert.True(t, cfg.IsWarningEnabled(WarnImplicitConversion))
	assert.False(t, cfg.IsWarningEnabled(WarnLiteralTruncation))
	assert.False(t, cfg.IsFeatureEnabled(FeatWideLiterals))
	assert.False(t, cfg.IsFeatureEnabled(FeatLocalDecls))

	require.NoError(t, cfg.ApplyFlag("-Wall"))
	for w := Warning(0); w < WarnCount; w++ {
		assert.True(t, cfg.IsWarningEnabled(w), cfg.WarningName(w))
	}
	require.NoError(t, cfg.ApplyFlag("-Wno-all"))
	for w := Warning(0); w < WarnCount; w++ {
		assert.False(t, cfg.IsWarningEnabled(w), cfg.WarningName(w))
	}
}

func TestApplyFlagErrors(t *testing.T) {
	tests := []struct {
		flag string
		want string
	}{
		{"-Wbogus", "unknown warning 'bogus'"},
		{"-Fno-bogus", "unknown feature 'bogus'"},
		{"-Fall", "unknown feature 'all'"},
		{"-O2", "unrecognized flag '-O2'"},
	}
	for _, tt := range tests {
		err := NewConfig().ApplyFlag(tt.flag)
		require.Error(t, err, tt.flag)
		assert.EqualError(t, err, tt.want)
	}
}

func visitNames(names ...string) func(fn func(string)) {
	return func(fn func(string)) {
		for _, name := range names {
			fn(name)
		}
	}
}

func TestProcessFlagsAppliesAllFirst(t *testing.T) {
	cfg := NewConfig()
	err := cfg.ProcessFlags(visitNames("Wno-implicit-conversion", "output", "Wall", "help"))
	require.NoError(t, err)
	assert.False(t, cfg.IsWarningEnabled(WarnImplicitConversion))
	assert.True(t, cfg.IsWarningEnabled(WarnIncDecWriteback))

	cfg = NewConfig()
	require.NoError(t, cfg.ProcessFlags(visitNames("Wliteral-truncation", "Wno-all")))
	assert.True(t, cfg.IsWarningEnabled(WarnLiteralTruncation))
	assert.False(t, cfg.IsWarningEnabled(WarnImplicitConversion))
}

func TestProcessFlagsCollectsErrors(t *testing.T) {
	err := NewConfig().ProcessFlags(visitNames("Wnope", "Fnada"))
	require.Error(t, err)
	assert.Equal(t, "unknown warning 'nope'; unknown feature 'nada'", err.Error())
}

func TestSetupFlagGroups(t *testing.T) {
	cfg := NewConfig()
	fs := cli.NewFlagSet("test")
	cfg.SetupFlagGroups(fs)

	require.NoError(t, fs.Parse([]string{"-Wall", "-Wno-literal-truncation", "-Fno-procedural-assign", "a.sv"}))
	require.NoError(t, cfg.ProcessFlags(fs.Visit))

	assert.True(t, cfg.IsWarningEnabled(WarnImplicitConversion))
	assert.False(t, cfg.IsWarningEnabled(WarnLiteralTruncation))
	assert.False(t, cfg.IsFeatureEnabled(FeatProceduralAssign))
	assert.True(t, cfg.IsFeatureEnabled(FeatWideLiterals))
	assert.Equal(t, []string{"a.sv"}, fs.Args())
}

func TestProcessDirectiveFlags(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.ProcessDirectiveFlags("  -Wincdec-writeback\t-Fno-wide-literals "))
	assert.True(t, cfg.IsWarningEnabled(WarnIncDecWriteback))
	assert.False(t, cfg.IsFeatureEnabled(FeatWideLiterals))

	assert.EqualError(t, cfg.ProcessDirectiveFlags("-Wall -Wwhat"), "unknown warning 'what'")
}

func TestSummary(t *testing.T) {
	cfg := NewConfig()
	cfg.SetWarning(WarnIncDecWriteback, true)
	assert.Equal(t, []string{
		"feature local-decls=true",
		"feature procedural-assign=true",
		"feature wide-literals=true",
		"warning implicit-conversion=false",
		"warning incdec-writeback=true",
		"warning literal-truncation=true",
	}, cfg.Summary())
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFileYAML(t *testing.T) {
	path := writeFile(t, "svimport.yaml", `
features:
  wide-literals: false
warnings:
  literal-truncation: true
  all: false
max-errors: 0
color: false
`)
	cfg := NewConfig()
	require.NoError(t, cfg.LoadFile(path))

	assert.False(t, cfg.IsFeatureEnabled(FeatWideLiterals))
	// "all" applies before the specific entries regardless of key order
	assert.True(t, cfg.IsWarningEnabled(WarnLiteralTruncation))
	assert.False(t, cfg.IsWarningEnabled(WarnImplicitConversion))
	assert.Equal(t, 0, cfg.MaxErrors)
	assert.False(t, cfg.Color)
}

func TestLoadFileCUE(t *testing.T) {
	path := writeFile(t, "svimport.cue", `
features: "local-decls": false
warnings: {
	"implicit-conversion": true
}
"max-errors": 5 * 2
`)
	cfg := NewConfig()
	require.NoError(t, cfg.LoadFile(path))

	assert.False(t, cfg.IsFeatureEnabled(FeatLocalDecls))
	assert.True(t, cfg.IsWarningEnabled(WarnImplicitConversion))
	assert.Equal(t, 10, cfg.MaxErrors)
	assert.True(t, cfg.Color)
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"unknown key", "a.yaml", "maxerrors: 3\n", "field maxerrors not found"},
		{"unknown feature", "a.yml", "features:\n  ports: true\n", "unknown feature 'ports'"},
		{"unknown warning", "a.yaml", "warnings:\n  shadow: true\n", "unknown warning 'shadow'"},
		{"negative limit", "a.yaml", "max-errors: -1\n", "max-errors must not be negative, got -1"},
		{"incomplete cue", "a.cue", "\"max-errors\": int\n", "validating CUE value"},
		{"extension", "a.toml", "", "unsupported config file extension '.toml'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfig().LoadFile(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	err := NewConfig().LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
