package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xplshn/svimport/pkg/config"
	"github.com/xplshn/svimport/pkg/diag"
	"github.com/xplshn/svimport/pkg/ir"
	"github.com/xplshn/svimport/pkg/lower"
)

// render compiles file and returns the printed modules followed by the
// rendered diagnostics.
func render(t *testing.T, file string) []byte {
	t.Helper()
	srcs, err := ReadFiles([]string{file})
	require.NoError(t, err)
	srcs[0].Name = filepath.Base(file)

	bag := diag.NewBag()
	mods, _ := Compile(config.NewConfig(), srcs, bag, nil)

	var buf bytes.Buffer
	for _, mod := range mods {
		require.NoError(t, ir.Print(&buf, mod))
	}
	diag.Render(&buf, bag, false)
	return buf.Bytes()
}

func TestGolden(t *testing.T) {
	files, err := filepath.Glob("testdata/*.sv")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".sv")
		t.Run(name, func(t *testing.T) {
			g.Assert(t, name, render(t, file))
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		lowered bool
	}{
		{"parse", "module m;\n  logic x\nendmodule\n", false},
		{"type", "module m;\n  initial y = 1;\nendmodule\n", false},
		{"lower", "module m;\n  int x;\n  initial x = x ** 2;\nendmodule\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := diag.NewBag()
			mods, err := Compile(config.NewConfig(), []Source{{Name: "m.sv", Content: tt.src}}, bag, nil)
			require.ErrorIs(t, err, ErrFailed)
			assert.True(t, bag.HasErrors())
			if tt.lowered {
				assert.Len(t, mods, 1)
			} else {
				assert.Nil(t, mods)
			}
		})
	}
}

func TestCompileStopsAtErrorLimit(t *testing.T) {
	cfg := config.NewConfig()
	cfg.MaxErrors = 1
	src := "module m;\n  int x;\n  initial x = x ** 2;\n  initial x = x ** 3;\nendmodule\n"

	bag := diag.NewBag()
	_, err := Compile(cfg, []Source{{Name: "m.sv", Content: src}}, bag, nil)
	assert.ErrorIs(t, err, ErrFailed)
	assert.ErrorIs(t, err, lower.ErrTooManyErrors)
	assert.Equal(t, 1, bag.ErrorCount())
}

func TestCompileSpansFiles(t *testing.T) {
	srcs := []Source{
		{Name: "a.sv", Content: "module a;\nendmodule\n"},
		{Name: "b.sv", Content: "module b;\n  logic x;\nendmodule\n"},
	}
	mods, err := Compile(config.NewConfig(), srcs, diag.NewBag(), nil)
	require.NoError(t, err)
	require.Len(t, mods, 2)
	assert.Equal(t, "a", mods[0].Name)
	assert.Equal(t, "b", mods[1].Name)
}

func TestReadFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.sv")
	require.NoError(t, os.WriteFile(path, []byte("module a; endmodule\n"), 0o644))

	srcs, err := ReadFiles([]string{path})
	require.NoError(t, err)
	assert.Equal(t, []Source{{Name: path, Content: "module a; endmodule\n"}}, srcs)

	_, err = ReadFiles([]string{path, filepath.Join(dir, "missing.sv")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
