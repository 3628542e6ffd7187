// Package pipeline runs the whole front end: lexing, parsing, type
// checking and lowering of a set of source files.
package pipeline

import (
	"errors"
	"log/slog"
	"os"

	"github.com/xplshn/svimport/pkg/ast"
	"github.com/xplshn/svimport/pkg/config"
	"github.com/xplshn/svimport/pkg/diag"
	"github.com/xplshn/svimport/pkg/ir"
	"github.com/xplshn/svimport/pkg/lexer"
	"github.com/xplshn/svimport/pkg/lower"
	"github.com/xplshn/svimport/pkg/parser"
	"github.com/xplshn/svimport/pkg/typecheck"
)

// ErrFailed means at least one error diagnostic was reported. The
// diagnostics themselves are in the bag.
var ErrFailed = errors.New("compilation failed")

type Source struct {
	Name    string
	Content string
}

// ReadFiles loads every path as a Source.
func ReadFiles(paths []string) ([]Source, error) {
	srcs := make([]Source, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		srcs = append(srcs, Source{Name: path, Content: string(data)})
	}
	return srcs, nil
}

// Compile lowers every module of srcs. Diagnostics go to bag; lowering is
// skipped when parsing or type checking reported an error. A nil logger
// discards progress messages.
func Compile(cfg *config.Config, srcs []Source, bag *diag.Bag, logger *slog.Logger) ([]*ir.Module, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	design := &ast.Design{}
	for _, src := range srcs {
		content := []rune(src.Content)
		index := bag.AddFile(src.Name, content)

		tokens := lexer.NewLexer(content, index, cfg, bag).Tokenize()
		logger.Debug("lexed", "file", src.Name, "tokens", len(tokens))

		parsed := parser.NewParser(tokens, cfg, bag).Parse()
		logger.Debug("parsed", "file", src.Name, "modules", len(parsed.Modules))
		design.Modules = append(design.Modules, parsed.Modules...)
	}
	if bag.HasErrors() {
		return nil, ErrFailed
	}

	if err := typecheck.NewTypeChecker(cfg, bag).Check(design); err != nil {
		logger.Debug("type checking failed", "errors", bag.ErrorCount())
		return nil, ErrFailed
	}

	mods, err := lower.ConvertDesign(cfg, design, bag)
	if err != nil {
		logger.Debug("lowering failed", "errors", bag.ErrorCount())
		return mods, errors.Join(ErrFailed, err)
	}
	logger.Debug("lowered", "modules", len(mods))
	return mods, nil
}
