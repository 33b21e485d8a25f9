package internal

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
)

const (
	sourceExt = ".jack"
	outputExt = ".vm"
)

// CompileClass parses tokens as one class and writes its vm code to w. Every class gets
// a fresh symbol table and writer. It returns the class name.
func CompileClass(tokens []Token, w io.Writer, opts ...Option) (string, error) {
	cfg := newOptions(opts)
	return compileClass(tokens, w, cfg)
}

func compileClass(tokens []Token, w io.Writer, cfg *Options) (string, error) {
	parser := NewParser(tokens)
	class, err := parser.ParseClassDeclaration()
	if err != nil {
		return "", err
	}
	generator := NewCodeGenerator(NewVMWriter(w), cfg.Logger)
	err = generator.Generate(class)
	return generator.ClassName(), err
}

// CompileSource tokenizes rd and compiles it as one class.
func CompileSource(rd io.Reader, w io.Writer, opts ...Option) (string, error) {
	tokenizer := &Tokenizer{}
	tokens, err := tokenizer.Tokenize(rd)
	if err != nil {
		return "", err
	}
	return CompileClass(tokens, w, opts...)
}

// CompileFile compiles one .jack file into ClassName.vm. Nothing is written when the
// class fails to compile.
func CompileFile(path string, opts ...Option) (string, error) {
	return compileFile(path, newOptions(opts))
}

func compileFile(path string, cfg *Options) (string, error) {
	logger := cfg.Logger.With().Str("file", path).Logger()
	src, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	tokenizer := &Tokenizer{}
	tokens, err := tokenizer.TokenizeBytes(src)
	if err != nil {
		logger.Error().Err(err).Msg("tokenize failed")
		return "", fmt.Errorf("%s: %w", path, err)
	}
	var buf bytes.Buffer
	className, err := compileClass(tokens, &buf, &Options{Logger: logger})
	if err != nil {
		logger.Error().Err(err).Msg("compile failed")
		return "", fmt.Errorf("%s: %w", path, err)
	}
	logger.Info().Str("class", className).Msg("compiled class")
	dir := cfg.OutputDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	output := filepath.Join(dir, className+outputExt)
	err = os.WriteFile(output, buf.Bytes(), 0644)
	if err != nil {
		return "", err
	}
	logger.Debug().Str("output", output).Msg("wrote vm file")
	return output, nil
}

// CompileDir compiles every .jack file directly inside dir, in name order. It stops at
// the first failure unless ContinueOnError is set. It returns the written files.
func CompileDir(dir string, opts ...Option) ([]string, error) {
	return compileDir(dir, newOptions(opts))
}

func compileDir(dir string, cfg *Options) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var sources []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), sourceExt) {
			sources = append(sources, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(sources)
	if len(sources) == 0 {
		return nil, fmt.Errorf("no %s files in %s", sourceExt, dir)
	}
	var outputs []string
	var result *multierror.Error
	for _, source := range sources {
		output, err := compileFile(source, cfg)
		if err != nil {
			if !cfg.ContinueOnError {
				return outputs, err
			}
			result = multierror.Append(result, err)
			continue
		}
		outputs = append(outputs, output)
	}
	return outputs, result.ErrorOrNil()
}

// Compile compiles path, a single .jack file or a directory of them.
func Compile(path string, opts ...Option) ([]string, error) {
	cfg := newOptions(opts)
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return compileDir(path, cfg)
	}
	output, err := compileFile(path, cfg)
	if err != nil {
		return nil, err
	}
	return []string{output}, nil
}
