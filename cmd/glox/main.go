// Command glox compiles and runs glox expressions.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
	"gopkg.in/yaml.v3"

	"github.com/chazu/glox/cache"
	"github.com/chazu/glox/compiler"
	"github.com/chazu/glox/interpreter"
	"github.com/chazu/glox/manifest"
	"github.com/chazu/glox/server"
	"github.com/chazu/glox/vm"
	"github.com/chazu/glox/vm/dist"

	_ "github.com/tliron/commonlog/simple"
)

// Exit codes follow sysexits.h.
const (
	exitOK       = 0
	exitUsage    = 64
	exitDataErr  = 65
	exitNoInput  = 66
	exitSoftware = 70
	exitIOErr    = 74
)

var log = commonlog.GetLogger("glox.cli")

func main() {
	os.Exit(run())
}

func run() int {
	trace := flag.Bool("trace", false, "Print the stack and each instruction as it executes")
	disasm := flag.Bool("disasm", false, "Print the chunk listing before running")
	format := flag.String("format", "text", "Listing format for -disasm: text or yaml")
	output := flag.String("o", "", "Compile to a .gloxc file instead of running")
	useCache := flag.Bool("cache", false, "Cache compiled chunks (see [cache] in glox.toml)")
	lspMode := flag.Bool("lsp", false, "Start the language server on stdio")
	verbosity := flag.Int("v", 0, "Log verbosity (0-3)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: glox [options] [path]\n\n")
		fmt.Fprintf(os.Stderr, "Runs a glox source file, or starts a REPL when no path is given.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  glox                        # Start REPL (empty line exits)\n")
		fmt.Fprintf(os.Stderr, "  glox expr.lox               # Run a file\n")
		fmt.Fprintf(os.Stderr, "  glox -disasm -format yaml expr.lox\n")
		fmt.Fprintf(os.Stderr, "  glox -o expr.gloxc expr.lox # Compile only\n")
		fmt.Fprintf(os.Stderr, "  glox expr.gloxc             # Run a compiled chunk\n")
		fmt.Fprintf(os.Stderr, "  glox -lsp                   # Language server\n")
	}
	flag.Parse()

	if *format != "text" && *format != "yaml" {
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", *format)
		return exitUsage
	}

	cfg, err := loadManifest()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsage
	}

	level := *verbosity
	if cfg.Log.Verbosity > level {
		level = cfg.Log.Verbosity
	}
	commonlog.Configure(level, cfg.LogFile())
	for _, key := range cfg.Unknown {
		log.Warningf("%s: unknown key %s", manifest.FileName, key)
	}

	if *lspMode {
		if err := server.NewLSP().Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			return exitSoftware
		}
		return exitOK
	}

	args := flag.Args()
	if len(args) > 1 {
		flag.Usage()
		return exitUsage
	}

	opts := []interpreter.Option{interpreter.WithOutput(os.Stdout)}
	if *trace || cfg.Run.Trace {
		opts = append(opts, interpreter.WithTrace(os.Stdout))
	}
	listing := *disasm || cfg.Run.Disassemble
	if listing && *format == "text" {
		opts = append(opts, interpreter.WithDisassembly(os.Stdout))
	}
	if *useCache || cfg.Cache.Enabled {
		store, err := cache.Open(cfg.CachePath())
		if err != nil {
			log.Warningf("cache disabled: %s", err)
		} else {
			defer store.Close()
			opts = append(opts, interpreter.WithCache(store))
		}
	}
	in := interpreter.New(opts...)

	if len(args) == 0 {
		return runREPL(in)
	}

	path := args[0]
	if *output != "" {
		return compileFile(path, *output)
	}

	var chunk *vm.Chunk
	if strings.HasSuffix(path, ".gloxc") {
		chunk, err = loadCompiled(path)
	} else {
		chunk, err = loadSource(in, path)
	}
	if err != nil {
		return report(err)
	}

	if listing && *format == "yaml" {
		if err := writeYAMLListing(path, chunk); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitIOErr
		}
	}

	result, err := in.RunChunk(chunk)
	if err != nil {
		return report(err)
	}
	fmt.Printf("Result: %s\n", result)
	return exitOK
}

func loadManifest() (*manifest.Manifest, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	m, err := manifest.FindAndLoad(cwd)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return manifest.Default(), nil
	}
	log.Debugf("using %s", filepath.Join(m.Dir, manifest.FileName))
	return m, nil
}

func loadSource(in *interpreter.Interpreter, path string) (*vm.Chunk, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return in.Compile(string(src))
}

func loadCompiled(path string) (*vm.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return dist.Decode(data)
}

func compileFile(path, out string) int {
	src, err := os.ReadFile(path)
	if err != nil {
		return report(err)
	}
	chunk, err := compiler.Compile(string(src))
	if err != nil {
		return report(err)
	}
	data, err := dist.Encode(chunk, string(src))
	if err != nil {
		return report(err)
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitIOErr
	}
	log.Infof("wrote %s (%d bytes of code)", out, chunk.Count())
	return exitOK
}

// yamlListing is the document written by -disasm -format yaml.
type yamlListing struct {
	Name         string           `yaml:"name"`
	Constants    []string         `yaml:"constants"`
	Instructions []vm.Instruction `yaml:"instructions"`
}

func writeYAMLListing(name string, chunk *vm.Chunk) error {
	doc := yamlListing{Name: name, Instructions: chunk.Listing()}
	for _, c := range chunk.Constants {
		doc.Constants = append(doc.Constants, c.String())
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// report prints err and maps it to an exit code.
func report(err error) int {
	fmt.Fprintln(os.Stderr, err)

	if len(compiler.Errors(err)) > 0 {
		return exitDataErr
	}
	var verr *vm.Error
	if errors.As(err, &verr) {
		if verr.Kind == vm.ErrorKindInterpret {
			return exitDataErr
		}
		return exitSoftware
	}
	if errors.Is(err, os.ErrNotExist) {
		return exitNoInput
	}
	return exitDataErr
}
