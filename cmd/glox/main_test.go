package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/chazu/glox/compiler"
	"github.com/chazu/glox/vm"
)

func TestReportExitCodes(t *testing.T) {
	_, compileErr := compiler.Compile("1 +")
	_, missing := os.ReadFile(filepath.Join(t.TempDir(), "nope.lox"))

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"compile", compileErr, exitDataErr},
		{"runtime", &vm.Error{Kind: vm.ErrorKindRuntime, Message: "x"}, exitSoftware},
		{"underflow", &vm.Error{Kind: vm.ErrorKindStackUnderflow, Message: "x"}, exitSoftware},
		{"empty chunk", &vm.Error{Kind: vm.ErrorKindInterpret, Message: "x"}, exitDataErr},
		{"missing file", missing, exitNoInput},
		{"wrapped runtime", fmt.Errorf("run: %w", &vm.Error{Kind: vm.ErrorKindRuntime}), exitSoftware},
		{"other", errors.New("boom"), exitDataErr},
	}

	devnull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer devnull.Close()
	stderr := os.Stderr
	os.Stderr = devnull
	defer func() { os.Stderr = stderr }()

	for _, tc := range tests {
		if got := report(tc.err); got != tc.want {
			t.Errorf("report(%s) = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestCompileFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "expr.lox")
	out := filepath.Join(dir, "expr.gloxc")
	if err := os.WriteFile(src, []byte("(1 + 2) * 4"), 0644); err != nil {
		t.Fatal(err)
	}

	if code := compileFile(src, out); code != exitOK {
		t.Fatalf("compileFile = %d, want %d", code, exitOK)
	}

	chunk, err := loadCompiled(out)
	if err != nil {
		t.Fatalf("loadCompiled: %v", err)
	}
	v, err := vm.Evaluate(chunk, vm.WithOutput(&discard{}))
	if err != nil || v.AsNumber() != 12 {
		t.Errorf("compiled chunk = %v, %v; want 12", v, err)
	}
}

func TestYAMLListingShape(t *testing.T) {
	chunk, err := compiler.Compile("1 + 2")
	if err != nil {
		t.Fatal(err)
	}
	data, err := yaml.Marshal(yamlListing{Name: "x", Instructions: chunk.Listing()})
	if err != nil {
		t.Fatalf("yaml.Marshal: %v", err)
	}

	var doc struct {
		Instructions []map[string]any `yaml:"instructions"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}
	if len(doc.Instructions) != 4 {
		t.Fatalf("got %d instructions, want 4:\n%s", len(doc.Instructions), data)
	}
	first := doc.Instructions[0]
	if first["op"] != "OP_CONSTANT" || first["operand"] != 0 || first["constant"] != "1" {
		t.Errorf("first instruction = %v", first)
	}
	if _, ok := doc.Instructions[2]["operand"]; ok {
		t.Errorf("OP_ADD has an operand: %v", doc.Instructions[2])
	}
}

type discard struct{}

func (*discard) Write(p []byte) (int, error) { return len(p), nil }
