// build.go implements the build command, grounded in the teacher's
// cmd/sentra/commands/build.go BuildCommand: resolve an argument,
// construct the pass, run it, surface the result through the CLI's
// error-returning convention.
package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"boxc/internal/boxcompiler"
	"boxc/internal/boxdiag"
	"boxc/internal/boxvm"
)

// BuildCommand compiles the named demo scenario and prints its
// disassembled main procedure. args[0] selects the scenario; "list"
// (or no argument) prints the available names instead of compiling.
func BuildCommand(args []string) error {
	if len(args) == 0 || args[0] == "list" {
		return listScenarios(os.Stdout)
	}

	name := args[0]
	scenario, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("unknown scenario %q (try %q)", name, strings.Join(ScenarioNames(), ", "))
	}

	ast := scenario.Build()
	log := boxdiag.NewSink(os.Stderr)
	vm := boxvm.NewDefaultVM()

	callNumber, ok := boxcompiler.CompileFile(ast, boxcompiler.CompileOptions{
		Name:          scenario.Name,
		Logger:        log,
		VM:            vm,
		TrackLeaks:    true,
		DisassembleTo: os.Stdout,
	})
	if !ok {
		return fmt.Errorf("compile %q failed", scenario.Name)
	}

	fmt.Printf("main installed at call number %d\n", callNumber)
	return nil
}

func listScenarios(w io.Writer) error {
	for _, name := range ScenarioNames() {
		s, _ := Lookup(name)
		fmt.Fprintf(w, "%-8s %s\n", s.Name, s.Description)
	}
	return nil
}
