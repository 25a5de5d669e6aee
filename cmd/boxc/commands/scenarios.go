// scenarios.go supplies the demo programs BuildCommand compiles. The
// core has no text-level lexer/parser collaborator (boxast's own
// package doc: "the lexer/parser is out of this core's scope"), so
// until a real front end exists, the CLI compiles hand-built ASTs the
// same way the scenario tests under internal/boxcompiler do (spec §8),
// rather than reading Box source text off disk.
package commands

import (
	"sort"

	"boxc/internal/boxast"
	"boxc/internal/boxdiag"
	"boxc/internal/boxops"
)

// Scenario is one named demo program.
type Scenario struct {
	Name        string
	Description string
	Build       func() boxast.Expr
}

var scenarios = map[string]Scenario{
	"arith": {
		Name:        "arith",
		Description: "1 + 2 * 3 evaluated for effect (spec §8 scenario 1)",
		Build:       buildArithScenario,
	},
	"assign": {
		Name:        "assign",
		Description: "a = 10, b = a + 1 (spec §8 scenario 2)",
		Build:       buildAssignScenario,
	},
}

// ScenarioNames lists the available demo program names, sorted.
func ScenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for n := range scenarios {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves a scenario by name.
func Lookup(name string) (Scenario, bool) {
	s, ok := scenarios[name]
	return s, ok
}

func pos() boxdiag.Pos { return boxdiag.Pos{File: "<builtin>", Line: 1, Col: 1} }

func buildArithScenario() boxast.Expr {
	// 1 + (2 * 3)
	mul := &boxast.Binary{Op: boxops.BinMul, Left: &boxast.IntLit{Value: 2}, Right: &boxast.IntLit{Value: 3}}
	add := &boxast.Binary{Op: boxops.BinAdd, Left: &boxast.IntLit{Value: 1}, Right: mul}
	return boxast.NewBox(pos(), nil, boxast.BoxStmt{Expr: add, Sep: boxast.SepPlain})
}

func buildAssignScenario() boxast.Expr {
	// a = 10, b = a + 1
	declA := &boxast.Assign{Left: &boxast.Identifier{Name: "a"}, Right: &boxast.IntLit{Value: 10}}
	sum := &boxast.Binary{Op: boxops.BinAdd, Left: &boxast.Identifier{Name: "a"}, Right: &boxast.IntLit{Value: 1}}
	declB := &boxast.Assign{Left: &boxast.Identifier{Name: "b"}, Right: sum}
	return boxast.NewBox(pos(), nil,
		boxast.BoxStmt{Expr: declA, Sep: boxast.SepPlain},
		boxast.BoxStmt{Expr: declB, Sep: boxast.SepPause},
	)
}
