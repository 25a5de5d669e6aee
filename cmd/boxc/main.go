// cmd/boxc/main.go
package main

import (
	"fmt"
	"log"
	"os"

	"boxc/cmd/boxc/commands"
)

const version = "0.1.0"

// commandAliases mirrors the teacher CLI's single-letter shortcuts.
var commandAliases = map[string]string{
	"b": "build",
	"l": "list",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-v", "version":
		fmt.Printf("boxc %s\n", version)
	case "build":
		if err := commands.BuildCommand(args[1:]); err != nil {
			log.Fatalf("boxc: %v", err)
		}
	case "list":
		if err := commands.BuildCommand([]string{"list"}); err != nil {
			log.Fatalf("boxc: %v", err)
		}
	default:
		fmt.Fprintf(os.Stderr, "boxc: unknown command %q\n", args[0])
		showUsage()
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`boxc - Box language compiler core CLI

Usage:
  boxc build <scenario>   compile a built-in demo scenario and show its LIR
  boxc list                list the available demo scenarios
  boxc version              print the version
  boxc help                 show this message`)
}
