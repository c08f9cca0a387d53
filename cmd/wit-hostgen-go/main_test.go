package main

import (
	"testing"

	"github.com/urfave/cli/v3"
)

func TestCommandWiring(t *testing.T) {
	want := map[string]bool{"generate": false, "describe": false, "print": false}
	for _, c := range Command.Commands {
		if _, ok := want[c.Name]; ok {
			want[c.Name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered on root command", name)
		}
	}
}

func TestForceWitFlagDeclared(t *testing.T) {
	for _, f := range Command.Flags {
		if b, ok := f.(*cli.BoolFlag); ok && b.Name == "force-wit" {
			return
		}
	}
	t.Error("root command missing --force-wit flag")
}
