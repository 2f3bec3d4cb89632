package main

import "testing"

func TestBuildRootCmdIncludesSubcommands(t *testing.T) {
	cmd := buildRootCmd()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}

	for _, name := range []string{"serve", "config"} {
		if !names[name] {
			t.Fatalf("expected subcommand %q to be registered", name)
		}
	}
}

func TestBuildConfigCmdIncludesCheck(t *testing.T) {
	cmd := buildConfigCmd()
	for _, sub := range cmd.Commands() {
		if sub.Name() == "check" {
			return
		}
	}
	t.Fatal("expected config subcommand to register check")
}
