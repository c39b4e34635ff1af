package main

import (
	"github.com/robotalks/arcadecar/pkg/cli/sh"
	env "github.com/robotalks/arcadecar/pkg/l1/env/connector"

	_ "github.com/robotalks/arcadecar/pkg/cli/cmds/all"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
