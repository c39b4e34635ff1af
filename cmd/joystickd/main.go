package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/arcadecar/pkg/framework"
	"github.com/robotalks/arcadecar/pkg/joystick"
	"github.com/robotalks/arcadecar/pkg/l1"
	env "github.com/robotalks/arcadecar/pkg/l1/env/controller"
)

func init() {
	env.SetControllerType("joystick", l1.ControllerMeta{Description: "Joystick driving an arcade car"})
	env.SetupFlags()
	joystick.SetupFlags()
}

func main() {
	flag.Parse()

	defer glog.Flush()
	env := env.NewConfig().MustNewEnv()
	ctl := joystick.NewConfig().NewController(env)
	framework.NewLoop().Add(env, ctl).RunOrFail()
}
