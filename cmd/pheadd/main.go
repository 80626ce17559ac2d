package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"

	"github.com/smalldrop/phead.go/pkg/config"
	"github.com/smalldrop/phead.go/pkg/daemon"
	fx "github.com/smalldrop/phead.go/pkg/framework"
)

func init() {
	config.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	d, err := daemon.New(config.MustLoad(), nil)
	if err != nil {
		glog.Exit(err)
	}
	runner := fx.NewRunner().HandleSignals()
	if err := runner.Go(d.Runnables()...).Wait(); err != nil {
		glog.Exit(err)
	}
}
