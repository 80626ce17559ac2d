package main

import (
	"github.com/smalldrop/phead.go/pkg/cli/sh"

	_ "github.com/smalldrop/phead.go/pkg/cli/cmds/printhead"
)

//go-build: CGO_ENABLED=0

func main() {
	sh.Main()
}
