package main

import (
	"os"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-pantheon/fabrica-iff/cmd/iff/commands"
)

func main() {
	if err := commands.NewApp().Run(os.Args); err != nil {
		log.Errorf("iff failed. %+v", err)
		os.Exit(2)
	}
}
