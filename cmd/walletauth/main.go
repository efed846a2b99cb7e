package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "walletauth",
		Usage: "wallet sign-in server and tools",
		Commands: []*cli.Command{
			serveCommand(),
			keygenCommand(),
			signinCommand(),
			messageCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
