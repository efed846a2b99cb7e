package main

import (
	"encoding/json"
	"fmt"

	"github.com/layer-3/walletauth/client"
	"github.com/layer-3/walletauth/core"
	"github.com/urfave/cli/v2"
)

func keygenCommand() *cli.Command {
	return &cli.Command{
		Name:  "keygen",
		Usage: "generate an Ed25519 account",
		Action: func(c *cli.Context) error {
			kp, err := client.GenerateKeyPair()
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "address: %s\nseed:    %s\n", kp.Address(), kp.EncodedSeed())
			return nil
		},
	}
}

func signinCommand() *cli.Command {
	return &cli.Command{
		Name:  "signin",
		Usage: "sign in to a server with an account seed and print the session",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "url",
				Value: "http://localhost:9000",
				Usage: "server base URL",
			},
			&cli.StringFlag{
				Name:     "seed",
				Usage:    "base64 account seed",
				EnvVars:  []string{"WALLETAUTH_SEED"},
				Required: true,
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "host in the sign-in message, defaults to the URL host",
			},
		},
		Action: func(c *cli.Context) error {
			kp, err := client.KeyPairFromEncodedSeed(c.String("seed"))
			if err != nil {
				return err
			}

			cl, err := client.New(c.String("url"))
			if err != nil {
				return err
			}

			if _, err := cl.SignIn(c.Context, kp, c.String("host")); err != nil {
				return err
			}

			session, _, err := cl.Session(c.Context)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(c.App.Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(session)
		},
	}
}

func messageCommand() *cli.Command {
	return &cli.Command{
		Name:  "message",
		Usage: "print the sign-in message for a challenge",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Required: true},
			&cli.StringFlag{Name: "address", Required: true},
			&cli.StringFlag{Name: "nonce", Required: true},
		},
		Action: func(c *cli.Context) error {
			_, err := fmt.Fprintln(c.App.Writer, core.SignInMessage(c.String("host"), c.String("address"), c.String("nonce")))
			return err
		},
	}
}
