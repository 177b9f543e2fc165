package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:   "tasktracker",
		Usage:  "Todo tracking service with shared mentions, filtering, pagination and export",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Aliases: []string{"e"},
				Usage:   "Path to a dotenv file loaded before reading the environment",
				Value:   ".env",
				Sources: cli.EnvVars("APP_ENV_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Prepare the configured store (schema migrations or indexes) and exit",
				Action: migrateStore,
			},
			{
				Name:  "users",
				Usage: "Manage user accounts",
				Commands: []*cli.Command{
					{
						Name:   "create",
						Usage:  "Create a user that can log in and be mentioned",
						Action: createUser,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "username", Usage: "Unique username used for mentions", Required: true},
							&cli.StringFlag{Name: "email", Usage: "Contact email"},
							&cli.StringFlag{Name: "role", Usage: "Role label", Value: "member"},
						},
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("tasktracker: %v", err)
	}
}
