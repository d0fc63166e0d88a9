// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// repositoryFlags address a repository by composite URL or by location and id.
func repositoryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "url",
			Usage: "Repository URL, <location>/repositories/<id>",
		},
		&cli.StringFlag{
			Name:    "location",
			Aliases: []string{"l"},
			Usage:   "Store location: a directory or an http(s) server URL (default: store.location)",
		},
		&cli.StringFlag{
			Name:  "id",
			Usage: "Repository id (default: store.repository, or the id of --repo-config)",
		},
		&cli.StringFlag{
			Name:  "repo-config",
			Usage: "Turtle or N-Triples repository configuration used when the repository is created",
		},
		&cli.StringFlag{
			Name:  "username",
			Usage: "Remote store username (default: store.username)",
		},
		&cli.StringFlag{
			Name:  "password",
			Usage: "Remote store password (default: store.password)",
		},
	}
}

// setupCommand writes the application config and creates the default repository.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml and the default repository",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file (default: $SEMDATA_CONFIG or config.toml)",
			},
		},
		Action: r.Setup,
	}
}

// repoCommand handles repository provisioning
func repoCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "repo",
		Aliases: []string{"repository"},
		Usage:   "Repository operations",
		Commands: []*cli.Command{
			{
				Name:   "open",
				Usage:  "Open a repository, creating it at a local location when absent",
				Flags:  repositoryFlags(),
				Action: r.RepoOpen,
			},
			{
				Name:  "list",
				Usage: "List the repositories of a store location",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "location",
						Aliases: []string{"l"},
						Usage:   "Store location (default: store.location)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.RepoList,
			},
		},
	}
}

// statementsCommand handles statement import and listing
func statementsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "statements",
		Aliases: []string{"st"},
		Usage:   "Statement operations",
		Commands: []*cli.Command{
			{
				Name:  "import",
				Usage: "Import a Turtle (.ttl) or N-Triples (.nt) file",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: append(repositoryFlags(),
					&cli.StringFlag{
						Name:  "context",
						Usage: "Named graph receiving the statements",
					},
				),
				Action: r.StatementsImport,
			},
			{
				Name:  "list",
				Usage: "List statements matching a pattern",
				Flags: append(repositoryFlags(),
					&cli.StringFlag{
						Name:  "subject",
						Usage: "Subject IRI, or _:label for a blank node",
					},
					&cli.StringFlag{
						Name:  "predicate",
						Usage: "Predicate IRI",
					},
					&cli.StringFlag{
						Name:  "context",
						Usage: "Named graph",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: ntriples, csv or markdown",
						Value:   "ntriples",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to a file instead of stdout",
					},
				),
				Action: r.StatementsList,
			},
		},
	}
}

// entityCommand handles mapped entity operations
func entityCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "entity",
		Usage: "Mapped entity operations",
		Commands: []*cli.Command{
			{
				Name:  "load",
				Usage: "Load an entity through the mapping file",
				Flags: append(repositoryFlags(),
					&cli.StringFlag{
						Name:    "mapping",
						Aliases: []string{"m"},
						Usage:   "YAML mapping file (default: mapping.path)",
					},
					&cli.StringFlag{
						Name:     "type",
						Aliases:  []string{"t"},
						Usage:    "Entity type",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "subject",
						Aliases:  []string{"s"},
						Usage:    "Subject IRI or an id relative to the entity namespace",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "policy",
						Usage: "Call-site mapping policy: default, direct, lazy or a comma separated combination (default: mapping.policy)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				),
				Action: r.EntityLoad,
			},
		},
	}
}

// serveCommand exposes a local location over HTTP
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the repositories of a local location over the RDF4J REST protocol",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "location",
				Aliases: []string{"l"},
				Usage:   "Local store location (default: store.location)",
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (default: server.addr)",
			},
			&cli.StringFlag{
				Name:  "username",
				Usage: "Username clients must present (default: server.username)",
			},
			&cli.StringFlag{
				Name:  "password",
				Usage: "Password clients must present (default: server.password)",
			},
		},
		Action: r.Serve,
	}
}

// policyCommand handles mapping policy arithmetic
func policyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "policy",
		Usage: "Mapping policy operations",
		Commands: []*cli.Command{
			{
				Name:      "combine",
				Usage:     "Combine mapping policies and print the result",
				ArgsUsage: "<policy> [policy...]",
				Action:    r.PolicyCombine,
			},
		},
	}
}
