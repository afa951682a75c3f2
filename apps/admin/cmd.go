package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/analytics"
	"github.com/trezcool/academia/core/catalog"
	"github.com/trezcool/academia/core/profile"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db           *sql.DB // nil for the memory engine
	conf         *core.Config
	profileSvc   *profile.Service
	catalogSvc   *catalog.Service
	analyticsSvc *analytics.Service
	validate     *validator.Validate
	out          io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run goose migration commands (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  setrole -email EMAIL -role ROLE - change the role of a profile (student, teacher, admin)")
	fmt.Fprintln(cli.out, "  import -file FILE - import categories and lessons from a JSON file")
	fmt.Fprintln(cli.out, "  stats - print the platform overview and metrics")
	fmt.Fprintln(cli.out, "  token -id ID [-email EMAIL] [-name NAME] [-ttl DURATION] - issue a development access token")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	setRoleCmd := flag.NewFlagSet("setrole", flag.ContinueOnError)
	setRoleCmd.SetOutput(cli.out)
	setRoleEmail := setRoleCmd.String("email", "", "The email of the profile.")
	setRoleRole := setRoleCmd.String("role", "", "The new role: student, teacher or admin.")

	importCmd := flag.NewFlagSet("import", flag.ContinueOnError)
	importCmd.SetOutput(cli.out)
	importFile := importCmd.String("file", "", "Path to the catalog JSON file.")

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenCmd.SetOutput(cli.out)
	tokenID := tokenCmd.String("id", "", "The user id (token subject).")
	tokenEmail := tokenCmd.String("email", "", "The user email.")
	tokenName := tokenCmd.String("name", "", "The user display name.")
	tokenTTL := tokenCmd.Duration("ttl", 24*time.Hour, "How long the token stays valid.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "setrole":
		if err := setRoleCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *setRoleEmail == "" || *setRoleRole == "" {
			setRoleCmd.Usage()
			return errHelp
		}
		return cli.setRole(*setRoleEmail, *setRoleRole)
	case "import":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importCatalog(*importFile)
	case "stats":
		return cli.stats()
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *tokenID == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.issueToken(*tokenID, *tokenEmail, *tokenName, *tokenTTL)
	default:
		cli.printUsage()
		return errHelp
	}
}
