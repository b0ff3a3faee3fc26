package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/elimuhub/elimu/core/user"
	mongorepos "github.com/elimuhub/elimu/storage/mongodb"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db     *mongorepos.DB
	usrSvc *user.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  setrole -id ID -role student|admin - change a user's role")
	fmt.Println("  listusers - list all users")
	fmt.Println("  ensureindexes - create the database indexes")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	setRoleCmd := flag.NewFlagSet("setrole", flag.ExitOnError)
	setRoleID := setRoleCmd.String("id", "", "The user's ID.")
	setRoleRole := setRoleCmd.String("role", "", "The role to assign: student|admin.")

	switch args[1] {
	case "setrole":
		if err := setRoleCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *setRoleID == "" || *setRoleRole == "" {
			setRoleCmd.Usage()
			return errHelp
		}
		return cli.setRole(*setRoleID, *setRoleRole)
	case "listusers":
		return cli.listUsers()
	case "ensureindexes":
		return cli.ensureIndexes()
	default:
		cli.printUsage()
		return errHelp
	}
}
