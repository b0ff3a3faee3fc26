package main

import (
	"context"
	"fmt"

	"github.com/elimuhub/elimu/core"
)

// setRole promotes or demotes a user; users always sign up as students so this
// is the only way to mint the first admin.
func (cli *commandLine) setRole(id, role string) error {
	ctx := context.Background()
	role = core.CleanString(role, true /* lower */)

	usr, err := cli.usrSvc.SetRole(ctx, id, role)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s) is now a %s\n", usr.Name, usr.Email, usr.Role)
	return nil
}

func (cli *commandLine) listUsers() error {
	users, err := cli.usrSvc.QueryAll(context.Background())
	if err != nil {
		return err
	}
	for _, usr := range users {
		fmt.Printf("%s\t%s\t%s\t%s\n", usr.ID, usr.Email, usr.Name, usr.Role)
	}
	return nil
}
