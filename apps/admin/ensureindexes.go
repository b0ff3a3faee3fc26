package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) ensureIndexes() error {
	if err := cli.db.EnsureIndexes(context.Background()); err != nil {
		return err
	}
	fmt.Println("indexes are up to date")
	return nil
}
