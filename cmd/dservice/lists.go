package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stigmergic-org/dservice/internal/listregistry"
)

const (
	setAllow = "allow"
	setBlock = "block"
)

var allowListCmd = &cobra.Command{
	Use:   "allow-list",
	Short: "manage the operator allow set",
}

var blockListCmd = &cobra.Command{
	Use:   "block-list",
	Short: "manage the operator block set",
}

func init() {
	allowListCmd.AddCommand(
		setShowCmd(setAllow),
		setAddCmd(setAllow),
		setRmCmd(setAllow),
	)
	blockListCmd.AddCommand(
		setShowCmd(setBlock),
		setAddCmd(setBlock),
		setRmCmd(setBlock),
	)
}

func setShowCmd(setName string) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "list every name currently in the set",
		Run: func(cmd *cobra.Command, args []string) {
			withOneShot(func(ctx context.Context, a *oneShotApp) error {
				names, err := a.reg.Get(ctx, setName, listregistry.TypeString)
				if err != nil {
					return err
				}
				for _, n := range names {
					fmt.Println(n)
				}
				return nil
			})()
		},
	}
}

func setAddCmd(setName string) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "add a name to the set",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			name := args[0]
			if !nameRE.MatchString(name) {
				fail(fmt.Errorf("invalid name %q: must match %s", name, nameRE.String()))
			}
			withOneShot(func(ctx context.Context, a *oneShotApp) error {
				return a.reg.Add(ctx, setName, listregistry.TypeString, name)
			})()
		},
	}
}

func setRmCmd(setName string) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>",
		Short: "remove a name from the set",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			name := args[0]
			if !nameRE.MatchString(name) {
				fail(fmt.Errorf("invalid name %q: must match %s", name, nameRE.String()))
			}
			withOneShot(func(ctx context.Context, a *oneShotApp) error {
				return a.reg.Remove(ctx, setName, listregistry.TypeString, name)
			})()
		},
	}
}
