package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/stigmergic-org/dservice/internal/listregistry"
)

const (
	setDomains        = "domains"
	setResolvers      = "resolvers"
	contentHashPrefix = "contenthash_"
)

var indexerDataCmd = &cobra.Command{
	Use:   "indexer-data",
	Short: "dump or wipe the discovered domains, resolvers, and content-hash sets",
}

func init() {
	indexerDataCmd.AddCommand(indexerDataShowCmd, indexerDataResetCmd)
}

var indexerDataShowCmd = &cobra.Command{
	Use:   "show",
	Short: "print domains, resolvers, and every contenthash_<name> set",
	Run: func(cmd *cobra.Command, args []string) {
		withOneShot(func(ctx context.Context, a *oneShotApp) error {
			return showIndexerData(ctx, a)
		})()
	},
}

var indexerDataResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "wipe domains, resolvers, and every contenthash_<name> set",
	Run: func(cmd *cobra.Command, args []string) {
		withOneShot(func(ctx context.Context, a *oneShotApp) error {
			return resetIndexerData(ctx, a)
		})()
	},
}

func showIndexerData(ctx context.Context, a *oneShotApp) error {
	domains, err := a.reg.Get(ctx, setDomains, listregistry.TypeString)
	if err != nil {
		return err
	}
	sort.Strings(domains)
	fmt.Println("domains:")
	for _, d := range domains {
		fmt.Println("  " + d)
	}

	resolvers, err := a.reg.Get(ctx, setResolvers, listregistry.TypeAddress)
	if err != nil {
		return err
	}
	sort.Strings(resolvers)
	fmt.Println("resolvers:")
	for _, r := range resolvers {
		fmt.Println("  " + r)
	}

	contentHashes, err := a.reg.GetAllByPrefix(ctx, contentHashPrefix, listregistry.TypeString)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(contentHashes))
	for name := range contentHashes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		entries := contentHashes[name]
		sort.Strings(entries)
		fmt.Printf("%s:\n", name)
		for _, e := range entries {
			fmt.Println("  " + e)
		}
	}
	return nil
}

func resetIndexerData(ctx context.Context, a *oneShotApp) error {
	if err := a.reg.RemoveAllByPrefix(ctx, setDomains); err != nil {
		return err
	}
	if err := a.reg.RemoveAllByPrefix(ctx, setResolvers); err != nil {
		return err
	}
	return a.reg.RemoveAllByPrefix(ctx, contentHashPrefix)
}
