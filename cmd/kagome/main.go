package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/rotkonetworks/kagome/cmd/kagome/authority"
	"github.com/rotkonetworks/kagome/cmd/kagome/full"
)

func init() {
	fullCmd := full.NewCommand(full.WithSubcommands())
	authorityCmd := authority.NewCommand(authority.WithSubcommands())
	rootCmd.AddCommand(
		fullCmd,
		authorityCmd,
		versionCmd,
	)
	rootCmd.SetHelpCommand(&cobra.Command{})
}

func main() {
	err := run()
	if err != nil {
		os.Exit(1)
	}
}

func run() error {
	return rootCmd.ExecuteContext(context.Background())
}

var rootCmd = &cobra.Command{
	Use: "kagome [  full  ||  authority  ] [subcommand]",
	Short: `
	    __
	   / /______ _____ _____  ____ ___  ___
	  / //_/ __ ` + "`" + `/ __ ` + "`" + `/ __ \/ __ ` + "`" + `__ \/ _ \
	 / ,< / /_/ / /_/ / /_/ / / / / / /  __/
	/_/|_|\__,_/\__, /\____/_/ /_/ /_/\___/
	           /____/
	`,
	Args: cobra.NoArgs,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}
