package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"patcheck/internal/output"
)

var patternsJSON bool

var patternsCmd = &cobra.Command{
	Use:     "list-patterns",
	Aliases: []string{"patterns"},
	Short:   "List registered pattern templates",
	Long: `Patterns lists every registered template: the builtin catalog plus any
templates loaded via --templates or the config file.`,
	Args: cobra.NoArgs,
	RunE: runPatterns,
}

func init() {
	patternsCmd.Flags().BoolVar(&patternsJSON, "json", false, "Emit the list as JSON")
	rootCmd.AddCommand(patternsCmd)
}

type patternListing struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Roles    int    `json:"roles"`
	Rules    int    `json:"rules"`
}

func runPatterns(cmd *cobra.Command, args []string) error {
	_, _, reg, err := setup()
	if err != nil {
		return err
	}

	var listings []patternListing
	for _, name := range reg.Names() {
		tpl, err := reg.Get(name)
		if err != nil {
			return err
		}
		listings = append(listings, patternListing{
			Name:     tpl.Name,
			Category: string(tpl.Category),
			Roles:    len(tpl.Roles),
			Rules:    len(tpl.Rules),
		})
	}

	if patternsJSON {
		data, err := output.DeterministicEncodeIndented(listings, "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	for _, l := range listings {
		fmt.Fprintf(cmd.OutOrStdout(), "%-25s %-12s %d roles, %d rules\n",
			l.Name, l.Category, l.Roles, l.Rules)
	}
	return nil
}
