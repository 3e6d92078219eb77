package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsmark/vsmark"
)

var targetsPolicy string

var targetsCmd = &cobra.Command{
	Use:   "targets [file]",
	Short: "Count embedding anchors in text",
	Long: `Read text from a file (or stdin) and report how many anchor
positions each policy finds. Useful for checking whether a text can
carry a payload in distributed mode.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTargets,
}

func init() {
	targetsCmd.Flags().StringVar(&targetsPolicy, "target", "", "Report a single policy instead of all")
	rootCmd.AddCommand(targetsCmd)
}

func runTargets(cmd *cobra.Command, args []string) error {
	text, err := readInput(args)
	if err != nil {
		return err
	}

	policies := []vsmark.Target{
		vsmark.TargetWhitespace,
		vsmark.TargetPunctuation,
		vsmark.TargetFirstLetter,
		vsmark.TargetLastLetter,
		vsmark.TargetAllCharacters,
	}
	if targetsPolicy != "" {
		policies = []vsmark.Target{vsmark.Target(targetsPolicy)}
	}

	for _, policy := range policies {
		indices, err := vsmark.FindTargets(text, policy)
		if err != nil {
			return err
		}
		fmt.Printf("%-16s %d\n", policy, len(indices))
	}
	return nil
}
