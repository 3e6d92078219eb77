package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsmark/vsmark"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract embedded metadata without verifying it",
	Long: `Read text from a file (or stdin) and print the embedded payload as
JSON. No signature check is performed; use "vsmark verify" for an
authenticated read.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	text, err := readInput(args)
	if err != nil {
		return err
	}

	payload := vsmark.ExtractMetadata(text)
	if payload == nil {
		return fmt.Errorf("no embedded metadata found")
	}

	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
