package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vsmark/vsmark"
)

var verifyShowPayload bool

var verifyCmd = &cobra.Command{
	Use:   "verify [file]",
	Short: "Verify embedded metadata against known signer keys",
	Long: `Read text from a file (or stdin), extract the embedded payload, and
verify its signature. Keys resolve through did:key signer IDs, the local
keyring, and the configured keyserver, in that order. Exits 0 when the
signature verifies, 1 otherwise.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyShowPayload, "show-payload", false, "Print the payload even when verification fails")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg := mustConfig()
	resolver, err := buildResolver(cfg)
	if err != nil {
		return err
	}

	text, err := readInput(args)
	if err != nil {
		return err
	}

	payload, valid, signerID := vsmark.VerifyMetadata(text, resolver, &vsmark.VerifyOptions{
		ReturnPayloadOnFailure: verifyShowPayload,
	})

	if payload != nil {
		out, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	}

	if !valid {
		if signerID != "" {
			fmt.Fprintf(os.Stderr, "verification FAILED for signer %q\n", signerID)
		} else {
			fmt.Fprintln(os.Stderr, "no verifiable metadata found")
		}
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "verification OK, signer %q\n", signerID)
	return nil
}
