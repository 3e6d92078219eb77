package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsmark/vsmark"
	"github.com/vsmark/vsmark/vsconfig"
)

var keygenSigner string
var keygenAddToKeyring bool

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an Ed25519 signing keypair",
	Long: `Generate a new Ed25519 keypair, save it under the configured keys
directory as PEM files, and print the signer's did:key. Pass --signer to
name the keypair; otherwise the did:key itself becomes the signer ID.`,
	RunE: runKeygen,
}

func init() {
	keygenCmd.Flags().StringVar(&keygenSigner, "signer", "", "Signer ID to file the keypair under")
	keygenCmd.Flags().BoolVar(&keygenAddToKeyring, "add-to-keyring", true, "Record the public key in the local keyring")
	rootCmd.AddCommand(keygenCmd)
}

func runKeygen(cmd *cobra.Command, args []string) error {
	cfg := mustConfig()

	pub, priv, err := vsconfig.GenerateKeypair()
	if err != nil {
		return err
	}

	did := vsmark.ComputeDIDKey(pub)
	signerID := keygenSigner
	if signerID == "" {
		signerID = did
	}

	if err := vsconfig.SaveKeypair(cfg.KeysDir, signerID, pub, priv); err != nil {
		return err
	}
	keyPath, pubPath := vsconfig.KeypairPaths(cfg.KeysDir, signerID)

	if keygenAddToKeyring {
		ring, err := vsmark.LoadKeyring(cfg.KeyringPath)
		if err != nil {
			return fmt.Errorf("load keyring: %w", err)
		}
		if err := ring.Add(signerID, pub, "generated by vsmark keygen"); err != nil {
			return err
		}
		if err := ring.Save(cfg.KeyringPath); err != nil {
			return fmt.Errorf("save keyring: %w", err)
		}
	}

	fmt.Println("Signer ID:  ", signerID)
	fmt.Println("did:key:    ", did)
	fmt.Println("Private key:", keyPath)
	fmt.Println("Public key: ", pubPath)
	return nil
}
