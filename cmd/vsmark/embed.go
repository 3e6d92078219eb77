package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vsmark/vsmark"
	"github.com/vsmark/vsmark/vsconfig"
)

var (
	embedSigner        string
	embedKeyPath       string
	embedTimestamp     string
	embedFormat        string
	embedSerialization string
	embedTarget        string
	embedDistribute    bool
	embedModelID       string
	embedGenerationID  string
	embedNewGeneration bool
	embedCustomJSON    string
)

var embedCmd = &cobra.Command{
	Use:   "embed [file]",
	Short: "Embed signed metadata into text",
	Long: `Read text from a file (or stdin), embed a signed provenance payload,
and print the embedded text to stdout. The signing key is looked up in
the configured keys directory by signer ID unless --key is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEmbed,
}

func init() {
	embedCmd.Flags().StringVar(&embedSigner, "signer", "", "Signer ID (defaults to config default_signer)")
	embedCmd.Flags().StringVar(&embedKeyPath, "key", "", "Path to the PEM private key")
	embedCmd.Flags().StringVar(&embedTimestamp, "timestamp", "", "ISO 8601 timestamp (defaults to now)")
	embedCmd.Flags().StringVar(&embedFormat, "format", "basic", "Payload format: basic or manifest")
	embedCmd.Flags().StringVar(&embedSerialization, "serialization", "json", "Envelope transport: json, cbor, or jumbf")
	embedCmd.Flags().StringVar(&embedTarget, "target", "whitespace", "Anchor policy: whitespace, punctuation, first_letter, last_letter, all_characters")
	embedCmd.Flags().BoolVar(&embedDistribute, "distribute", false, "Spread one selector per anchor instead of a single run")
	embedCmd.Flags().StringVar(&embedModelID, "model-id", "", "Model identifier to record")
	embedCmd.Flags().StringVar(&embedGenerationID, "generation-id", "", "Generation identifier to record")
	embedCmd.Flags().BoolVar(&embedNewGeneration, "new-generation-id", false, "Record a fresh random generation ID")
	embedCmd.Flags().StringVar(&embedCustomJSON, "custom", "", "Custom metadata as a JSON object")
	rootCmd.AddCommand(embedCmd)
}

func runEmbed(cmd *cobra.Command, args []string) error {
	cfg := mustConfig()

	signerID := embedSigner
	if signerID == "" {
		signerID = cfg.DefaultSigner
	}
	if signerID == "" {
		return fmt.Errorf("no signer: pass --signer or set default_signer in config")
	}

	keyPath := embedKeyPath
	if keyPath == "" {
		keyPath, _ = vsconfig.KeypairPaths(cfg.KeysDir, signerID)
	}
	priv, err := vsconfig.LoadSigningKey(keyPath)
	if err != nil {
		return fmt.Errorf("load signing key: %w", err)
	}

	var timestamp any = embedTimestamp
	if embedTimestamp == "" {
		timestamp = time.Now().UTC()
	}

	generationID := embedGenerationID
	if embedNewGeneration {
		generationID, err = vsmark.NewGenerationID()
		if err != nil {
			return err
		}
	}

	var custom map[string]any
	if embedCustomJSON != "" {
		if err := json.Unmarshal([]byte(embedCustomJSON), &custom); err != nil {
			return fmt.Errorf("parse --custom: %w", err)
		}
	}

	text, err := readInput(args)
	if err != nil {
		return err
	}

	embedded, err := vsmark.EmbedMetadata(text, priv, vsmark.EmbedOptions{
		SignerID:                signerID,
		Timestamp:               timestamp,
		MetadataFormat:          vsmark.MetadataFormat(embedFormat),
		Serialization:           vsmark.SerializationFormat(embedSerialization),
		Target:                  vsmark.Target(embedTarget),
		DistributeAcrossTargets: embedDistribute,
		ModelID:                 embedModelID,
		GenerationID:            generationID,
		CustomMetadata:          custom,
	})
	if err != nil {
		return err
	}

	fmt.Print(embedded)
	return nil
}
