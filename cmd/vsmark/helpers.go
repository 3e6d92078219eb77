package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"

	"github.com/vsmark/vsmark"
	"github.com/vsmark/vsmark/vsconfig"
)

func loadDotenvBestEffort() {
	// Best effort: load from current working directory.
	_ = godotenv.Load()
	_ = godotenv.Overload(".env.vsmark")
}

func initLogging() {
	vsmark.InitLogging()
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func mustConfig() *vsconfig.Config {
	cfg, err := vsconfig.Load(configFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to read config:", err)
		os.Exit(2)
	}
	return cfg
}

// readInput returns the content of the file named by args[0], or stdin
// when no argument (or "-") is given.
func readInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// buildResolver assembles the verification key chain: did:key signer
// IDs resolve from themselves, then the local keyring, then the
// keyserver when one is configured.
func buildResolver(cfg *vsconfig.Config) (vsmark.KeyResolver, error) {
	resolvers := []vsmark.KeyResolver{&vsmark.DIDKeyResolver{}}

	ring, err := vsmark.LoadKeyring(cfg.KeyringPath)
	if err != nil {
		return nil, fmt.Errorf("load keyring %s: %w", cfg.KeyringPath, err)
	}
	resolvers = append(resolvers, ring)

	if cfg.KeyserverURL != "" {
		hr, err := vsmark.NewHTTPResolver(cfg.KeyserverURL)
		if err != nil {
			return nil, err
		}
		resolvers = append(resolvers, hr)
	}
	return &vsmark.ChainResolver{Resolvers: resolvers}, nil
}
