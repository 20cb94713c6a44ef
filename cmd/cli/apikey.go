package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/anstrom/scandeck/internal/auth"
	"github.com/anstrom/scandeck/internal/config"
)

// apikeyCmd represents the apikey command.
var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage API keys for scandeck serve",
	Long: `The HTTP API requires an API key on every route except health and version.
Only bcrypt hashes of keys are stored, under api.auth.api_key_hashes.`,
	Example: `  scandeck apikey generate`,
}

// apikeyGenerateCmd represents the apikey generate command.
var apikeyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a key and print the hash to configure",
	Args:  cobra.NoArgs,
	RunE:  runAPIKeyGenerate,
}

func init() {
	rootCmd.AddCommand(apikeyCmd)
	apikeyCmd.AddCommand(apikeyGenerateCmd)
}

func runAPIKeyGenerate(cmd *cobra.Command, _ []string) error {
	generated, err := auth.GenerateAPIKey()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "API key (shown once): %s\n\n", generated.Key)
	fmt.Fprintln(out, "Add the hash to your configuration:")
	fmt.Fprintf(out, "api:\n  auth:\n    api_key_hashes:\n      - %q\n", generated.Hash)
	return nil
}

// serveKeys builds the key ring for the API. With auth on and no configured
// hashes a key is generated for this run only and printed to w.
func serveKeys(cfg *config.Config, w io.Writer) (*auth.KeyRing, error) {
	if !cfg.API.Auth.Enabled {
		return nil, nil
	}
	if len(cfg.API.Auth.KeyHashes) > 0 {
		return auth.NewKeyRing(cfg.API.Auth.KeyHashes...), nil
	}

	generated, err := auth.GenerateAPIKey()
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "No API key configured; using %s for this run only.\n", generated.Key)
	fmt.Fprintln(w, `Run "scandeck apikey generate" to configure a permanent key.`)
	return auth.NewKeyRing(generated.Hash), nil
}
