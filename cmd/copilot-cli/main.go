package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/railplan/copilot/client"
)

// Build-time variables set via ldflags.
var (
	version   = "0.1.0"
	commit    = ""
	buildDate = ""
)

const defaultURL = "http://localhost:3040"

var (
	apiClient  *client.Client
	flagURL    string
	flagClient string
	flagRole   string
	flagFmt    string
)

func versionString() string {
	if commit != "" && buildDate != "" {
		return fmt.Sprintf("copilot version %s (commit: %s, built: %s)", version, commit, buildDate)
	}
	return fmt.Sprintf("copilot version %s-dev", version)
}

type configFile struct {
	// Flat format
	URL      string `yaml:"url"`
	ClientID string `yaml:"client_id"`
	Role     string `yaml:"role"`
	// Profile format
	Profiles      map[string]configProfile `yaml:"profiles"`
	ActiveProfile string                   `yaml:"active_profile"`
}

type configProfile struct {
	URL      string `yaml:"url"`
	ClientID string `yaml:"client_id"`
	Role     string `yaml:"role"`
}

func main() {
	rootCmd := &cobra.Command{
		Use:     "copilot",
		Short:   "Copilot CLI — preview and commit master-data mutations",
		Version: versionString(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			resolveConfig()
			var opts []client.Option
			if flagClient != "" || flagRole != "" {
				opts = append(opts, client.WithIdentity(flagClient, flagRole))
			}
			apiClient = client.New(flagURL, opts...)
		},
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&flagURL, "url", defaultURL, "Copilot server URL (env: COPILOT_URL)")
	rootCmd.PersistentFlags().StringVar(&flagClient, "client-id", "", "Client identity (env: COPILOT_CLIENT_ID)")
	rootCmd.PersistentFlags().StringVar(&flagRole, "role", "", "Client role (env: COPILOT_ROLE)")
	rootCmd.PersistentFlags().StringVar(&flagFmt, "format", "text", "Output format: text|json")

	rootCmd.AddCommand(newPreviewCmd())
	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newCommitCmd())
	rootCmd.AddCommand(newAuditCmd())
	rootCmd.AddCommand(newHealthCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func resolveConfig() {
	// Flag takes precedence, then env, then config file.
	if flagURL == defaultURL {
		if v := os.Getenv("COPILOT_URL"); v != "" {
			flagURL = v
		}
	}
	if flagClient == "" {
		flagClient = os.Getenv("COPILOT_CLIENT_ID")
	}
	if flagRole == "" {
		flagRole = os.Getenv("COPILOT_ROLE")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	cfgPath := filepath.Join(home, ".copilot", "config.yaml")
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return
	}
	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return
	}
	// Resolve from profiles if available, fall back to flat format.
	resolvedURL := cfg.URL
	resolvedClient := cfg.ClientID
	resolvedRole := cfg.Role
	if cfg.Profiles != nil {
		profileName := cfg.ActiveProfile
		if profileName == "" {
			profileName = "default"
		}
		if p, ok := cfg.Profiles[profileName]; ok {
			if p.URL != "" {
				resolvedURL = p.URL
			}
			if p.ClientID != "" {
				resolvedClient = p.ClientID
			}
			if p.Role != "" {
				resolvedRole = p.Role
			}
		}
	}
	if flagURL == defaultURL && resolvedURL != "" {
		flagURL = resolvedURL
	}
	if flagClient == "" && resolvedClient != "" {
		flagClient = resolvedClient
	}
	if flagRole == "" && resolvedRole != "" {
		flagRole = resolvedRole
	}
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	os.Exit(1)
}
