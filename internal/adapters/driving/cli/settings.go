package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docchat/internal/adapters/driven/config/file"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure providers, retrieval, and guard options.

Settings are stored in a TOML file under ~/.docchat (override with --config).`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used to index and retrieve chunks.`,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider used for answers, summaries, and the guard.`,
	RunE:  runSettingsLLM,
}

var settingsGuardCmd = &cobra.Command{
	Use:   "guard",
	Short: "Configure the sensitive-question guard",
	Long: `Set how sensitive questions are detected before retrieval runs.

Available modes:
  keyword - match against a built-in sensitive term list (no provider needed)
  llm     - classify with the configured LLM, keyword fallback on error
  chain   - keyword first, then LLM for anything the keywords miss

Keyword levels: lenient, standard, strict.`,
	RunE: runSettingsGuard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsGuardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return file.DefaultPath()
}

func loadSettings() (*file.Config, string, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, "", err
	}
	cfg, err := file.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}
	return cfg, path, nil
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	cfg, path, err := loadSettings()
	if err != nil {
		return err
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Printf("Config file: %s\n", path)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", cfg.Embedding.Provider)
	cmd.Printf("  Model: %s\n", cfg.Embedding.Model)
	if cfg.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", cfg.Embedding.BaseURL)
	}
	if cfg.Embedding.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(cfg.Embedding.APIKey))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
	if cfg.Embedding.RequestsPerSecond > 0 {
		cmd.Printf("  Rate limit: %.1f req/s\n", cfg.Embedding.RequestsPerSecond)
	}
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", cfg.LLM.Provider)
	cmd.Printf("  Model: %s\n", cfg.LLM.Model)
	if cfg.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", cfg.LLM.BaseURL)
	}
	if cfg.LLM.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(cfg.LLM.APIKey))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
	cmd.Println()

	cmd.Println("[Vector Store]")
	cmd.Printf("  Backend: %s\n", cfg.Vector.Backend)
	if cfg.Vector.Backend == "qdrant" {
		cmd.Printf("  URL: %s\n", cfg.Vector.URL)
	}
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Backend: %s\n", cfg.Storage.Backend)
	if cfg.Storage.DataDir != "" {
		cmd.Printf("  Data dir: %s\n", cfg.Storage.DataDir)
	}
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Chunk size: %d\n", cfg.Chunking.ChunkSize)
	cmd.Printf("  Overlap: %d\n", cfg.Chunking.Overlap)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Top K: %d\n", cfg.Retrieval.TopK)
	cmd.Println()

	cmd.Println("[Guard]")
	cmd.Printf("  Mode: %s\n", cfg.Guard.Mode)
	if cfg.Guard.Level != "" {
		cmd.Printf("  Level: %s\n", cfg.Guard.Level)
	}
	if len(cfg.Guard.Keywords) > 0 {
		cmd.Printf("  Custom keywords: %d\n", len(cfg.Guard.Keywords))
	}
	cmd.Println()

	if err := cfg.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

//nolint:dupl // Similar to runSettingsLLM but for embeddings - intentional for CLI flow clarity
func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	cfg, path, err := loadSettings()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Select Embedding Provider")
	providers := []string{"openai", "ollama"}
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p)
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	provider := providers[idx-1]

	defaults := map[string]string{
		"openai": "text-embedding-3-small",
		"ollama": "nomic-embed-text",
	}
	cmd.Printf("Enter model name [%s]: ", defaults[provider])
	model := readLine(reader)
	if model == "" {
		model = defaults[provider]
	}

	var apiKey string
	if provider == "openai" {
		cmd.Print("Enter API key: ")
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	cfg.Embedding.Provider = provider
	cfg.Embedding.Model = model
	cfg.Embedding.APIKey = apiKey

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	cmd.Printf("Embedding provider configured: %s (%s)\n", provider, model)
	cmd.Println("Note: sessions indexed with a different model must be re-indexed.")
	return nil
}

//nolint:dupl // Similar to runSettingsEmbedding but for LLM - intentional for CLI flow clarity
func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	cfg, path, err := loadSettings()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Select LLM Provider")
	providers := []string{"openai", "anthropic", "ollama"}
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p)
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	provider := providers[idx-1]

	defaults := map[string]string{
		"openai":    "gpt-4o-mini",
		"anthropic": "claude-sonnet-4-5",
		"ollama":    "llama3.1",
	}
	cmd.Printf("Enter model name [%s]: ", defaults[provider])
	model := readLine(reader)
	if model == "" {
		model = defaults[provider]
	}

	var apiKey string
	if provider != "ollama" {
		cmd.Print("Enter API key: ")
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	cfg.LLM.Provider = provider
	cfg.LLM.Model = model
	cfg.LLM.APIKey = apiKey

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	cmd.Printf("LLM provider configured: %s (%s)\n", provider, model)
	return nil
}

func runSettingsGuard(cmd *cobra.Command, _ []string) error {
	cfg, path, err := loadSettings()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Select Guard Mode")
	modes := []string{"keyword", "llm", "chain"}
	for i, m := range modes {
		cmd.Printf("  %d. %s\n", i+1, m)
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(modes), 1)
	cfg.Guard.Mode = modes[idx-1]

	cmd.Println("\nSelect Keyword Level")
	levels := []string{"lenient", "standard", "strict"}
	for i, l := range levels {
		cmd.Printf("  %d. %s\n", i+1, l)
	}
	cmd.Print("\nEnter choice [2]: ")
	input = readLine(reader)
	idx = parseChoice(input, len(levels), 2)
	cfg.Guard.Level = levels[idx-1]

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	cmd.Printf("Guard configured: mode=%s level=%s\n", cfg.Guard.Mode, cfg.Guard.Level)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
