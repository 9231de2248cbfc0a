package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/giantswarm/mcp-odoo/internal/api"
	"github.com/giantswarm/mcp-odoo/internal/config"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAuthFailed indicates missing or rejected backend credentials.
	ExitCodeAuthFailed = 2
	// ExitCodeConfigInvalid indicates a configuration that failed validation.
	ExitCodeConfigInvalid = 3
)

// rootCmd represents the base command for the mcp-odoo application.
var rootCmd = &cobra.Command{
	Use:   "mcp-odoo",
	Short: "Expose an Odoo ERP instance to AI assistants over MCP",
	Long: `mcp-odoo is a Model Context Protocol server that lets AI assistants
search, read, create, update and delete Odoo records. Every request is
checked against the per-model permissions configured in Odoo and, optionally,
a local policy file.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcp-odoo version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		var cfgErr *config.ConfigurationError
		if errors.As(err, &cfgErr) {
			fmt.Fprintln(os.Stderr, cfgErr.DetailedError())
		}
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	if api.IsAuthenticationError(err) {
		return ExitCodeAuthFailed
	}

	var validationErrs config.ValidationErrors
	if errors.As(err, &validationErrs) {
		return ExitCodeConfigInvalid
	}

	var cfgErr *config.ConfigurationError
	if errors.As(err, &cfgErr) {
		return ExitCodeConfigInvalid
	}

	return ExitCodeError
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newCheckCmd())
}
