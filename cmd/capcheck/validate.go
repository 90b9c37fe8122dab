package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/capcheck-io/capcheck/internal/application/dto"
)

// validateCmd validates a single request file and exits.
var validateCmd = &cobra.Command{
	Use:   "validate <request.json>",
	Short: "Validate one application request file against the rule set",
	Long: `Load the capability rule set and validate a single application request
from a JSON file. Exits non-zero with the first violation on failure.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runValidate(args[0])
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&rulesPath, "rules", "", "rule set file (default rules.yaml)")
}

func runValidate(requestPath string) error {
	validator, err := buildValidator()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(requestPath)
	if err != nil {
		return fmt.Errorf("failed to read request: %w", err)
	}

	var req dto.ApplicationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("failed to decode request: %w", err)
	}

	if err := validator.Validate(&req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Println("accepted")
	return nil
}
