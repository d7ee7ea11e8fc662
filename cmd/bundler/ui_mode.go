package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch mode := uiMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case "":
		return uiModeAuto, nil
	case uiModeAuto, uiModeOn, uiModeOff:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// useProgressUI decides whether build renders the progress TUI. Quiet runs
// and JSON diagnostics keep stdout free of it even with --ui=on.
func useProgressUI(cmd *cobra.Command) (bool, error) {
	value, err := cmd.Flags().GetString("ui")
	if err != nil {
		return false, fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(value)
	if err != nil {
		return false, err
	}
	format, err := cmd.Root().PersistentFlags().GetString("diagnostics-format")
	if err != nil {
		return false, fmt.Errorf("failed to get diagnostics-format flag: %w", err)
	}
	if quiet(cmd) || strings.EqualFold(format, "json") {
		return false, nil
	}
	switch mode {
	case uiModeOn:
		return true, nil
	case uiModeOff:
		return false, nil
	default:
		return isTerminal(os.Stdout), nil
	}
}
