// Command gatectl drives a running Kairn backend: it inspects and changes the identity
// dialog, submits a display name and remounts the chat session.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
)

var (
	serverURL  string
	jsonOutput bool
	api        *client
)

func defaultServer() string {
	if s := strings.TrimSpace(os.Getenv("KAIRN_SERVER")); s != "" {
		return s
	}
	return "http://localhost:8080"
}

var rootCmd = &cobra.Command{
	Use:           "gatectl",
	Short:         "Inspect and drive the Kairn session bootstrap service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		api = newClient(serverURL)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer(), "backend base URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(closeCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(newSessionCmd)
	rootCmd.AddCommand(identifyCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
