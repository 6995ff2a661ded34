package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Motimate/extant-email/config"
)

func newCmdCheck(cfg *config.Config, factory engineFactory) *cobra.Command {
	var (
		fromStdin   bool
		fromEmail   string
		helloName   string
		timeout     time.Duration
		maxAttempts int
		compact     bool
	)

	cmd := &cobra.Command{
		Use:   "check [addresses...]",
		Short: "Check one or more email addresses",
		Example: `  extant check alice@example.com bob@example.org
  cat list.txt | extant check --stdin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			emails := append([]string{}, args...)
			if fromStdin {
				scanner := bufio.NewScanner(cmd.InOrStdin())
				for scanner.Scan() {
					if line := strings.TrimSpace(scanner.Text()); line != "" {
						emails = append(emails, line)
					}
				}
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
			}
			if len(emails) == 0 {
				return errors.New("no addresses given")
			}

			opts := cfg.RequestOptions()
			if cmd.Flags().Changed("from") {
				opts.FromEmail = fromEmail
			}
			if cmd.Flags().Changed("hello-name") {
				opts.HelloName = helloName
			}
			if cmd.Flags().Changed("timeout") {
				opts.SMTPTimeout = timeout
			}
			attempts := cfg.MaxAttempts
			if cmd.Flags().Changed("max-attempts") {
				attempts = maxAttempts
			}

			checker, closeFn, err := factory(cfg)
			if err != nil {
				return fmt.Errorf("failed to start engine: %w", err)
			}
			if closeFn != nil {
				defer closeFn()
			}

			result := checker.CheckBatch(cmd.Context(), emails, opts, attempts)

			enc := json.NewEncoder(cmd.OutOrStdout())
			if !compact {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(result)
		},
	}

	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read addresses from stdin, one per line")
	cmd.Flags().StringVar(&fromEmail, "from", "", "MAIL FROM address (env FROM_EMAIL)")
	cmd.Flags().StringVar(&helloName, "hello-name", "", "EHLO name (env HELLO_NAME)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "SMTP timeout per probe (env SMTP_TIMEOUT)")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "Attempts per address while the verdict is unknown (env MAX_ATTEMPTS)")
	cmd.Flags().BoolVar(&compact, "compact", false, "Print JSON on a single line")
	return cmd
}
