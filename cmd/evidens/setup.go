package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dev-Pau/evidens/internal/config"
	"github.com/dev-Pau/evidens/internal/identity"
)

func newSetupCmd() *cobra.Command {
	var local bool
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Point evidens at a server, or at the embedded demo store",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := configDir
			if dir == "" {
				dir = config.DefaultConfigDir()
			}
			cfg, err := config.Load(dir)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if local {
				cfg.Backend.Type = config.BackendLocal
			} else if err := promptRemote(cfg); err != nil {
				return err
			}
			if err := config.Save(dir, cfg); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Println()
			fmt.Println("✓ Configuration saved!")
			fmt.Println()
			fmt.Println("Run evidens to start the application.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "use the embedded store instead of a server")
	return cmd
}

// promptRemote asks for the API URL and token until both are usable
func promptRemote(cfg *config.Config) error {
	fmt.Println()
	fmt.Println("Welcome to Evidens!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("Enter the API URL (e.g., https://api.evidens.app): ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		cfg.Server.URL = strings.TrimRight(strings.TrimSpace(input), "/")
		if cfg.Server.URL != "" {
			break
		}
		fmt.Println("API URL cannot be empty. Please try again.")
	}

	for {
		// Hidden input
		fmt.Print("Access token: ")
		tokenBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}
		token := strings.TrimSpace(string(tokenBytes))

		user, err := identity.FromToken(token)
		if err != nil {
			fmt.Printf("✗ %v. Please try again.\n", err)
			continue
		}
		if user.Expired(time.Now()) {
			fmt.Println("✗ That token has expired. Please try again.")
			continue
		}

		name := user.Name
		if name == "" {
			name = user.ID
		}
		fmt.Printf("✓ Signed in as %s\n", name)
		cfg.Server.Token = token
		cfg.Backend.Type = config.BackendRemote
		return nil
	}
}
