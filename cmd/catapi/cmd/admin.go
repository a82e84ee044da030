package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ollivarila/wsk2/internal/core/auth"
	"github.com/ollivarila/wsk2/internal/core/ports"
	"github.com/ollivarila/wsk2/internal/core/service"
)

var (
	adminEmail     string
	adminName      string
	adminPassword  string
	adminFromStdin bool
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage administrator accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an administrator account",
	Long: `Creates a user with the admin role. Admins cannot be created through the
API. The password can be given with --password or read from stdin with --stdin.`,
	Example: `  catapi admin create --email root@example.com --username root --password secret
  echo secret | catapi admin create --email root@example.com --username root --stdin`,
	RunE: runAdminCreate,
}

func init() {
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "Admin email (required)")
	adminCreateCmd.Flags().StringVar(&adminName, "username", "", "Admin user name (required)")
	adminCreateCmd.Flags().StringVar(&adminPassword, "password", "", "Admin password")
	adminCreateCmd.Flags().BoolVar(&adminFromStdin, "stdin", false, "Read the password from stdin")
	_ = adminCreateCmd.MarkFlagRequired("email")
	_ = adminCreateCmd.MarkFlagRequired("username")

	adminCmd.AddCommand(adminCreateCmd)
}

func runAdminCreate(cmd *cobra.Command, args []string) error {
	password := adminPassword
	if adminFromStdin {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read password from stdin: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return errors.New("a password is required: use --password or --stdin")
	}

	ctx := cmd.Context()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = st.close(ctx) }()

	tokens, err := auth.NewResolver(auth.ResolverConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.TTL,
	})
	if err != nil {
		return err
	}

	user, err := service.NewAuthService(st.users, tokens, log).CreateAdmin(ctx, ports.RegisterInput{
		Name:     adminName,
		Email:    adminEmail,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (%s)\n", user.Name, user.ID)
	return nil
}
