package main

import (
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/caltrack/internal/models"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/services"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/store"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var adminGrantCmd = &cobra.Command{
	Use:   "grant <email>",
	Short: "Give an account the admin role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setAdmin(cmd, args[0], true)
	},
}

var adminRevokeCmd = &cobra.Command{
	Use:   "revoke <email>",
	Short: "Remove the admin role from an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setAdmin(cmd, args[0], false)
	},
}

var adminListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List accounts with their role and entry count",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB(db)

		overview, err := services.NewAdminService(store.NewGormStore(db)).Overview(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
		if len(overview.Users) == 0 {
			fmt.Println("No users yet.")
			return nil
		}

		faint := color.New(color.Faint)
		adminTag := color.New(color.FgYellow, color.Bold)
		for _, u := range overview.Users {
			role := faint.Sprint(u.Role)
			if u.Role == models.RoleAdmin {
				role = adminTag.Sprint(u.Role)
			}
			fmt.Printf("%s  %-32s %-6s %5d entries\n",
				faint.Sprint(u.CreatedAt.Format("2006-01-02")), u.Email, role, u.EntryCount)
		}
		fmt.Printf("\n%d users, %d entries\n", len(overview.Users), overview.TotalEntries)
		return nil
	},
}

func init() {
	adminCmd.AddCommand(adminGrantCmd, adminRevokeCmd, adminListCmd)
}

func setAdmin(cmd *cobra.Command, email string, admin bool) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(db)

	if err := services.NewAdminService(store.NewGormStore(db)).SetAdmin(cmd.Context(), email, admin); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return fmt.Errorf("no account with email %s", email)
		}
		return err
	}

	if admin {
		color.Green("✓ %s is now an admin", services.NormalizeEmail(email))
	} else {
		color.Yellow("✓ %s is no longer an admin", services.NormalizeEmail(email))
	}
	return nil
}
