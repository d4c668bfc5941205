package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/neu-cs4530/team-project-6l/internal/profile"
	"github.com/neu-cs4530/team-project-6l/internal/profile/sqlitedir"
)

func newUsersCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "users",
		Short: "User directory commands (operate directly on the profiles database)",
	}

	cmd.PersistentFlags().StringVar(&dbPath, "db", "./data/profiles.db", "profiles database path")

	cmd.AddCommand(newUsersAddCmd(&dbPath))
	cmd.AddCommand(newUsersListCmd(&dbPath))

	return cmd
}

func newUsersAddCmd(dbPath *string) *cobra.Command {
	var displayName, avatar string

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Add or update a user profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := sqlitedir.Open(*dbPath)
			if err != nil {
				return err
			}
			defer dir.Close()

			username := args[0]
			p := profile.Profile{
				ID:          uuid.NewString(),
				Username:    username,
				DisplayName: displayName,
				Avatar:      avatar,
			}
			if p.DisplayName == "" {
				p.DisplayName = username
			}
			if existing, err := dir.ResolveUsername(cmd.Context(), username); err == nil {
				p.ID = existing.ID
			}

			if err := dir.Upsert(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Println(p.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&displayName, "display-name", "", "display name (defaults to username)")
	cmd.Flags().StringVar(&avatar, "avatar", "misa", "avatar identifier")

	return cmd
}

func newUsersListCmd(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List user profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := sqlitedir.Open(*dbPath)
			if err != nil {
				return err
			}
			defer dir.Close()

			profiles, err := dir.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, p := range profiles {
				fmt.Printf("%s\t%s\t%s\t%s\n", p.ID, p.Username, p.DisplayName, p.Avatar)
			}
			return nil
		},
	}
}
