package main

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

func newTownsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "towns",
		Short: "Town management commands",
	}

	cmd.AddCommand(newTownsCreateCmd())
	cmd.AddCommand(newTownsListCmd())
	cmd.AddCommand(newTownsUpdateCmd())
	cmd.AddCommand(newTownsDeleteCmd())

	return cmd
}

func newTownsCreateCmd() *cobra.Command {
	var friendlyName string
	var public bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new town",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"friendly_name":      friendlyName,
				"is_publicly_listed": public,
			}

			var result struct {
				TownID             string `json:"town_id"`
				TownUpdatePassword string `json:"town_update_password"`
			}
			if err := newAPIClient(serverURL).do(http.MethodPost, "/towns", req, &result); err != nil {
				return err
			}
			printJSON(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&friendlyName, "name", "", "friendly town name")
	cmd.Flags().BoolVar(&public, "public", true, "list the town publicly")

	return cmd
}

func newTownsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List publicly visible towns",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result struct {
				Towns []struct {
					TownID           string `json:"town_id"`
					FriendlyName     string `json:"friendly_name"`
					CurrentOccupancy int    `json:"current_occupancy"`
				} `json:"towns"`
			}
			if err := newAPIClient(serverURL).do(http.MethodGet, "/towns", nil, &result); err != nil {
				return err
			}
			for _, t := range result.Towns {
				fmt.Printf("%s\t%s\t%d\n", t.TownID, t.FriendlyName, t.CurrentOccupancy)
			}
			return nil
		},
	}
}

func newTownsUpdateCmd() *cobra.Command {
	var password, friendlyName string
	var public bool

	cmd := &cobra.Command{
		Use:   "update <town-id>",
		Short: "Update a town's name or visibility",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"town_update_password": password}
			if cmd.Flags().Changed("name") {
				req["friendly_name"] = friendlyName
			}
			if cmd.Flags().Changed("public") {
				req["is_publicly_listed"] = public
			}

			path := "/towns/" + url.PathEscape(args[0])
			if err := newAPIClient(serverURL).do(http.MethodPatch, path, req, nil); err != nil {
				return err
			}
			fmt.Println("updated", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "town update password")
	cmd.Flags().StringVar(&friendlyName, "name", "", "new friendly name")
	cmd.Flags().BoolVar(&public, "public", true, "list the town publicly")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newTownsDeleteCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "delete <town-id>",
		Short: "Delete a town and disconnect its players",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"town_update_password": password}

			path := "/towns/" + url.PathEscape(args[0])
			if err := newAPIClient(serverURL).do(http.MethodDelete, path, req, nil); err != nil {
				return err
			}
			fmt.Println("deleted", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "town update password")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
