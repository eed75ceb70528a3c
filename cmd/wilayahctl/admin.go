package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GTDGit/wilayah_api/internal/models"
	"github.com/GTDGit/wilayah_api/internal/service"
	"github.com/GTDGit/wilayah_api/internal/utils"
)

func newCreateAdminCmd() *cobra.Command {
	var in service.NewAdminInput
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		Long:  "Create an admin account. When --password is omitted a random one is generated and printed once.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			generated := in.Password == ""
			if generated {
				pw, err := utils.GeneratePassword()
				if err != nil {
					return err
				}
				in.Password = pw
			}

			e, err := openEnv(false)
			if err != nil {
				return err
			}
			defer e.Close()

			user, err := e.svc.AdminAuth.CreateAdmin(cmd.Context(), in)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "created %s admin %s (id %d)\n", user.Role, user.Email, user.ID)
			if generated {
				fmt.Fprintf(out, "password: %s\n", in.Password)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "login email (required)")
	cmd.Flags().StringVar(&in.Name, "name", "", "display name (required)")
	cmd.Flags().StringVar(&in.Role, "role", models.RoleAdministrator, "administrator, operator or viewer")
	cmd.Flags().StringVar(&in.Password, "password", "", "password (generated when empty)")
	for _, name := range []string{"email", "name"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark flag as required: %v", err))
		}
	}
	return cmd
}
