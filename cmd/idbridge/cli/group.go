package cli

import (
	"github.com/spf13/cobra"
	"github.com/ubuntu/idbridge/internal/nss"
)

func (a *App) installGroup() {
	groupCmd := &cobra.Command{
		Use:   "group",
		Short: "Commands related to groups",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, args []string) error { return cmd.Usage() },
	}

	groupCmd.AddCommand(&cobra.Command{
		Use:   "gid <name>",
		Short: "Print the id of a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gid, err := a.registry.GIDByName(args[0])
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), result{
				text:   formatID(gid),
				fields: []field{{"name", args[0]}, {"gid", gid}},
			})
		},
	})

	groupCmd.AddCommand(&cobra.Command{
		Use:   "name <gid>",
		Short: "Print the name of a group",
		Args:  idArg("GID"),
		RunE: func(cmd *cobra.Command, args []string) error {
			gid, err := parseID("GID", args[0])
			if err != nil {
				return err
			}
			name, err := a.registry.GroupByID(gid)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), result{
				text:   name,
				fields: []field{{"gid", gid}, {"name", name}},
			})
		},
	})

	groupCmd.AddCommand(&cobra.Command{
		Use:   "show <name|gid>",
		Short: "Print the entry of a group",
		Long: `Print the entry of a group, without its members.

An argument made only of digits is handled as a GID.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var g nss.GroupRecord
			var err error
			if gid, ok := asID(args[0]); ok {
				g, err = a.registry.GroupByGID(gid)
			} else {
				g, err = a.registry.Group(args[0])
			}
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), result{
				text:   g.Name + ":" + g.Passwd + ":" + formatID(g.GID),
				fields: []field{{"name", g.Name}, {"passwd", g.Passwd}, {"gid", g.GID}},
			})
		},
	})

	a.rootCmd.AddCommand(groupCmd)
}
