package cli

import (
	"github.com/spf13/cobra"
	"github.com/ubuntu/idbridge/internal/nss"
)

func (a *App) installUser() {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Commands related to users",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, args []string) error { return cmd.Usage() },
	}

	userCmd.AddCommand(&cobra.Command{
		Use:   "uid <name>",
		Short: "Print the id of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := a.registry.UIDByName(args[0])
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), result{
				text:   formatID(uid),
				fields: []field{{"name", args[0]}, {"uid", uid}},
			})
		},
	})

	userCmd.AddCommand(&cobra.Command{
		Use:   "name <uid>",
		Short: "Print the name of a user",
		Args:  idArg("UID"),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := parseID("UID", args[0])
			if err != nil {
				return err
			}
			name, err := a.registry.UserByID(uid)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), result{
				text:   name,
				fields: []field{{"uid", uid}, {"name", name}},
			})
		},
	})

	userCmd.AddCommand(&cobra.Command{
		Use:   "groups <name|uid>",
		Short: "Print the ids of all the groups a user belongs to",
		Long: `Print the ids of all the groups a user belongs to, its primary group included.

An argument made only of digits is handled as a UID.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var gids []uint32
			var err error
			if uid, ok := asID(args[0]); ok {
				gids, err = a.registry.GroupsOfUID(uid)
			} else {
				gids, err = a.registry.GroupsOfUser(args[0])
			}
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), result{
				text:   joinIDs(gids, " "),
				fields: []field{{"user", args[0]}, {"groups", gids}},
			})
		},
	})

	userCmd.AddCommand(&cobra.Command{
		Use:   "show <name|uid>",
		Short: "Print the passwd entry of a user",
		Long: `Print the passwd entry of a user.

An argument made only of digits is handled as a UID.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var u nss.UserRecord
			var err error
			if uid, ok := asID(args[0]); ok {
				u, err = a.registry.UserByUID(uid)
			} else {
				u, err = a.registry.User(args[0])
			}
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), userResult(u))
		},
	})

	a.rootCmd.AddCommand(userCmd)
}

// userResult formats u like a passwd line.
func userResult(u nss.UserRecord) result {
	return result{
		text: u.Name + ":" + u.Passwd + ":" + formatID(u.UID) + ":" + formatID(u.GID) + ":" +
			u.Gecos + ":" + u.Dir + ":" + u.Shell,
		fields: []field{
			{"name", u.Name},
			{"passwd", u.Passwd},
			{"uid", u.UID},
			{"gid", u.GID},
			{"gecos", u.Gecos},
			{"dir", u.Dir},
			{"shell", u.Shell},
		},
	}
}
