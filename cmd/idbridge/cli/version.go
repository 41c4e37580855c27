package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"github.com/ubuntu/idbridge/internal/consts"
	"github.com/ubuntu/idbridge/log"
	"gorbe.io/go/osrelease"
)

// hostOS returns the pretty name of the host distribution. osrelease keeps its result in
// a package variable, so it is parsed only once.
var hostOS = sync.OnceValue(func() string {
	if err := osrelease.Parse(); err != nil {
		log.Debugf(context.Background(), "Could not read the host release: %v", err)
		return "unknown"
	}
	if osrelease.Release.PrettyName != "" {
		return osrelease.Release.PrettyName
	}
	if osrelease.Release.Name != "" {
		return osrelease.Release.Name
	}
	return "unknown"
})

func (a *App) installVersion() {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Returns version of the command line tool and the host system",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if _, err := fmt.Fprintf(w, "%s\t%s\n", consts.CmdName, consts.Version); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "os\t%s\n", hostOS())
			return err
		},
	}
	a.rootCmd.AddCommand(cmd)
}
