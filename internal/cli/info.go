package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <url>",
		Short: "Show title, uploader and duration of a video",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfo,
	}
}

func runInfo(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	controller := rt.newController()

	ctx, cancel := rt.resolveContext(cmd.Context())
	defer cancel()
	if err := controller.Submit(ctx, args[0]); err != nil {
		return sessionError(controller, err)
	}

	md, _ := controller.Snapshot().Metadata()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Title:    %s\n", md.Title)
	if md.Uploader != "" {
		fmt.Fprintf(out, "Uploader: %s\n", md.Uploader)
	}
	fmt.Fprintf(out, "Duration: %s\n", md.GetDurationString())
	return nil
}
