package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ytget/ytgrab/internal/model"
)

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <url>",
		Short: "Resolve a video and save its video or audio rendition",
		Args:  cobra.ExactArgs(1),
		RunE:  runGet,
	}

	cmd.Flags().StringP("kind", "k", string(model.KindVideo), "rendition to download: video or audio")

	return cmd
}

func runGet(cmd *cobra.Command, args []string) error {
	kind, err := parseKindFlag(cmd)
	if err != nil {
		return err
	}

	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	controller := rt.newController()
	out := cmd.OutOrStdout()

	resolveCtx, cancel := rt.resolveContext(cmd.Context())
	err = controller.Submit(resolveCtx, args[0])
	cancel()
	if err != nil {
		return sessionError(controller, err)
	}

	if md, ok := controller.Snapshot().Metadata(); ok {
		fmt.Fprintf(out, "%s (%s)\n", md.Title, md.GetDurationString())
	}

	fetchCtx, cancel := rt.fetchContext(cmd.Context())
	err = controller.ConfirmDownload(fetchCtx, kind)
	cancel()
	if err != nil {
		return sessionError(controller, err)
	}

	fmt.Fprintln(out, controller.Snapshot().LastMessage.Text)
	fmt.Fprintln(out, controller.LastSavedPath())
	return nil
}
