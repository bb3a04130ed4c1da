package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/ytget/ytgrab/internal/api"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the media service is reachable",
		Args:  cobra.NoArgs,
		RunE:  runHealth,
	}
}

func runHealth(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := rt.resolveContext(cmd.Context())
	defer cancel()
	if err := rt.client.Health(ctx); err != nil {
		if api.IsStatus(err, http.StatusNotFound) {
			return fmt.Errorf("service at %s answers but has no %s endpoint: %w", rt.client.BaseURL(), api.HealthPath, err)
		}
		return fmt.Errorf("service at %s is not healthy: %w", rt.client.BaseURL(), err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "service at %s is up\n", rt.client.BaseURL())
	return nil
}
