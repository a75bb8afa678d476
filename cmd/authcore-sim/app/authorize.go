package app

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ocppauth/core/pkg/authmodel"
)

func newAuthorizeCmd() *cobra.Command {
	var identifierType, ocppVersion, context string
	var allowOffline bool

	cmd := &cobra.Command{
		Use:   "authorize [value]",
		Short: "Run a single authorize request through the station's strategy pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			svc, err := getStation()
			if err != nil {
				return err
			}

			request := authmodel.AuthRequest{
				Identifier: authmodel.UnifiedIdentifier{
					Type:        authmodel.IdentifierType(identifierType),
					Value:       args[0],
					OCPPVersion: authmodel.OCPPVersion(ocppVersion),
				},
				Context:      authmodel.AuthContext(context),
				AllowOffline: allowOffline,
			}

			result := svc.Authorize(cmd.Context(), request)
			encoded, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding result: %w", err)
			}
			fmt.Println(string(encoded))
			return nil
		},
	}

	cmd.Flags().StringVar(&identifierType, "type", string(authmodel.IdentifierIDTag), "Identifier type")
	cmd.Flags().StringVar(&ocppVersion, "ocpp-version", string(authmodel.OCPPV16), "OCPP version")
	cmd.Flags().StringVar(&context, "context", string(authmodel.ContextTransactionStart), "Authorization context")
	cmd.Flags().BoolVar(&allowOffline, "allow-offline", false, "Allow offline fallback")
	return cmd
}
