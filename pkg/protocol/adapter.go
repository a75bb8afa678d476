// Package protocol defines the per-OCPP-version adapter contract (spec
// §4.5, §6): the core treats adapters as opaque, with all wire translation
// living inside the adapter implementation. Concrete adapters live in the
// v16 and v201 subpackages.
package protocol

import (
	"context"

	"github.com/ocppauth/core/pkg/authconfig"
	"github.com/ocppauth/core/pkg/authmodel"
)

// Adapter performs the remote-authorize call and availability probe for a
// single OCPP version.
type Adapter interface {
	// AuthorizeRemote issues a single remote authorize call for identifier,
	// optionally scoped to a connector or in-flight transaction.
	AuthorizeRemote(ctx context.Context, identifier authmodel.UnifiedIdentifier, connectorID *int, transactionID *string) (authmodel.AuthorizationResult, error)

	// IsRemoteAvailable is a cheap health probe for the remote backend.
	IsRemoteAvailable(ctx context.Context) bool

	// ValidateConfiguration reports whether cfg is acceptable to this
	// adapter (e.g. required endpoints are configured).
	ValidateConfiguration(cfg authconfig.Config) bool

	// Version reports the OCPP version this adapter serves.
	Version() authmodel.OCPPVersion
}
