// Package v16 implements the OCPP 1.6 protocol adapter: the
// Authorize.req/Authorize.conf wire shapes (spec §6) and the translation
// into/out of the unified model (spec §4.1).
package v16

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ocppauth/core/internal/obslog"
	"github.com/ocppauth/core/pkg/authcoreerr"
	"github.com/ocppauth/core/pkg/authconfig"
	"github.com/ocppauth/core/pkg/authmodel"
)

// authorizeReq is the OCPP 1.6 Authorize.req payload: `{ idTag: string
// (<=20 chars) }` (spec §6).
type authorizeReq struct {
	IDTag string `json:"idTag"`
}

// idTagInfo is the nested status object in Authorize.conf.
type idTagInfo struct {
	Status        string  `json:"status"`
	ExpiryDate    *string `json:"expiryDate,omitempty"`
	ParentIDTag   *string `json:"parentIdTag,omitempty"`
}

// authorizeConf is the OCPP 1.6 Authorize.conf payload.
type authorizeConf struct {
	IDTagInfo idTagInfo `json:"idTagInfo"`
}

var knownV16Statuses = map[string]bool{
	"Accepted": true, "Blocked": true, "Expired": true, "Invalid": true, "ConcurrentTx": true,
}

// Adapter is the OCPP 1.6 protocol adapter. It speaks to a CSMS over a
// caller-supplied HTTP endpoint that fronts the station's Authorize.req —
// the core treats this as opaque per spec §4.5; a real deployment would
// swap the transport for the station's actual OCPP-J WebSocket link.
type Adapter struct {
	endpoint string
	client   *http.Client
}

// New builds a v1.6 adapter that POSTs Authorize.req as JSON to endpoint.
func New(endpoint string, client *http.Client) *Adapter {
	if client == nil {
		client = http.DefaultClient
	}
	return &Adapter{endpoint: endpoint, client: client}
}

// Version implements protocol.Adapter.
func (*Adapter) Version() authmodel.OCPPVersion { return authmodel.OCPPV16 }

// ValidateConfiguration implements protocol.Adapter.
func (a *Adapter) ValidateConfiguration(_ authconfig.Config) bool {
	return a.endpoint != ""
}

// IsRemoteAvailable implements protocol.Adapter with a cheap HEAD probe.
func (a *Adapter) IsRemoteAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, a.endpoint, nil)
	if err != nil {
		return false
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 500
}

// AuthorizeRemote implements protocol.Adapter.
func (a *Adapter) AuthorizeRemote(ctx context.Context, identifier authmodel.UnifiedIdentifier, _ *int, _ *string) (authmodel.AuthorizationResult, error) {
	if len(identifier.Value) > 20 {
		return authmodel.AuthorizationResult{}, authcoreerr.New(authcoreerr.InvalidIdentifier,
			"idTag %q exceeds the 20 character limit for OCPP 1.6", identifier.Value)
	}

	body, err := json.Marshal(authorizeReq{IDTag: identifier.Value})
	if err != nil {
		return authmodel.AuthorizationResult{}, authcoreerr.Wrap(authcoreerr.AdapterError, err, "encoding Authorize.req")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return authmodel.AuthorizationResult{}, authcoreerr.Wrap(authcoreerr.AdapterError, err, "building Authorize.req")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return authmodel.AuthorizationResult{}, authcoreerr.Wrap(authcoreerr.NetworkError, err, "Authorize.req transport failure")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return authmodel.AuthorizationResult{}, authcoreerr.New(authcoreerr.NetworkError,
			"Authorize.req returned unexpected status %d", resp.StatusCode)
	}

	var conf authorizeConf
	if err := json.NewDecoder(resp.Body).Decode(&conf); err != nil {
		return authmodel.AuthorizationResult{}, authcoreerr.Wrap(authcoreerr.AdapterError, err, "decoding Authorize.conf")
	}

	status := authmodel.V16StatusToUnified(authmodel.V16Status(conf.IDTagInfo.Status))
	if !knownV16Statuses[conf.IDTagInfo.Status] {
		obslog.Warnf("v16 adapter: unrecognized idTagInfo.status %q from CSMS, translating to INVALID", conf.IDTagInfo.Status)
	}

	result := authmodel.AuthorizationResult{
		Status:    status,
		Timestamp: time.Now(),
	}
	if conf.IDTagInfo.ExpiryDate != nil {
		if t, err := time.Parse(time.RFC3339, *conf.IDTagInfo.ExpiryDate); err == nil {
			result.ExpiryDate = &t
		}
	}
	if conf.IDTagInfo.ParentIDTag != nil {
		result.ParentID = *conf.IDTagInfo.ParentIDTag
	}
	return result, nil
}
