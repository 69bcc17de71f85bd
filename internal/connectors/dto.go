package connectors

import (
	"time"

	"github.com/google/uuid"
	"github.com/phantomos-app/phantomos-backend/pkg/db/models"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
)

// ConnectorDTO is the wire shape of an installed connector. The access token
// never leaves the service.
type ConnectorDTO struct {
	ID         uuid.UUID               `json:"id"`
	Provider   enums.ConnectorProvider `json:"provider"`
	ShopDomain string                  `json:"shopDomain"`
	Status     enums.ConnectorStatus   `json:"status"`
	LastSyncAt *time.Time              `json:"lastSyncAt,omitempty"`
	CreatedAt  time.Time               `json:"createdAt"`
}

// ConnectInput starts a Shopify install for a shop domain.
type ConnectInput struct {
	ShopDomain string `json:"shopDomain" validate:"required,hostname"`
}

// ConnectResult carries the merchant-facing OAuth grant URL.
type ConnectResult struct {
	ConnectorID  uuid.UUID `json:"connectorId"`
	AuthorizeURL string    `json:"authorizeUrl"`
}

// SyncResult summarizes one sync run.
type SyncResult struct {
	Products int `json:"products"`
	Sales    int `json:"sales"`
}

func toConnectorDTO(c models.Connector) ConnectorDTO {
	return ConnectorDTO{
		ID:         c.ID,
		Provider:   c.Provider,
		ShopDomain: c.ShopDomain,
		Status:     c.Status,
		LastSyncAt: c.LastSyncAt,
		CreatedAt:  c.CreatedAt,
	}
}
