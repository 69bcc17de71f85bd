package enums

import "fmt"

// ConnectorProvider identifies an external commerce data source.
type ConnectorProvider string

const (
	ConnectorProviderShopify ConnectorProvider = "shopify"
)

var validConnectorProviders = []ConnectorProvider{
	ConnectorProviderShopify,
}

func (p ConnectorProvider) String() string {
	return string(p)
}

func (p ConnectorProvider) IsValid() bool {
	for _, candidate := range validConnectorProviders {
		if candidate == p {
			return true
		}
	}
	return false
}

func ParseConnectorProvider(value string) (ConnectorProvider, error) {
	for _, candidate := range validConnectorProviders {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid connector provider %q", value)
}

// ConnectorStatus is the lifecycle state of a connector installation.
type ConnectorStatus string

const (
	ConnectorStatusPending      ConnectorStatus = "pending"
	ConnectorStatusActive       ConnectorStatus = "active"
	ConnectorStatusSyncing      ConnectorStatus = "syncing"
	ConnectorStatusError        ConnectorStatus = "error"
	ConnectorStatusDisconnected ConnectorStatus = "disconnected"
)

var validConnectorStatuses = []ConnectorStatus{
	ConnectorStatusPending,
	ConnectorStatusActive,
	ConnectorStatusSyncing,
	ConnectorStatusError,
	ConnectorStatusDisconnected,
}

func (s ConnectorStatus) String() string {
	return string(s)
}

func (s ConnectorStatus) IsValid() bool {
	for _, candidate := range validConnectorStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseConnectorStatus(value string) (ConnectorStatus, error) {
	for _, candidate := range validConnectorStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid connector status %q", value)
}
