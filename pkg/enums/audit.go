package enums

import "fmt"

// AuditAction is the fixed vocabulary of auditable operations.
type AuditAction string

const (
	AuditActionAssetCreate      AuditAction = "asset.create"
	AuditActionAssetUpdate      AuditAction = "asset.update"
	AuditActionAssetDelete      AuditAction = "asset.delete"
	AuditActionMappingConfirm   AuditAction = "mapping.confirm"
	AuditActionMappingSkip      AuditAction = "mapping.skip"
	AuditActionMappingUnlink    AuditAction = "mapping.unlink"
	AuditActionMappingAddLinks  AuditAction = "mapping.add_links"
	AuditActionMappingBulk      AuditAction = "mapping.bulk_confirm"
	AuditActionMappingBulkSkip  AuditAction = "mapping.bulk_skip"
	AuditActionAutoTag          AuditAction = "ai.auto_tag"
	AuditActionConnectorConnect AuditAction = "connector.connect"
	AuditActionConnectorSync    AuditAction = "connector.sync"
	AuditActionConnectorRemove  AuditAction = "connector.disconnect"
	AuditActionImportCSV        AuditAction = "import.csv"
	AuditActionInviteCreate     AuditAction = "invite.create"
	AuditActionInviteRedeem     AuditAction = "invite.redeem"
)

var validAuditActions = []AuditAction{
	AuditActionAssetCreate,
	AuditActionAssetUpdate,
	AuditActionAssetDelete,
	AuditActionMappingConfirm,
	AuditActionMappingSkip,
	AuditActionMappingUnlink,
	AuditActionMappingAddLinks,
	AuditActionMappingBulk,
	AuditActionMappingBulkSkip,
	AuditActionAutoTag,
	AuditActionConnectorConnect,
	AuditActionConnectorSync,
	AuditActionConnectorRemove,
	AuditActionImportCSV,
	AuditActionInviteCreate,
	AuditActionInviteRedeem,
}

func (a AuditAction) String() string {
	return string(a)
}

func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

func ParseAuditAction(value string) (AuditAction, error) {
	for _, candidate := range validAuditActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit action %q", value)
}

// AuditStatus records whether the audited operation succeeded.
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
	AuditStatusPartial AuditStatus = "partial"
)

func (s AuditStatus) String() string {
	return string(s)
}

func (s AuditStatus) IsValid() bool {
	switch s {
	case AuditStatusSuccess, AuditStatusFailure, AuditStatusPartial:
		return true
	}
	return false
}
