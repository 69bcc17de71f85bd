package enums

import "fmt"

// AssetType classifies an IP asset within a game franchise.
type AssetType string

const (
	AssetTypeCharacter AssetType = "character"
	AssetTypeLogo      AssetType = "logo"
	AssetTypeScene     AssetType = "scene"
	AssetTypeItem      AssetType = "item"
	AssetTypeTheme     AssetType = "theme"
	AssetTypeOther     AssetType = "other"
)

var validAssetTypes = []AssetType{
	AssetTypeCharacter,
	AssetTypeLogo,
	AssetTypeScene,
	AssetTypeItem,
	AssetTypeTheme,
	AssetTypeOther,
}

// String implements fmt.Stringer.
func (t AssetType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known AssetType.
func (t AssetType) IsValid() bool {
	for _, candidate := range validAssetTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseAssetType converts raw input into an AssetType.
func ParseAssetType(value string) (AssetType, error) {
	for _, candidate := range validAssetTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid asset type %q", value)
}
