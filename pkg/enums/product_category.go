package enums

import "fmt"

// ProductCategory is the closed set of merchandise categories.
type ProductCategory string

const (
	ProductCategoryApparel     ProductCategory = "apparel"
	ProductCategoryAccessory   ProductCategory = "accessory"
	ProductCategoryCollectible ProductCategory = "collectible"
	ProductCategoryHomeGoods   ProductCategory = "home_goods"
	ProductCategoryToy         ProductCategory = "toy"
	ProductCategoryPrint       ProductCategory = "print"
	ProductCategoryDigital     ProductCategory = "digital"
	ProductCategoryOther       ProductCategory = "other"
)

var validProductCategories = []ProductCategory{
	ProductCategoryApparel,
	ProductCategoryAccessory,
	ProductCategoryCollectible,
	ProductCategoryHomeGoods,
	ProductCategoryToy,
	ProductCategoryPrint,
	ProductCategoryDigital,
	ProductCategoryOther,
}

// String implements fmt.Stringer.
func (c ProductCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ProductCategory.
func (c ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}
