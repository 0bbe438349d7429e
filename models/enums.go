package models

import "errors"

type ItemCategory string

const (
	ItemCategoryRawMaterial ItemCategory = "raw_material"
	ItemCategoryPackaging   ItemCategory = "packaging"
	ItemCategoryPart        ItemCategory = "part"
	ItemCategoryProduct     ItemCategory = "product"
)

func (c ItemCategory) IsValid() bool {
	switch c {
	case ItemCategoryRawMaterial, ItemCategoryPackaging, ItemCategoryPart, ItemCategoryProduct:
		return true
	}
	return false
}

func ParseItemCategory(s string) (ItemCategory, error) {
	c := ItemCategory(s)
	if !c.IsValid() {
		return "", errors.New("invalid item category")
	}
	return c, nil
}

type TransactionDirection string

const (
	TransactionDirectionIn  TransactionDirection = "in"
	TransactionDirectionOut TransactionDirection = "out"
)

func (d TransactionDirection) IsValid() bool {
	return d == TransactionDirectionIn || d == TransactionDirectionOut
}

// CostRole decides which formula a cost component uses. Dispatch is on this
// typed value, never on the component's display name.
type CostRole string

const (
	CostRoleMaterial   CostRole = "material"
	CostRoleLabor      CostRole = "labor"
	CostRoleManagement CostRole = "management"
	CostRoleTransport  CostRole = "transport"
	CostRoleTax        CostRole = "tax"
	CostRoleOther      CostRole = "other"
)

func (r CostRole) IsValid() bool {
	switch r {
	case CostRoleMaterial, CostRoleLabor, CostRoleManagement, CostRoleTransport, CostRoleTax, CostRoleOther:
		return true
	}
	return false
}

// IsConfigurable reports roles a CostConfigItem may carry. Material cost is
// always derived from the BOM, never configured.
func (r CostRole) IsConfigurable() bool {
	return r.IsValid() && r != CostRoleMaterial
}

type CostKind string

const (
	CostKindFixed      CostKind = "fixed"
	CostKindPercentage CostKind = "percentage"
)

func (k CostKind) IsValid() bool {
	return k == CostKindFixed || k == CostKindPercentage
}

type ProfitStatus string

const (
	ProfitStatusProfit    ProfitStatus = "profit"
	ProfitStatusLoss      ProfitStatus = "loss"
	ProfitStatusBreakEven ProfitStatus = "break_even"
	ProfitStatusUnknown   ProfitStatus = "unknown"
)
