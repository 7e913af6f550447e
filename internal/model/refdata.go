package model

import "fmt"

// AccountType is the brokerage account type of the underlying portfolio.
// The reference-data catalog itself lives upstream; the engine only keeps the
// closed set of values it needs to derive the tax category.
type AccountType string

const (
	AccountType401K         AccountType = "401K"
	AccountType403B         AccountType = "403b"
	AccountTypeRoth401K     AccountType = "ROTH 401K"
	AccountTypeTradIRA      AccountType = "Traditional IRA"
	AccountTypeRothIRA      AccountType = "Roth IRA"
	AccountTypeHSA          AccountType = "HSA"
	AccountTypeSEPIRA       AccountType = "SEP IRA"
	AccountTypeAnnuity      AccountType = "Annuity"
	AccountTypeDeferredComp AccountType = "Deferred Compensation"
	AccountTypeTaxable      AccountType = "Taxable"
	AccountTypeRSU          AccountType = "RSU"
	AccountTypeESPP         AccountType = "ESPP"
	AccountTypeESPPRSU      AccountType = "ESPP & RSU"
	AccountTypeTrust        AccountType = "Trust"
	AccountType529          AccountType = "529"
	AccountTypeUTMA         AccountType = "Custodial UTMA"
	AccountTypeUGMA         AccountType = "Custodial UGMA"
	AccountTypeOther        AccountType = "Other"
)

// AccountCategory groups account types for tax treatment.
type AccountCategory string

const (
	CategoryRetirement AccountCategory = "retirement"
	CategoryBrokerage  AccountCategory = "brokerage"
)

var retirementTypes = map[AccountType]bool{
	AccountType401K: true, AccountType403B: true, AccountTypeRoth401K: true,
	AccountTypeTradIRA: true, AccountTypeRothIRA: true, AccountTypeHSA: true,
	AccountTypeSEPIRA: true, AccountTypeAnnuity: true, AccountTypeDeferredComp: true,
}

var brokerageTypes = map[AccountType]bool{
	AccountTypeTaxable: true, AccountTypeRSU: true, AccountTypeESPP: true,
	AccountTypeESPPRSU: true, AccountTypeTrust: true, AccountType529: true,
	AccountTypeUTMA: true, AccountTypeUGMA: true, AccountTypeOther: true,
}

// ParseAccountType validates an account type string against the closed set.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(s)
	if retirementTypes[t] || brokerageTypes[t] {
		return t, nil
	}
	return "", fmt.Errorf("unknown account type: %q", s)
}

// CategoryFor derives the tax category for an account type.
func CategoryFor(t AccountType) AccountCategory {
	if retirementTypes[t] {
		return CategoryRetirement
	}
	return CategoryBrokerage
}
