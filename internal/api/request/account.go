package request

type CreateAccountRequest struct {
	PortfolioID      string `json:"portfolioId"`
	CostBasisMethod  string `json:"costBasisMethod"`
	WashSaleTracking bool   `json:"washSaleTracking"`
	AccountType      string `json:"accountType,omitempty"`
}

type UpdateAccountSettingsRequest struct {
	CostBasisMethod  string `json:"costBasisMethod"`
	WashSaleTracking bool   `json:"washSaleTracking"`
}
