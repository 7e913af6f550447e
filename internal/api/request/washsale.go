package request

type WashSaleScanRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}
