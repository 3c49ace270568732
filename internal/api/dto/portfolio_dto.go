package dto

import "github.com/spec-kit/loan-service/internal/domain"

// MetricDataResponse is one bucket of the portfolio summary.
type MetricDataResponse struct {
	Count  int64   `json:"count"`
	Amount float64 `json:"amount"`
}

// PortfolioMetricsResponse summarizes reviewed applications for a period.
type PortfolioMetricsResponse struct {
	Period                string             `json:"period"`
	TotalApplications     MetricDataResponse `json:"totalApplications"`
	SubmittedApplications MetricDataResponse `json:"submittedApplications"`
	ApprovedApplications  MetricDataResponse `json:"approvedApplications"`
	RejectedApplications  MetricDataResponse `json:"rejectedApplications"`
}

func NewPortfolioMetricsResponse(m domain.PortfolioMetrics) PortfolioMetricsResponse {
	bucket := func(d domain.MetricData) MetricDataResponse {
		return MetricDataResponse{Count: d.Count, Amount: d.Amount}
	}
	return PortfolioMetricsResponse{
		Period:                m.Period,
		TotalApplications:     bucket(m.Total),
		SubmittedApplications: bucket(m.Submitted),
		ApprovedApplications:  bucket(m.Approved),
		RejectedApplications:  bucket(m.Rejected),
	}
}
