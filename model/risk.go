package model

// Risk category constants
const (
	RiskFinancial     = "financial"
	RiskLegal         = "legal"
	RiskOperational   = "operational"
	RiskThirdParty    = "third_party"
	RiskEnvironmental = "environmental"
)

// RiskTrigger is one flag from the fixed risk catalog. Contracts carry
// their own evaluated copies with Triggered set.
type RiskTrigger struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Triggered   bool   `json:"triggered"`
}
