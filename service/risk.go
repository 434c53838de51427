package service

import (
	"github.com/Trident-Energy/TridentEnergy-ContractGuard/model"
)

// Financial thresholds for the auto-computed triggers.
const (
	OpexThreshold  = 1_000_000
	CapexThreshold = 5_000_000
)

// Trigger catalog ids
const (
	TriggerOpexOver1M       = "opex_gt_1m"
	TriggerCapexOver5M      = "capex_gt_5m"
	TriggerLiabilityCap     = "liability_cap_below_100"
	TriggerLongTerm         = "fixed_term_over_3y"
	TriggerSubcontracting   = "subcontracting_over_30"
	TriggerSoleSource       = "sole_source"
	TriggerHazmat           = "hazardous_materials"
	TriggerConflictZone     = "conflict_zone"
	TriggerIPRisk           = "ip_risk"
	TriggerPaymentTerms     = "non_standard_payment_terms"
	TriggerEnvironmental    = "significant_environmental_impact"
)

// riskCatalog is the fixed set of trigger definitions. Only the two
// financial rules are auto-computed; the rest are manually-checked flags
// set by reviewers.
var riskCatalog = []model.RiskTrigger{
	{ID: TriggerOpexOver1M, Category: model.RiskFinancial, Description: "OPEX contract value above 1M USD"},
	{ID: TriggerCapexOver5M, Category: model.RiskFinancial, Description: "CAPEX contract value above 5M USD"},
	{ID: TriggerLiabilityCap, Category: model.RiskLegal, Description: "Liability cap below 100% of contract value"},
	{ID: TriggerLongTerm, Category: model.RiskOperational, Description: "Fixed term longer than 3 years"},
	{ID: TriggerSubcontracting, Category: model.RiskThirdParty, Description: "Subcontracted share above 30%"},
	{ID: TriggerSoleSource, Category: model.RiskOperational, Description: "Sole-source award without tender"},
	{ID: TriggerHazmat, Category: model.RiskEnvironmental, Description: "Handling of hazardous materials"},
	{ID: TriggerConflictZone, Category: model.RiskOperational, Description: "Work performed in a conflict zone"},
	{ID: TriggerIPRisk, Category: model.RiskLegal, Description: "Intellectual property exposure"},
	{ID: TriggerPaymentTerms, Category: model.RiskFinancial, Description: "Non-standard payment terms"},
	{ID: TriggerEnvironmental, Category: model.RiskEnvironmental, Description: "Significant environmental impact"},
}

// RiskCatalog returns a copy of the trigger catalog.
func RiskCatalog() []model.RiskTrigger {
	return append([]model.RiskTrigger(nil), riskCatalog...)
}

// RiskInput carries the contract attributes the evaluator inspects.
// ManualTriggers holds catalog ids reviewers have flagged by hand.
type RiskInput struct {
	ContractType   string
	Amount         float64
	ManualTriggers []string
}

// RiskResult is the evaluator output.
type RiskResult struct {
	DetectedTriggers []model.RiskTrigger
	IsHighRisk       bool
}

// EvaluateRisk maps contract attributes to the set of triggered risk
// flags. Pure and deterministic: same input, same output. Classification
// governs which financial rule applies, so a 6M OPEX contract trips the
// OPEX rule and never the CAPEX one.
func EvaluateRisk(in RiskInput) RiskResult {
	manual := make(map[string]bool, len(in.ManualTriggers))
	for _, id := range in.ManualTriggers {
		manual[id] = true
	}

	var detected []model.RiskTrigger
	for _, def := range riskCatalog {
		triggered := manual[def.ID]
		switch def.ID {
		case TriggerOpexOver1M:
			triggered = in.ContractType == model.TypeOPEX && in.Amount > OpexThreshold
		case TriggerCapexOver5M:
			triggered = in.ContractType == model.TypeCAPEX && in.Amount > CapexThreshold
		}
		if triggered {
			t := def
			t.Triggered = true
			detected = append(detected, t)
		}
	}

	return RiskResult{
		DetectedTriggers: detected,
		IsHighRisk:       len(detected) > 0,
	}
}

// DeriveContractType classifies a contract by value when the submitter
// does not set the type explicitly.
func DeriveContractType(amount float64) string {
	if amount > OpexThreshold {
		return model.TypeCAPEX
	}
	return model.TypeOPEX
}

// ApplyRisk runs the evaluator against a contract and stores the result
// on it, preserving any manually flagged triggers.
func ApplyRisk(c *model.Contract) {
	var manual []string
	for _, t := range c.DetectedTriggers {
		if t.ID != TriggerOpexOver1M && t.ID != TriggerCapexOver5M {
			manual = append(manual, t.ID)
		}
	}
	res := EvaluateRisk(RiskInput{
		ContractType:   c.ContractType,
		Amount:         c.Amount,
		ManualTriggers: manual,
	})
	c.DetectedTriggers = res.DetectedTriggers
	c.IsHighRisk = res.IsHighRisk
}
