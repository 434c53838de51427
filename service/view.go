package service

import (
	"sort"
	"strings"
	"time"

	"github.com/Trident-Energy/TridentEnergy-ContractGuard/model"
)

// Page sizes the list endpoint accepts; anything else is clamped to the default.
var PageSizes = []int{25, 50, 100}

const DefaultPageSize = 25

// ListParams is the filter/sort/pagination parameter set for the contract
// register. Entity and Status accept "all" (or empty) as no-filter.
type ListParams struct {
	Entity       string
	Status       string
	HighRiskOnly bool
	Search       string
	SortDesc     bool
	Page         int
	PageSize     int
}

// ListResult is one page of the filtered, sorted register.
type ListResult struct {
	Items      []*model.Contract `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// DashboardMetrics are the KPI aggregates. They are computed over the
// entity-filtered base only, so the cards stay stable while the table is
// further filtered by status, risk or search.
type DashboardMetrics struct {
	UnderReviewCount int                `json:"under_review_count"`
	TotalValue       float64            `json:"total_value"`
	HighRiskCount    int                `json:"high_risk_count"`
	StatusCounts     map[string]int     `json:"status_counts"`
	EntityValues     map[string]float64 `json:"entity_values"`
}

// ApplyListParams derives one page of the register from the full
// collection. Pure: same collection and params, same output.
func ApplyListParams(contracts []*model.Contract, p ListParams) ListResult {
	filtered := filterContracts(contracts, p)

	// Stable sort keeps the original collection order for equal timestamps.
	sort.SliceStable(filtered, func(i, j int) bool {
		ti, tj := sortDate(filtered[i]), sortDate(filtered[j])
		if p.SortDesc {
			return ti.After(tj)
		}
		return ti.Before(tj)
	})

	p = clampParams(p)
	total := len(filtered)
	totalPages := (total + p.PageSize - 1) / p.PageSize
	if totalPages == 0 {
		totalPages = 1
	}
	if p.Page > totalPages {
		p.Page = totalPages
	}

	start := (p.Page - 1) * p.PageSize
	end := start + p.PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return ListResult{
		Items:      filtered[start:end],
		Total:      total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: totalPages,
	}
}

// ComputeMetrics derives the dashboard aggregates, honoring only the
// entity filter.
func ComputeMetrics(contracts []*model.Contract, entity string) DashboardMetrics {
	m := DashboardMetrics{
		StatusCounts: map[string]int{},
		EntityValues: map[string]float64{},
	}

	for _, c := range contracts {
		if !matchAll(entity) && c.Entity != entity {
			continue
		}
		if c.Status == model.StatusSubmitted || c.Status == model.StatusPendingCEO {
			m.UnderReviewCount++
		}
		if c.IsHighRisk {
			m.HighRiskCount++
		}
		m.TotalValue += c.Amount
		m.StatusCounts[c.Status]++
		m.EntityValues[c.Entity] += c.Amount
	}

	return m
}

// ResolvePage applies the page-reset rule: any filter change or a page
// size change resets to the first page; a sort toggle alone does not.
func ResolvePage(prev, next ListParams) int {
	filtersChanged := prev.Entity != next.Entity ||
		prev.Status != next.Status ||
		prev.HighRiskOnly != next.HighRiskOnly ||
		prev.Search != next.Search
	if filtersChanged || prev.PageSize != next.PageSize {
		return 1
	}
	return next.Page
}

func filterContracts(contracts []*model.Contract, p ListParams) []*model.Contract {
	search := strings.ToLower(strings.TrimSpace(p.Search))

	var result []*model.Contract
	for _, c := range contracts {
		if !matchAll(p.Entity) && c.Entity != p.Entity {
			continue
		}
		if !matchStatus(c.Status, p.Status) {
			continue
		}
		if p.HighRiskOnly && !c.IsHighRisk {
			continue
		}
		if search != "" && !matchSearch(c, search) {
			continue
		}
		result = append(result, c)
	}
	return result
}

func matchAll(v string) bool {
	return v == "" || strings.EqualFold(v, "all")
}

func matchStatus(status, filter string) bool {
	if matchAll(filter) {
		return true
	}
	if filter == model.StatusUnderReview {
		return status == model.StatusSubmitted || status == model.StatusPendingCEO
	}
	return status == filter
}

func matchSearch(c *model.Contract, search string) bool {
	return strings.Contains(strings.ToLower(c.Contractor), search) ||
		strings.Contains(strings.ToLower(c.ID), search) ||
		strings.Contains(strings.ToLower(c.ScopeOfWork), search)
}

// sortDate orders by submission date; drafts that were never submitted
// fall back to creation time.
func sortDate(c *model.Contract) time.Time {
	if c.SubmissionDate != nil {
		return *c.SubmissionDate
	}
	return c.CreatedAt
}

func clampParams(p ListParams) ListParams {
	valid := false
	for _, size := range PageSizes {
		if p.PageSize == size {
			valid = true
			break
		}
	}
	if !valid {
		p.PageSize = DefaultPageSize
	}
	if p.Page < 1 {
		p.Page = 1
	}
	return p
}
