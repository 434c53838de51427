package model

import (
	"time"
)

// Contract status constants
const (
	StatusDraft            = "draft"
	StatusSubmitted        = "submitted"
	StatusPendingCEO       = "pending_ceo"
	StatusChangesRequested = "changes_requested"
	StatusApproved         = "approved"
	StatusRejected         = "rejected"
)

// Composite status filter accepted by the list endpoint: Submitted plus PendingCEO.
const StatusUnderReview = "under_review"

// Contract type constants
const (
	TypeCAPEX = "CAPEX"
	TypeOPEX  = "OPEX"
)

// Review decision constants
const (
	DecisionApproved         = "approved"
	DecisionRejected         = "rejected"
	DecisionChangesRequested = "changes_requested"
)

// Contract is the central aggregate routed through the approval workflow.
type Contract struct {
	ID string `json:"id"`

	// Classification
	Entity           string    `json:"entity"`
	Department       string    `json:"department"`
	Contractor       string    `json:"contractor"`
	ContractType     string    `json:"contract_type"` // CAPEX or OPEX
	Amount           float64   `json:"amount"`
	Currency         string    `json:"currency"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	ExtensionOptions bool      `json:"extension_options"`

	// Narrative
	ScopeOfWork           string `json:"scope_of_work"`
	Background            string `json:"background"`
	TenderSummary         string `json:"tender_summary,omitempty"`
	TechnicalEvaluation   string `json:"technical_evaluation,omitempty"`
	CommercialEvaluation  string `json:"commercial_evaluation,omitempty"`
	SpecialConsiderations string `json:"special_considerations,omitempty"`
	Deviations            string `json:"deviations,omitempty"`

	// Risk
	LiabilityCapPercent   float64       `json:"liability_cap_percent"`
	Subcontracting        bool          `json:"subcontracting"`
	SubcontractingPercent float64       `json:"subcontracting_percent"`
	RiskDescription       string        `json:"risk_description,omitempty"`
	MitigationMeasures    string        `json:"mitigation_measures,omitempty"`
	DetectedTriggers      []RiskTrigger `json:"detected_triggers"`
	IsHighRisk            bool          `json:"is_high_risk"`

	// Workflow
	Status             string          `json:"status"`
	SubmitterID        string          `json:"submitter_id"`
	SubmissionDate     *time.Time      `json:"submission_date,omitempty"`
	CorporateApprovals map[string]bool `json:"corporate_approvals"`
	Reviews            []Review        `json:"reviews"`
	AdHocReviewers     []string        `json:"adhoc_reviewers"`
	Comments           []Comment       `json:"comments"`
	HasUnreadComments  bool            `json:"has_unread_comments"`
	AuditTrail         []AuditEntry    `json:"audit_trail"`

	// Attachments
	Attachments []Document `json:"attachments"`

	// Cached AI risk analysis, advisory only
	AIAnalysis string `json:"ai_analysis,omitempty"`

	// Compliance
	DDQNumber     string     `json:"ddq_number,omitempty"`
	DDQDate       *time.Time `json:"ddq_date,omitempty"`
	DDQValidUntil *time.Time `json:"ddq_valid_until,omitempty"`
	OtherChecks   string     `json:"other_checks,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Review records one completed approval decision on a contract.
type Review struct {
	ReviewerID   string    `json:"reviewer_id"`
	ReviewerName string    `json:"reviewer_name"`
	Role         string    `json:"role"`
	Decision     string    `json:"decision"`
	Comment      string    `json:"comment,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Comment is a free-text remark attached to a contract.
type Comment struct {
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Role       string    `json:"role"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
}

// AuditEntry is one row of the append-only action log.
type AuditEntry struct {
	ActorID   string    `json:"actor_id"`
	ActorName string    `json:"actor_name"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Document holds attachment metadata; the content lives in object storage.
type Document struct {
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// IsTerminal reports whether the contract has reached a final status.
func (c *Contract) IsTerminal() bool {
	return c.Status == StatusApproved || c.Status == StatusRejected
}

// Clone returns a deep copy so store consumers never share internal state.
func (c *Contract) Clone() *Contract {
	cp := *c
	if c.SubmissionDate != nil {
		d := *c.SubmissionDate
		cp.SubmissionDate = &d
	}
	if c.DDQDate != nil {
		d := *c.DDQDate
		cp.DDQDate = &d
	}
	if c.DDQValidUntil != nil {
		d := *c.DDQValidUntil
		cp.DDQValidUntil = &d
	}
	cp.DetectedTriggers = append([]RiskTrigger(nil), c.DetectedTriggers...)
	cp.Reviews = append([]Review(nil), c.Reviews...)
	cp.AdHocReviewers = append([]string(nil), c.AdHocReviewers...)
	cp.Comments = append([]Comment(nil), c.Comments...)
	cp.AuditTrail = append([]AuditEntry(nil), c.AuditTrail...)
	cp.Attachments = append([]Document(nil), c.Attachments...)
	cp.CorporateApprovals = make(map[string]bool, len(c.CorporateApprovals))
	for k, v := range c.CorporateApprovals {
		cp.CorporateApprovals[k] = v
	}
	return &cp
}
