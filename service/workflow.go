package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/Trident-Energy/TridentEnergy-ContractGuard/model"
)

// Workflow actions, consulted through AllowedActions before any transition.
const (
	ActionEdit           = "edit"
	ActionSubmit         = "submit"
	ActionApprove        = "approve"
	ActionReject         = "reject"
	ActionRequestChanges = "request_changes"
	ActionComment        = "comment"
	ActionAddReviewer    = "add_reviewer"
)

// CEO escalation threshold. High-risk contracts escalate regardless of value.
const CEOValueThreshold = 5_000_000

// WorkflowService routes contracts through the review process. Every
// successful mutation appends exactly one audit entry and is all-or-nothing:
// it operates on a store copy and only persists after validation passes.
type WorkflowService struct {
	contracts ContractRepository
	users     UserRepository
}

func NewWorkflowService(contracts ContractRepository, users UserRepository) *WorkflowService {
	return &WorkflowService{contracts: contracts, users: users}
}

// AllowedActions returns the set of workflow actions a role may take on a
// contract in the given status. Authorization lives here, not in handlers.
func AllowedActions(role, status string) map[string]bool {
	actions := map[string]bool{}

	// Comments are allowed in every state, including terminal ones, for
	// record-keeping.
	actions[ActionComment] = true

	switch status {
	case model.StatusDraft, model.StatusChangesRequested:
		if role == model.RoleSubmitter || role == model.RoleAdmin {
			actions[ActionEdit] = true
			actions[ActionSubmit] = true
		}
	case model.StatusSubmitted:
		switch role {
		case model.RoleCFO, model.RoleLegal, model.RoleFunctionHead, model.RoleAdHoc:
			actions[ActionApprove] = true
			actions[ActionReject] = true
			actions[ActionRequestChanges] = true
		}
	case model.StatusPendingCEO:
		switch role {
		case model.RoleCEO, model.RoleAdHoc:
			actions[ActionApprove] = true
			actions[ActionReject] = true
			actions[ActionRequestChanges] = true
		}
	}

	if status != model.StatusApproved && status != model.StatusRejected {
		switch role {
		case model.RoleAdmin, model.RoleCFO, model.RoleLegal, model.RoleFunctionHead, model.RoleCEO:
			actions[ActionAddReviewer] = true
		}
	}

	return actions
}

// RequiredApprovals returns the corporate approval slots a contract must
// collect before leaving standard review. CFO and Function Head always;
// Legal joins for high-risk contracts.
func RequiredApprovals(c *model.Contract) []string {
	required := []string{model.RoleCFO, model.RoleFunctionHead}
	if c.IsHighRisk {
		required = append(required, model.RoleLegal)
	}
	return required
}

// NeedsCEO reports whether a contract must pass the CEO stage.
func NeedsCEO(c *model.Contract) bool {
	return c.IsHighRisk || c.Amount > CEOValueThreshold
}

// CreateDraft builds a new contract in Draft status owned by the actor and
// runs the risk evaluator on it.
func (s *WorkflowService) CreateDraft(actorID string, c *model.Contract) (*model.Contract, error) {
	actor, err := s.users.GetByID(actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != model.RoleSubmitter && actor.Role != model.RoleAdmin {
		return nil, fmt.Errorf("role %s may not create contracts: %w", actor.Role, ErrForbidden)
	}
	if c.Amount < 0 {
		return nil, fmt.Errorf("amount must be non-negative: %w", ErrValidation)
	}
	if c.Entity != "" && !model.ValidEntity(c.Entity) {
		return nil, fmt.Errorf("unknown entity %q: %w", c.Entity, ErrValidation)
	}

	if c.Entity == "" {
		c.Entity = actor.Entity
	}
	if c.ContractType == "" {
		c.ContractType = DeriveContractType(c.Amount)
	}
	if c.Currency == "" {
		c.Currency = "USD"
	}

	c.ID = s.contracts.NextID()
	c.Status = model.StatusDraft
	c.SubmitterID = actor.ID
	c.SubmissionDate = nil
	c.CorporateApprovals = map[string]bool{}
	c.Reviews = nil
	c.AuditTrail = nil
	c.CreatedAt = time.Now()
	ApplyRisk(c)
	appendAudit(c, actor, "Created Contract", "")

	s.contracts.Upsert(c)
	return c, nil
}

// UpdateDraft applies submitter edits to a contract in Draft or
// Changes-Requested status and re-runs the risk evaluator.
func (s *WorkflowService) UpdateDraft(actorID string, c *model.Contract) (*model.Contract, error) {
	actor, err := s.users.GetByID(actorID)
	if err != nil {
		return nil, err
	}
	current, err := s.contracts.GetByID(c.ID)
	if err != nil {
		return nil, err
	}
	if !AllowedActions(actor.Role, current.Status)[ActionEdit] {
		return nil, fmt.Errorf("role %s may not edit a %s contract: %w", actor.Role, current.Status, ErrForbidden)
	}
	if c.Amount < 0 {
		return nil, fmt.Errorf("amount must be non-negative: %w", ErrValidation)
	}
	if c.Entity != "" && !model.ValidEntity(c.Entity) {
		return nil, fmt.Errorf("unknown entity %q: %w", c.Entity, ErrValidation)
	}

	// Workflow bookkeeping is never client-writable.
	c.Status = current.Status
	c.SubmitterID = current.SubmitterID
	c.SubmissionDate = current.SubmissionDate
	c.CorporateApprovals = current.CorporateApprovals
	c.Reviews = current.Reviews
	c.AdHocReviewers = current.AdHocReviewers
	c.Comments = current.Comments
	c.HasUnreadComments = current.HasUnreadComments
	c.AuditTrail = current.AuditTrail
	c.Attachments = current.Attachments
	c.AIAnalysis = current.AIAnalysis
	c.CreatedAt = current.CreatedAt

	if c.ContractType == "" {
		c.ContractType = DeriveContractType(c.Amount)
	}
	ApplyRisk(c)
	appendAudit(c, actor, "Updated Contract", "")

	s.contracts.Upsert(c)
	return c, nil
}

// Submit moves a contract from Draft or Changes-Requested into Submitted.
// The submission date is stamped on the first submit only; approvals
// gathered before a changes-requested cycle are preserved.
func (s *WorkflowService) Submit(contractID, actorID string) (*model.Contract, error) {
	actor, err := s.users.GetByID(actorID)
	if err != nil {
		return nil, err
	}
	c, err := s.contracts.GetByID(contractID)
	if err != nil {
		return nil, err
	}
	if !AllowedActions(actor.Role, c.Status)[ActionSubmit] {
		if c.Status != model.StatusDraft && c.Status != model.StatusChangesRequested {
			return nil, fmt.Errorf("cannot submit a %s contract: %w", c.Status, ErrInvalidTransition)
		}
		return nil, fmt.Errorf("role %s may not submit: %w", actor.Role, ErrForbidden)
	}
	if err := validateForSubmission(c); err != nil {
		return nil, err
	}

	resubmission := c.Status == model.StatusChangesRequested
	c.Status = model.StatusSubmitted
	if c.SubmissionDate == nil {
		now := time.Now()
		c.SubmissionDate = &now
	}
	if c.CorporateApprovals == nil {
		c.CorporateApprovals = map[string]bool{}
	}
	for _, role := range RequiredApprovals(c) {
		if _, ok := c.CorporateApprovals[role]; !ok {
			c.CorporateApprovals[role] = false
		}
	}

	action := "Submitted Contract"
	if resubmission {
		action = "Resubmitted Contract"
	}
	appendAudit(c, actor, action, "")

	s.contracts.Upsert(c)
	return c, nil
}

// Decide records an approval decision. Standard-role approvals fill the
// corporate approval slots and may advance the status; ad-hoc reviewer
// decisions are recorded as advisory reviews only.
func (s *WorkflowService) Decide(contractID, actorID, decision, comment string) (*model.Contract, error) {
	actor, err := s.users.GetByID(actorID)
	if err != nil {
		return nil, err
	}
	c, err := s.contracts.GetByID(contractID)
	if err != nil {
		return nil, err
	}
	if c.IsTerminal() {
		return nil, fmt.Errorf("contract is %s: %w", c.Status, ErrInvalidTransition)
	}

	role := actor.Role
	if role == model.RoleAdHoc && !contains(c.AdHocReviewers, actor.ID) {
		return nil, fmt.Errorf("user %s is not on the review chain: %w", actor.ID, ErrForbidden)
	}

	var action string
	switch decision {
	case model.DecisionApproved:
		if !AllowedActions(role, c.Status)[ActionApprove] {
			return nil, fmt.Errorf("role %s may not approve a %s contract: %w", role, c.Status, ErrForbidden)
		}
		action = "Approved"
	case model.DecisionRejected:
		if !AllowedActions(role, c.Status)[ActionReject] {
			return nil, fmt.Errorf("role %s may not reject a %s contract: %w", role, c.Status, ErrForbidden)
		}
		action = "Rejected"
	case model.DecisionChangesRequested:
		if !AllowedActions(role, c.Status)[ActionRequestChanges] {
			return nil, fmt.Errorf("role %s may not request changes on a %s contract: %w", role, c.Status, ErrForbidden)
		}
		action = "Requested Changes"
	default:
		return nil, fmt.Errorf("unknown decision %q: %w", decision, ErrValidation)
	}

	c.Reviews = append(c.Reviews, model.Review{
		ReviewerID:   actor.ID,
		ReviewerName: actor.Name,
		Role:         role,
		Decision:     decision,
		Comment:      comment,
		Timestamp:    time.Now(),
	})

	switch decision {
	case model.DecisionApproved:
		switch {
		case role == model.RoleAdHoc:
			// Advisory only: no approval slot, no status change.
		case role == model.RoleCEO:
			c.Status = model.StatusApproved
		default:
			c.CorporateApprovals[role] = true
			if approvalsComplete(c) {
				if NeedsCEO(c) {
					c.Status = model.StatusPendingCEO
				} else {
					c.Status = model.StatusApproved
				}
			}
		}
	case model.DecisionRejected:
		if role != model.RoleAdHoc {
			c.Status = model.StatusRejected
		}
	case model.DecisionChangesRequested:
		if role != model.RoleAdHoc {
			// Existing approvals from other roles are kept.
			c.Status = model.StatusChangesRequested
		}
	}

	appendAudit(c, actor, action+" Contract", comment)

	s.contracts.Upsert(c)
	return c, nil
}

// AddComment appends a remark. Allowed in every state, including after a
// terminal decision. The unread flag is shared per contract.
func (s *WorkflowService) AddComment(contractID, actorID, text string) (*model.Contract, error) {
	actor, err := s.users.GetByID(actorID)
	if err != nil {
		return nil, err
	}
	c, err := s.contracts.GetByID(contractID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty comment: %w", ErrValidation)
	}

	c.Comments = append(c.Comments, model.Comment{
		AuthorID:   actor.ID,
		AuthorName: actor.Name,
		Role:       actor.Role,
		Text:       text,
		Timestamp:  time.Now(),
	})
	c.HasUnreadComments = true
	appendAudit(c, actor, "Added Comment", "")

	s.contracts.Upsert(c)
	return c, nil
}

// MarkCommentsRead clears the shared unread flag.
func (s *WorkflowService) MarkCommentsRead(contractID string) error {
	c, err := s.contracts.GetByID(contractID)
	if err != nil {
		return err
	}
	c.HasUnreadComments = false
	s.contracts.Upsert(c)
	return nil
}

// AddAdHocReviewer attaches a user to the review chain outside the
// standard role set. Only possible while the contract is still in flight.
func (s *WorkflowService) AddAdHocReviewer(contractID, actorID, reviewerID string) (*model.Contract, error) {
	actor, err := s.users.GetByID(actorID)
	if err != nil {
		return nil, err
	}
	reviewer, err := s.users.GetByID(reviewerID)
	if err != nil {
		return nil, err
	}
	c, err := s.contracts.GetByID(contractID)
	if err != nil {
		return nil, err
	}
	if c.IsTerminal() {
		return nil, fmt.Errorf("contract is %s: %w", c.Status, ErrInvalidTransition)
	}
	if !AllowedActions(actor.Role, c.Status)[ActionAddReviewer] {
		return nil, fmt.Errorf("role %s may not add reviewers: %w", actor.Role, ErrForbidden)
	}
	if contains(c.AdHocReviewers, reviewer.ID) {
		return c, nil
	}

	c.AdHocReviewers = append(c.AdHocReviewers, reviewer.ID)
	appendAudit(c, actor, "Added Ad-hoc Reviewer", reviewer.Name)

	s.contracts.Upsert(c)
	return c, nil
}

// AttachDocument records attachment metadata on the contract. The blob
// itself lives in object storage.
func (s *WorkflowService) AttachDocument(contractID, actorID string, doc model.Document) (*model.Contract, error) {
	actor, err := s.users.GetByID(actorID)
	if err != nil {
		return nil, err
	}
	c, err := s.contracts.GetByID(contractID)
	if err != nil {
		return nil, err
	}

	c.Attachments = append(c.Attachments, doc)
	appendAudit(c, actor, "Uploaded Attachment", doc.Name)

	s.contracts.Upsert(c)
	return c, nil
}

// CacheAnalysis stores AI-generated risk commentary on the contract. The
// text is advisory and never gates a transition, so no audit entry.
func (s *WorkflowService) CacheAnalysis(contractID, text string) error {
	c, err := s.contracts.GetByID(contractID)
	if err != nil {
		return err
	}
	c.AIAnalysis = text
	s.contracts.Upsert(c)
	return nil
}

func validateForSubmission(c *model.Contract) error {
	var missing []string
	if c.Contractor == "" {
		missing = append(missing, "contractor")
	}
	if c.Department == "" {
		missing = append(missing, "department")
	}
	if c.ScopeOfWork == "" {
		missing = append(missing, "scope_of_work")
	}
	if !model.ValidEntity(c.Entity) {
		missing = append(missing, "entity")
	}
	if c.Amount <= 0 {
		missing = append(missing, "amount")
	}
	if c.ContractType != model.TypeCAPEX && c.ContractType != model.TypeOPEX {
		missing = append(missing, "contract_type")
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() || c.EndDate.Before(c.StartDate) {
		missing = append(missing, "dates")
	}
	if len(missing) > 0 {
		return fmt.Errorf("incomplete contract, missing or invalid: %s: %w", strings.Join(missing, ", "), ErrValidation)
	}
	return nil
}

func approvalsComplete(c *model.Contract) bool {
	for _, role := range RequiredApprovals(c) {
		if !c.CorporateApprovals[role] {
			return false
		}
	}
	return true
}

func appendAudit(c *model.Contract, actor *model.User, action, details string) {
	c.AuditTrail = append(c.AuditTrail, model.AuditEntry{
		ActorID:   actor.ID,
		ActorName: actor.Name,
		Action:    action,
		Details:   details,
		Timestamp: time.Now(),
	})
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
