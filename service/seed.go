package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Trident-Energy/TridentEnergy-ContractGuard/config"
	"github.com/Trident-Energy/TridentEnergy-ContractGuard/model"
)

// SeedUsers loads the configured accounts into the user repository.
// User ids are derived from usernames so seed contracts can reference them.
func SeedUsers(users UserRepository, seed []config.User) {
	for _, u := range seed {
		users.Upsert(&model.User{
			ID:       "usr-" + u.Username,
			Username: u.Username,
			Name:     u.Name,
			Role:     u.Role,
			Entity:   u.Entity,
			Active:   true,
		})
	}
	slog.Info("seeded users", "count", len(seed))
}

// SeedContracts loads demo contracts into the repository. The risk
// evaluator runs on each, and workflow bookkeeping (submission date,
// audit trail) is made consistent with the seeded status.
func SeedContracts(contracts ContractRepository, users UserRepository) {
	submitter, err := users.GetByUsername("psilva")
	if err != nil {
		// No seed submitter means a custom user config; start empty.
		slog.Warn("seed submitter not configured, skipping demo contracts")
		return
	}

	now := time.Now()
	fixtures := []*model.Contract{
		{
			Entity: model.EntityBrazil, Department: "Drilling", Contractor: "Oceanica Subsea Services",
			ContractType: model.TypeCAPEX, Amount: 6_200_000, Currency: "USD",
			ScopeOfWork: "Subsea inspection and maintenance campaign for the Pampo cluster",
			Background:  "Recurring IMR scope, previous contract expiring",
			LiabilityCapPercent: 100, Status: model.StatusSubmitted,
			StartDate: now.AddDate(0, 1, 0), EndDate: now.AddDate(2, 1, 0),
		},
		{
			Entity: model.EntityBrazil, Department: "Logistics", Contractor: "Atlantico Supply Boats",
			ContractType: model.TypeOPEX, Amount: 850_000, Currency: "USD",
			ScopeOfWork: "Platform supply vessel charter, spot market",
			Background:  "Bridging charter until the term tender concludes",
			LiabilityCapPercent: 100, Status: model.StatusApproved,
			StartDate: now.AddDate(0, -2, 0), EndDate: now.AddDate(0, 10, 0),
		},
		{
			Entity: model.EntityEquatorialGuinea, Department: "Production", Contractor: "Ceiba Field Services",
			ContractType: model.TypeOPEX, Amount: 1_400_000, Currency: "USD",
			ScopeOfWork: "Topside maintenance and fabric upkeep, Ceiba FPSO",
			Background:  "Annual maintenance campaign",
			LiabilityCapPercent: 80, Status: model.StatusSubmitted,
			Subcontracting: true, SubcontractingPercent: 35,
			StartDate: now.AddDate(0, 0, 14), EndDate: now.AddDate(1, 0, 14),
		},
		{
			Entity: model.EntityCongo, Department: "HSE", Contractor: "Pointe-Noire Enviro Labs",
			ContractType: model.TypeOPEX, Amount: 320_000, Currency: "USD",
			ScopeOfWork: "Produced water sampling and environmental reporting",
			Background:  "Regulatory monitoring obligation",
			LiabilityCapPercent: 100, Status: model.StatusDraft,
			StartDate: now.AddDate(0, 2, 0), EndDate: now.AddDate(1, 2, 0),
		},
		{
			Entity: model.EntityUK, Department: "IT", Contractor: "Aberdeen Data Systems",
			ContractType: model.TypeCAPEX, Amount: 2_100_000, Currency: "USD",
			ScopeOfWork: "Production data historian replacement project",
			Background:  "Current historian is end-of-life",
			LiabilityCapPercent: 100, Status: model.StatusChangesRequested,
			StartDate: now.AddDate(0, 1, 0), EndDate: now.AddDate(1, 7, 0),
		},
		{
			Entity: model.EntityCongo, Department: "Drilling", Contractor: "Congo Basin Drilling Co",
			ContractType: model.TypeCAPEX, Amount: 9_800_000, Currency: "USD",
			ScopeOfWork: "Two-well infill drilling campaign, Nkossa area",
			Background:  "Reserves development plan, board approved budget",
			LiabilityCapPercent: 90, Status: model.StatusPendingCEO,
			StartDate: now.AddDate(0, 3, 0), EndDate: now.AddDate(1, 3, 0),
		},
		{
			Entity: model.EntityUK, Department: "Finance", Contractor: "Thames Audit Partners",
			ContractType: model.TypeOPEX, Amount: 180_000, Currency: "USD",
			ScopeOfWork: "Statutory audit support services",
			Background:  "Annual engagement",
			LiabilityCapPercent: 100, Status: model.StatusRejected,
			StartDate: now.AddDate(0, -1, 0), EndDate: now.AddDate(0, 11, 0),
		},
	}

	days := len(fixtures) + 1
	for _, c := range fixtures {
		c.ID = contracts.NextID()
		c.SubmitterID = submitter.ID
		c.CorporateApprovals = map[string]bool{}
		c.CreatedAt = now.AddDate(0, 0, -days)
		ApplyRisk(c)

		c.AuditTrail = append(c.AuditTrail, model.AuditEntry{
			ActorID: submitter.ID, ActorName: submitter.Name,
			Action: "Created Contract", Timestamp: c.CreatedAt,
		})
		if c.Status != model.StatusDraft {
			sub := now.AddDate(0, 0, -days+1)
			c.SubmissionDate = &sub
			c.AuditTrail = append(c.AuditTrail, model.AuditEntry{
				ActorID: submitter.ID, ActorName: submitter.Name,
				Action: "Submitted Contract", Timestamp: sub,
			})
			for _, role := range RequiredApprovals(c) {
				c.CorporateApprovals[role] = false
			}
		}
		// Statuses past standard review carry the approvals that got them there.
		if c.Status == model.StatusPendingCEO || c.Status == model.StatusApproved {
			for _, role := range RequiredApprovals(c) {
				c.CorporateApprovals[role] = true
			}
		}
		days--

		contracts.Upsert(c)
	}

	slog.Info("seeded contracts", "count", len(fixtures))
}

// DefaultSeedUsers returns the demo accounts used when the config file
// does not define any.
func DefaultSeedUsers() []config.User {
	users := []config.User{
		{Username: "psilva", Password: "demo", Name: "Paula Silva", Role: model.RoleSubmitter, Entity: model.EntityBrazil},
		{Username: "jokafor", Password: "demo", Name: "James Okafor", Role: model.RoleCFO, Entity: model.EntityUK},
		{Username: "mnguema", Password: "demo", Name: "Maria Nguema", Role: model.RoleLegal, Entity: model.EntityEquatorialGuinea},
		{Username: "dkouma", Password: "demo", Name: "Daniel Kouma", Role: model.RoleFunctionHead, Entity: model.EntityCongo},
		{Username: "awhitfield", Password: "demo", Name: "Anne Whitfield", Role: model.RoleCEO, Entity: model.EntityUK},
		{Username: "admin", Password: "demo", Name: "System Admin", Role: model.RoleAdmin, Entity: model.EntityUK},
		{Username: "rcastro", Password: "demo", Name: "Rafael Castro", Role: model.RoleAdHoc, Entity: model.EntityBrazil},
	}
	return users
}

// Bootstrap seeds both repositories from config, falling back to the demo
// accounts when none are configured. It returns the accounts actually
// seeded so the login handler can check credentials against them.
func Bootstrap(contracts ContractRepository, users UserRepository, cfg *config.Config) ([]config.User, error) {
	seedUsers := cfg.Users
	if len(seedUsers) == 0 {
		seedUsers = DefaultSeedUsers()
	}
	for _, u := range seedUsers {
		if u.Username == "" || u.Role == "" {
			return nil, fmt.Errorf("seed user missing username or role: %w", ErrValidation)
		}
	}
	SeedUsers(users, seedUsers)
	SeedContracts(contracts, users)
	return seedUsers, nil
}
