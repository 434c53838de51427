package model

// Role constants
const (
	RoleSubmitter    = "submitter"
	RoleCFO          = "cfo"
	RoleLegal        = "legal"
	RoleFunctionHead = "function_head"
	RoleCEO          = "ceo"
	RoleAdmin        = "admin"
	RoleAdHoc        = "adhoc"
)

// Legal entities. Fixed set; contracts and users are partitioned by entity.
const (
	EntityBrazil           = "Brazil"
	EntityEquatorialGuinea = "Equatorial Guinea"
	EntityCongo            = "Congo"
	EntityUK               = "UK"
)

// Entities lists all legal entities in display order.
var Entities = []string{EntityBrazil, EntityEquatorialGuinea, EntityCongo, EntityUK}

// ApprovalRoles are the roles that own a corporate approval slot.
var ApprovalRoles = []string{RoleCFO, RoleLegal, RoleFunctionHead}

// User is a workflow participant.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Entity   string `json:"entity"`
	Active   bool   `json:"active"`
}

// ValidEntity reports whether e names a known legal entity.
func ValidEntity(e string) bool {
	for _, known := range Entities {
		if known == e {
			return true
		}
	}
	return false
}
