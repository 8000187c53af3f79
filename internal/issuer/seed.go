package issuer

import (
	"log/slog"
	"time"

	"github.com/MrEthical07/hrauth/authapi"
	"github.com/MrEthical07/hrauth/jwt"
	"github.com/MrEthical07/hrauth/permission"
)

// DefaultRoles returns the seeded admin, hr and employee roles. The admin
// role carries every catalog key and is also a super-role on both sides of
// the wire.
func DefaultRoles() []authapi.Role {
	var all []string
	for _, e := range permission.DefaultEntries() {
		all = append(all, e.Key)
	}
	return []authapi.Role{
		{RoleID: "admin", RoleName: "Administrator", Permissions: all},
		{RoleID: "hr", RoleName: "Human Resources", Permissions: []string{
			permission.EmployeeCreate, permission.EmployeeReadAll, permission.EmployeeUpdate,
			permission.LeaveCreateAll, permission.LeaveReadAll, permission.LeaveApprove,
			permission.PayrollCreate, permission.PayrollReadAll, permission.PayrollUpdate,
			permission.AssetCreate, permission.AssetReadAll, permission.AssetAllot, permission.AssetReclaim,
			permission.PerformanceCreate, permission.PerformanceReadAll, permission.PerformanceUpdate, permission.PerformanceDelete,
			permission.SkillCreate, permission.SkillReadAll, permission.SkillUpdate, permission.SkillDelete,
		}},
		{RoleID: "employee", RoleName: "Employee", Permissions: []string{
			permission.EmployeeReadSelf, permission.LeaveCreateSelf, permission.LeaveReadSelf,
			permission.PayrollReadSelf, permission.AssetReadSelf, permission.PerformanceReadSelf,
			permission.SkillReadSelf,
		}},
	}
}

// DefaultAccounts returns one demo login per default role.
func DefaultAccounts() []Account {
	return []Account{
		{SubjectID: "EMP001", Secret: "password123", RoleID: "admin"},
		{SubjectID: "EMP002", Secret: "password123", RoleID: "hr"},
		{SubjectID: "EMP003", Secret: "password123", RoleID: "employee"},
	}
}

// DefaultConfig returns a Config seeded with the default catalog, roles
// and accounts around tokens.
func DefaultConfig(tokens *jwt.Issuer) Config {
	return Config{
		Tokens:   tokens,
		Catalog:  permission.DefaultEntries(),
		Roles:    DefaultRoles(),
		Accounts: DefaultAccounts(),
	}
}

// NewDefault builds a seeded Server signing HS256 tokens with secret.
func NewDefault(secret []byte, ttl time.Duration, logger *slog.Logger) (*Server, error) {
	tokens, err := jwt.NewIssuer(jwt.IssuerConfig{
		TTL:           ttl,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    secret,
	})
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig(tokens)
	cfg.Logger = logger
	return New(cfg)
}
