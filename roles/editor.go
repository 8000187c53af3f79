package roles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/MrEthical07/hrauth/authapi"
	"github.com/MrEthical07/hrauth/permission"
)

// RoleDefinition is the validated shape of a role before it is persisted.
type RoleDefinition struct {
	RoleID         string   `validate:"omitempty,max=64"`
	RoleName       string   `validate:"required,max=64"`
	PermissionKeys []string `validate:"dive,required"`
}

// Backend persists roles. *authapi.Client satisfies it.
type Backend interface {
	CreateRole(ctx context.Context, role authapi.Role) (authapi.Role, error)
	UpdateRole(ctx context.Context, role authapi.Role) (authapi.Role, error)
}

// GroupState is the tri-state of a resource group in the editor.
type GroupState int

const (
	GroupNone GroupState = iota
	GroupPartial
	GroupAll
)

// Editor is a draft role. It is not safe for concurrent use.
type Editor struct {
	catalog  *permission.Catalog
	rules    *permission.Rules
	backend  Backend
	validate *validator.Validate

	roleID    string
	roleName  string
	perms     permission.Set
	persisted bool
}

// NewEditor returns an editor for a new, empty role.
func NewEditor(catalog *permission.Catalog, rules *permission.Rules, backend Backend) *Editor {
	return &Editor{
		catalog:  catalog,
		rules:    rules,
		backend:  backend,
		validate: validator.New(),
		perms:    permission.NewSet(),
	}
}

// Edit returns an editor for an existing role. The stored keys are
// normalized so the draft starts consistent.
func Edit(catalog *permission.Catalog, rules *permission.Rules, backend Backend, role authapi.Role) *Editor {
	e := NewEditor(catalog, rules, backend)
	e.roleID = role.RoleID
	e.roleName = role.RoleName
	e.perms = rules.Normalize(permission.NewSet(role.Permissions...))
	e.persisted = true
	return e
}

// SetName sets the display name.
func (e *Editor) SetName(name string) {
	e.roleName = strings.TrimSpace(name)
}

// SetID sets the role ID of a role that has not been saved yet. Saved
// roles keep their ID.
func (e *Editor) SetID(id string) {
	if !e.persisted {
		e.roleID = strings.TrimSpace(id)
	}
}

// Toggle turns one key on or off, applying its dependency rules.
func (e *Editor) Toggle(key string, enable bool) error {
	if !e.catalog.Contains(key) {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	e.perms = e.rules.Toggle(key, enable, e.perms)
	return nil
}

// ToggleGroup flips every key of resource. Keys are applied in catalog
// order.
func (e *Editor) ToggleGroup(resource string) error {
	keys, ok := e.catalog.Group(resource)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownResource, resource)
	}
	e.perms = e.rules.GroupToggle(keys, e.perms)
	return nil
}

// Group reports how much of resource is selected.
func (e *Editor) Group(resource string) GroupState {
	keys, _ := e.catalog.Group(resource)
	n := 0
	for _, k := range keys {
		if e.perms.Has(k) {
			n++
		}
	}
	switch {
	case n == 0:
		return GroupNone
	case n == len(keys):
		return GroupAll
	default:
		return GroupPartial
	}
}

// Has reports whether key is selected.
func (e *Editor) Has(key string) bool {
	return e.perms.Has(key)
}

// Permissions returns the selected keys in catalog order.
func (e *Editor) Permissions() []string {
	return e.catalog.Ordered(e.perms)
}

// Definition returns the draft as a RoleDefinition.
func (e *Editor) Definition() RoleDefinition {
	return RoleDefinition{
		RoleID:         e.roleID,
		RoleName:       e.roleName,
		PermissionKeys: e.Permissions(),
	}
}

// Validate checks field constraints, catalog membership and the
// dependency rules.
func (e *Editor) Validate() error {
	def := e.Definition()
	if err := e.validate.Struct(def); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidRole, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidRole, err)
	}
	for _, k := range def.PermissionKeys {
		if !e.catalog.Contains(k) {
			return fmt.Errorf("%w: %q", ErrUnknownKey, k)
		}
	}
	if v := e.rules.Violations(e.perms); len(v) > 0 {
		return fmt.Errorf("%w: %s requires %s", ErrInconsistent, v[0].Key, v[0].Missing)
	}
	return nil
}

// Save validates the draft, then creates the role if the draft came from
// NewEditor and has not been saved, or updates it otherwise. An empty ID on
// create lets the server assign one. The draft adopts the stored role.
func (e *Editor) Save(ctx context.Context) (RoleDefinition, error) {
	if err := e.Validate(); err != nil {
		return RoleDefinition{}, err
	}
	def := e.Definition()
	role := authapi.Role{RoleID: def.RoleID, RoleName: def.RoleName, Permissions: def.PermissionKeys}

	var (
		stored authapi.Role
		err    error
	)
	if e.persisted {
		stored, err = e.backend.UpdateRole(ctx, role)
	} else {
		stored, err = e.backend.CreateRole(ctx, role)
	}
	if err != nil {
		return RoleDefinition{}, fmt.Errorf("save role %q: %w", def.RoleName, err)
	}

	e.roleID = stored.RoleID
	e.roleName = stored.RoleName
	e.perms = permission.NewSet(stored.Permissions...)
	e.persisted = true
	return e.Definition(), nil
}
