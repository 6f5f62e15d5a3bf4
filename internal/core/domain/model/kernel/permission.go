package kernel

// Permission names a capability an actor may hold.
type Permission string

const (
	// PermissionOwner is held by the customer who owns an order.
	PermissionOwner Permission = "Owner"
	// PermissionUpdateOrder allows administrative order transitions.
	PermissionUpdateOrder Permission = "UpdateOrder"
	// PermissionUpdateCatalog allows stock adjustments and variant registration.
	PermissionUpdateCatalog Permission = "UpdateCatalog"
)

// Actor is whoever requests an operation. The transport layer resolves it from
// the session; the core only asks about permissions.
type Actor interface {
	ID() string
	HasPermission(p Permission) bool
}

type staticActor struct {
	id          string
	permissions map[Permission]struct{}
}

// NewActor returns an Actor holding exactly the given permissions.
func NewActor(id string, permissions ...Permission) Actor {
	set := make(map[Permission]struct{}, len(permissions))
	for _, p := range permissions {
		set[p] = struct{}{}
	}
	return staticActor{id: id, permissions: set}
}

func (a staticActor) ID() string { return a.id }

func (a staticActor) HasPermission(p Permission) bool {
	_, ok := a.permissions[p]
	return ok
}

type systemActor struct{}

// SystemActor is used for transitions the core performs on its own, such as
// advancing an order once payments cover its total. It holds every permission.
func SystemActor() Actor { return systemActor{} }

func (systemActor) ID() string { return "system" }

func (systemActor) HasPermission(Permission) bool { return true }
