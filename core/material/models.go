package material

import (
	"context"

	"github.com/pkg/errors"

	"github.com/darasahub/darasa/core"
)

var (
	// errors
	ErrNotFound  = errors.New("study material not found")
	ErrForbidden = errors.New("study material belongs to another user")
)

// Material is a single teacher-authored study resource. OwnerID is set at
// creation and immutable afterwards; every other field is teacher-editable.
type Material struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	OwnerID     string `json:"ownerId"`
}

// Draft carries the editable fields of a Material. Only the title is required.
type Draft struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

func (d *Draft) Validate() error {
	d.Title = core.CleanString(d.Title)
	d.Description = core.CleanString(d.Description)
	d.URL = core.CleanString(d.URL)
	return core.Validate.Struct(d)
}

// Scope selects which slice of the catalogue a query covers: the whole
// catalogue, or one owner's items.
type Scope struct {
	ownerID string
}

func ScopeAll() Scope {
	return Scope{}
}

func OwnedBy(identityID string) Scope {
	return Scope{ownerID: identityID}
}

// OwnerID returns the owning identity id when the scope is owner-restricted.
func (s Scope) OwnerID() (string, bool) {
	return s.ownerID, s.ownerID != ""
}

func (s Scope) key() string {
	if s.ownerID == "" {
		return "all"
	}
	return "owner:" + s.ownerID
}

func (s Scope) String() string { return s.key() }

type Repository interface {
	// QueryMaterials returns items in the backing store's arrival order;
	// no secondary sort is imposed.
	QueryMaterials(ctx context.Context, scope Scope) ([]Material, error)
	CreateMaterial(ctx context.Context, m Material) (Material, error)
	// UpdateMaterial and DeleteMaterial fail with ErrForbidden when the item
	// is not owned by actorID.
	UpdateMaterial(ctx context.Context, actorID, id string, d Draft) (Material, error)
	DeleteMaterial(ctx context.Context, actorID, id string) error
}
