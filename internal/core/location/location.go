// Package location models where stock lives: a warehouse or a shop.
//
// Ref is a closed sum type. The only implementations are AtWarehouse and AtShop,
// each carrying an id of its own type, so a shop id can never be passed where a
// warehouse id is expected. Persistence flattens a Ref into (Kind, ID) columns.
package location

import (
	"fmt"
	"strings"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/id"
)

// Kind is the persisted tag of a location.
type Kind string

const (
	KindWarehouse Kind = "warehouse"
	KindShop      Kind = "shop"
)

// ParseKind validates a location tag.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindWarehouse:
		return KindWarehouse, nil
	case KindShop:
		return KindShop, nil
	}
	return "", apperror.NewInvalidLocationType("location type must be warehouse or shop").
		WithDetail("value", s)
}

// WarehouseID identifies a warehouse.
type WarehouseID id.ID

// ShopID identifies a shop.
type ShopID id.ID

func (w WarehouseID) String() string { return id.ID(w).String() }
func (s ShopID) String() string      { return id.ID(s).String() }

// Ref points at a single location.
type Ref interface {
	Kind() Kind
	ID() id.ID
	String() string
	isRef()
}

// AtWarehouse is a Ref to a warehouse.
type AtWarehouse struct {
	Warehouse WarehouseID
}

// AtShop is a Ref to a shop.
type AtShop struct {
	Shop ShopID
}

func (AtWarehouse) Kind() Kind       { return KindWarehouse }
func (w AtWarehouse) ID() id.ID      { return id.ID(w.Warehouse) }
func (w AtWarehouse) String() string { return string(KindWarehouse) + ":" + w.Warehouse.String() }
func (AtWarehouse) isRef()           {}
func (AtShop) Kind() Kind            { return KindShop }
func (s AtShop) ID() id.ID           { return id.ID(s.Shop) }
func (s AtShop) String() string      { return string(KindShop) + ":" + s.Shop.String() }
func (AtShop) isRef()                {}

// Warehouse builds a warehouse Ref.
func Warehouse(v id.ID) Ref { return AtWarehouse{Warehouse: WarehouseID(v)} }

// Shop builds a shop Ref.
func Shop(v id.ID) Ref { return AtShop{Shop: ShopID(v)} }

// New builds a Ref from its persisted form.
func New(kind Kind, v id.ID) (Ref, error) {
	if id.IsNil(v) {
		return nil, apperror.NewValidation("location id is required").
			WithDetail("field", "locationId")
	}
	switch kind {
	case KindWarehouse:
		return Warehouse(v), nil
	case KindShop:
		return Shop(v), nil
	}
	return nil, apperror.NewInvalidLocationType("location type must be warehouse or shop").
		WithDetail("value", string(kind))
}

// MustNew is New for persisted rows that were validated on write.
func MustNew(kind Kind, v id.ID) Ref {
	ref, err := New(kind, v)
	if err != nil {
		panic(fmt.Sprintf("location: %v", err))
	}
	return ref
}

// Parse builds a Ref from raw request values.
func Parse(kind, rawID string) (Ref, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return nil, err
	}
	v, err := id.Parse(rawID)
	if err != nil {
		return nil, apperror.NewValidation("invalid location id").
			WithDetail("field", "locationId").
			WithDetail("value", rawID)
	}
	return New(k, v)
}

// FromExclusive builds a Ref from a warehouse/shop pair where at most one may be set.
// Both nil yields a nil Ref; both set is an InvalidLocationType error.
func FromExclusive(warehouseID, shopID *id.ID) (Ref, error) {
	hasWarehouse := warehouseID != nil && !id.IsNil(*warehouseID)
	hasShop := shopID != nil && !id.IsNil(*shopID)

	switch {
	case hasWarehouse && hasShop:
		return nil, apperror.NewInvalidLocationType("warehouse and shop are mutually exclusive")
	case hasWarehouse:
		return Warehouse(*warehouseID), nil
	case hasShop:
		return Shop(*shopID), nil
	}
	return nil, nil
}

// Equal reports whether two refs point at the same location. Nil equals only nil.
func Equal(a, b Ref) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Kind() == b.Kind() && a.ID() == b.ID()
}

// Key is the comparable, flat form of a Ref.
type Key struct {
	Kind Kind
	ID   id.ID
}

// KeyOf flattens ref.
func KeyOf(ref Ref) Key {
	return Key{Kind: ref.Kind(), ID: ref.ID()}
}

// Ref rebuilds the sum type from a key.
func (k Key) Ref() Ref {
	return MustNew(k.Kind, k.ID)
}

// Less orders keys: warehouses before shops, then by id.
func (k Key) Less(other Key) bool {
	if k.Kind != other.Kind {
		return k.Kind == KindWarehouse
	}
	return id.Compare(k.ID, other.ID) < 0
}
