package entity

import (
	"fmt"
	"time"
)

// LocationKind distingue los dos espacios de identidad de ubicaciones.
type LocationKind string

const (
	LocationStore LocationKind = "store" // almacén / bodega central
	LocationShop  LocationKind = "shop"  // tienda / punto de venta
)

// Valid indica si el tipo de ubicación es conocido.
func (k LocationKind) Valid() bool {
	return k == LocationStore || k == LocationShop
}

// LocationRef referencia a una ubicación: tipo + id. Reemplaza el par "id + modelo" suelto.
type LocationRef struct {
	Kind LocationKind `json:"kind"`
	ID   string       `json:"id"`
}

// StoreRef construye una referencia a almacén.
func StoreRef(id string) LocationRef { return LocationRef{Kind: LocationStore, ID: id} }

// ShopRef construye una referencia a tienda.
func ShopRef(id string) LocationRef { return LocationRef{Kind: LocationShop, ID: id} }

// Valid indica si la referencia es utilizable.
func (l LocationRef) Valid() bool {
	return l.Kind.Valid() && l.ID != ""
}

func (l LocationRef) String() string {
	return fmt.Sprintf("%s:%s", l.Kind, l.ID)
}

// Store almacén que recibe mercancía de facturas de proveedor.
type Store struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Shop tienda que recibe traslados y realiza ventas.
type Shop struct {
	ID        string
	Name      string
	Address   string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
