package dto

import "time"

// CreateStoreRequest entrada para crear un almacén.
type CreateStoreRequest struct {
	ID      string `json:"id" validate:"omitempty,max=64"`
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Address string `json:"address"`
}

// CreateShopRequest entrada para crear una tienda.
type CreateShopRequest struct {
	ID      string `json:"id" validate:"omitempty,max=64"`
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// LocationResponse salida de un almacén o tienda.
type LocationResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LocationListResponse lista paginada de ubicaciones.
type LocationListResponse struct {
	Items []LocationResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
