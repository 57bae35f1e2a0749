package dto

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ErrorResponse cuerpo de error HTTP. Details lleva el contexto de errores de movimiento (ítem, faltante).
type ErrorResponse struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details *ErrorDetails `json:"details,omitempty"`
}

// ErrorDetails contexto de un error de movimiento.
type ErrorDetails struct {
	Item        *int     `json:"item,omitempty"` // índice (base 0) del ítem en la solicitud
	ProductID   string   `json:"product_id,omitempty"`
	ProductName string   `json:"product_name,omitempty"`
	Location    string   `json:"location,omitempty"`
	Requested   int64    `json:"requested,omitempty"`
	Available   int64    `json:"available,omitempty"`
	Shortfall   int64    `json:"shortfall,omitempty"`
	Fields      []string `json:"fields,omitempty"`
}
