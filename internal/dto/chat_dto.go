package dto

type ChatRequest struct {
	SessionId string `json:"session_id" validate:"required"`
	Message   string `json:"message" validate:"max=2000"`
}

type ChatResponse struct {
	SessionId string       `json:"session_id"`
	Route     string       `json:"route"`
	Reply     string       `json:"reply"`
	Reasoning string       `json:"reasoning,omitempty"`
	Products  []ProductDTO `json:"products,omitempty"`
	Challenge string       `json:"challenge,omitempty"`
}

type ProductDTO struct {
	Id      string   `json:"id"`
	Name    string   `json:"name"`
	Url     string   `json:"url,omitempty"`
	Price   *float64 `json:"price,omitempty"`
	InStock bool     `json:"in_stock"`
}

type ReloadCatalogResponse struct {
	Entries int `json:"entries"`
}
