package models

// Categoria is a movie category. Protected categories belong to the seed
// catalog and can be neither renamed nor deleted.
type Categoria struct {
	ID        int    `json:"id"`
	Nombre    string `json:"nombre"`
	Protegida bool   `json:"protegida"`
}
