package models

// Category: reçete ve hammadde kategorileri için ortak yapı
type Category struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
}
