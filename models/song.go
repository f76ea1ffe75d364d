package models

type Song struct {
	ID         int     `json:"id"`
	Title      string  `json:"title"`
	Difficulty string  `json:"difficulty"`
	JacketKey  *string `json:"-"`
	JacketURL  *string `json:"jacket_url,omitempty"`
}
