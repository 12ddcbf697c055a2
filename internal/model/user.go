package model

// User is the subset of a remote user record shown on user cards.
type User struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Company Company `json:"company"`
	Address Address `json:"address"`
}

type Company struct {
	Name string `json:"name"`
}

type Address struct {
	City string `json:"city"`
}
