package models

type Profile struct {
	ID        string
	UserID    string
	FirstName string
	LastName  string
}
