package models

type Role struct {
	ID          string
	Name        string
	Description string
}
