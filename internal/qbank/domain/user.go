package domain

import "time"

type User struct {
	ID        string
	Subject   string // Identity provider subject id
	CompanyID string // Foreign key to companies table
	Email     string
	Role      Role
	FullName  string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
