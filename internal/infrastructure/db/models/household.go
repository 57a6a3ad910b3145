package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Household struct {
	ID                  string          `gorm:"type:uuid;primaryKey"`
	InternalCode        string          `gorm:"size:32;not null;uniqueIndex"`
	ExternalHouseholdID *string         `gorm:"size:255;uniqueIndex:idx_households_owner_external"`
	OwnerID             string          `gorm:"size:64;not null;index;uniqueIndex:idx_households_owner_external"`
	HeadOfClientID      *string         `gorm:"type:uuid"`
	TotalAccountValue   decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	Clients             []Client        `gorm:"foreignKey:HouseholdID"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (Household) TableName() string {
	return "households"
}

type Client struct {
	ID              string     `gorm:"type:uuid;primaryKey"`
	HouseholdID     string     `gorm:"type:uuid;index;not null"`
	FirstName       string     `gorm:"size:120;not null"`
	MiddleName      string     `gorm:"size:120"`
	LastName        string     `gorm:"size:120;not null"`
	DOB             *time.Time `gorm:"column:dob;type:date"`
	SSN             string     `gorm:"column:ssn;size:11"`
	TaxFilingStatus string     `gorm:"size:64"`
	MaritalStatus   string     `gorm:"size:64"`
	MobileNumber    string     `gorm:"size:32"`
	HomePhone       string     `gorm:"size:32"`
	Email           string     `gorm:"size:320"`
	HomeAddress     string     `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Client) TableName() string {
	return "clients"
}
