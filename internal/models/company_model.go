package models

import "time"

// Company é a única entidade do serviço. DeletedAt nulo = ativa.
type Company struct {
	ID                int64      `bson:"_id" json:"id" gorm:"primaryKey;autoIncrement"`
	Name              string     `bson:"name" json:"name" gorm:"size:255;not null;index"`
	CNPJ              string     `bson:"cnpj" json:"cnpj" gorm:"size:18;not null;uniqueIndex:uniq_companies_cnpj"` // armazenado normalizado (apenas dígitos)
	StateRegistration *string    `bson:"state_registration" json:"state_registration" gorm:"size:20"`
	ContactEmail      *string    `bson:"contact_email" json:"contact_email" gorm:"size:120"`
	ContactPhone      *string    `bson:"contact_phone" json:"contact_phone" gorm:"size:20"`
	Website           *string    `bson:"website" json:"website" gorm:"size:255"`
	DeletedAt         *time.Time `bson:"deleted_at" json:"deleted_at" gorm:"index"`
	CreatedAt         time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `bson:"updated_at" json:"updated_at"`
}

func (Company) TableName() string { return "companies" }

func (c *Company) IsDeleted() bool { return c.DeletedAt != nil }
