package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Pin struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(64) COLLATE utf8mb4_bin;not null;index" json:"username"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Desc      string    `gorm:"column:description;type:text;not null" json:"desc"`
	Rating    int       `gorm:"type:tinyint;not null" json:"rating"`
	Lat       float64   `gorm:"not null" json:"lat"`
	Long      float64   `gorm:"column:lng;not null" json:"long"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (p *Pin) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
