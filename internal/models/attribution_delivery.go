package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/customeros/payrelay/internal/utils"
)

type AttributionDelivery struct {
	ID           string         `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	OrderID      string         `gorm:"column:order_id;type:varchar(255);index" json:"orderId"`
	Provider     string         `gorm:"column:provider;type:varchar(50);index" json:"provider"`
	Status       string         `gorm:"column:status;type:varchar(50);index" json:"status"`
	Attempts     int            `gorm:"column:attempts;default:0" json:"attempts"`
	LastError    string         `gorm:"column:last_error;type:varchar(1000)" json:"lastError"`
	ErrorLog     pq.StringArray `gorm:"column:error_log;type:text[]" json:"errorLog"`
	EventPayload string         `gorm:"column:event_payload;type:text" json:"eventPayload"`
	CreatedAt    time.Time      `gorm:"column:created_at;type:timestamp" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;type:timestamp" json:"updatedAt"`
}

func (AttributionDelivery) TableName() string {
	return "attribution_deliveries"
}

func (d *AttributionDelivery) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = utils.GenerateNanoIDWithPrefix("adel", 16)
	}
	d.CreatedAt = utils.Now()
	return nil
}
