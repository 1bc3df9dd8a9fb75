package domain

import "time"

// Notification types.
const (
	NotificationLeadPurchased  = "LEAD_PURCHASED"
	NotificationQuotaExhausted = "QUOTA_EXHAUSTED"
)

// Notification is a message queued for a user. DedupKey, when set, is unique
// per user so a notification class can be limited to one per period.
type Notification struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	UserID      string    `json:"user_id"      gorm:"type:char(36);not null;index;uniqueIndex:ux_notification_dedup,priority:1"`
	Type        string    `json:"type"         gorm:"type:varchar(32);not null"`
	Title       string    `json:"title"        gorm:"type:varchar(255);not null"`
	Message     string    `json:"message"      gorm:"type:text"`
	ReferenceID string    `json:"reference_id" gorm:"type:char(36)"`
	DedupKey    *string   `json:"-"            gorm:"type:varchar(128);uniqueIndex:ux_notification_dedup,priority:2"`
	IsRead      bool      `json:"is_read"      gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"   gorm:"index"`
}

// TableName returns the database table name for Notification.
func (Notification) TableName() string { return "notifications" }
