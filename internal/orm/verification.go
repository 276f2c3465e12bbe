package orm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Verification is one verified member of one guild. Position preserves
// verification order within the guild.
type Verification struct {
	ID          uuid.UUID `gorm:"primaryKey"`
	GuildID     string    `gorm:"index"`
	UserID      string
	AccessToken string
	Position    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (v *Verification) TableName() string {
	return "verification"
}

func (v *Verification) BeforeCreate(transaction *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

func (c *PostgresClient) SelectVerifications() ([]Verification, error) {
	var verifications []Verification
	tx := c.database.
		Order("guild_id").
		Order("position").
		Find(&verifications)

	if tx.Error != nil {
		return nil, tx.Error
	}

	return verifications, nil
}

// ReplaceVerifications swaps the full set of rows in one transaction. The
// store contract is a whole-document overwrite, so partial merges would
// resurrect deleted state.
func (c *PostgresClient) ReplaceVerifications(verifications []Verification) error {
	return c.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&Verification{}).Error; err != nil {
			return err
		}
		if len(verifications) == 0 {
			return nil
		}
		return tx.Create(&verifications).Error
	})
}
