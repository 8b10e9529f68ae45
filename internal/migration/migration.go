package migration

import (
	slotdomain "github.com/smallbiznis/prodline/internal/slot/domain"
	"gorm.io/gorm"
)

// Run creates or updates the schema. The slot table is the only durable
// surface, so AutoMigrate stays cheap.
func Run(conn *gorm.DB) error {
	return conn.AutoMigrate(&slotdomain.Slot{})
}
