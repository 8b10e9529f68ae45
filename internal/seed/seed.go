package seed

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	materialdomain "github.com/smallbiznis/prodline/internal/material/domain"
	productiondomain "github.com/smallbiznis/prodline/internal/production/domain"
	recipedomain "github.com/smallbiznis/prodline/internal/recipe/domain"
	slotdomain "github.com/smallbiznis/prodline/internal/slot/domain"
	warehousedomain "github.com/smallbiznis/prodline/internal/warehouse/domain"
)

// EnsureDemoData seeds a small plant worth of demo records for local
// development. Each slot is only written when it does not exist yet, so
// restarts never clobber edited data.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	now := time.Now().UTC()

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureSlotTx(ctx, tx, materialdomain.SlotKey, demoMaterials(node, now), now); err != nil {
			return err
		}
		if err := ensureSlotTx(ctx, tx, recipedomain.SlotKey, demoRecipes(now), now); err != nil {
			return err
		}
		if err := ensureSlotTx(ctx, tx, productiondomain.OrderSlotKey, demoOrders(now), now); err != nil {
			return err
		}
		if err := ensureSlotTx(ctx, tx, productiondomain.LotSlotKey, demoLots(node, now), now); err != nil {
			return err
		}
		return ensureSlotTx(ctx, tx, warehousedomain.MovementSlotKey, demoMovements(now), now)
	})
}

func ensureSlotTx(ctx context.Context, tx *gorm.DB, key string, payload any, now time.Time) error {
	var existing slotdomain.Slot
	err := tx.WithContext(ctx).Where("slot_key = ?", key).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return tx.WithContext(ctx).Create(&slotdomain.Slot{
		SlotKey:   key,
		Payload:   datatypes.JSON(raw),
		UpdatedAt: now,
	}).Error
}

func demoMaterials(node *snowflake.Node, now time.Time) []materialdomain.Material {
	return []materialdomain.Material{
		{
			ID:        node.Generate().String(),
			Code:      "RM-001",
			Name:      "Cake Flour",
			Category:  "powder",
			Qty:       120,
			Unit:      "kg",
			MinQty:    50,
			Note:      "keep dry",
			CreatedAt: now.AddDate(0, 0, -20),
		},
		{
			ID:        node.Generate().String(),
			Code:      "RM-002",
			Name:      "Matcha Powder",
			Category:  "powder",
			Qty:       18,
			Unit:      "kg",
			MinQty:    25,
			CreatedAt: now.AddDate(0, 0, -14),
		},
		{
			ID:        node.Generate().String(),
			Code:      "RM-003",
			Name:      "Unsalted Butter",
			Category:  "dairy",
			Qty:       64,
			Unit:      "kg",
			MinQty:    30,
			CreatedAt: now.AddDate(0, 0, -7),
		},
	}
}

func demoRecipes(now time.Time) []recipedomain.Recipe {
	return []recipedomain.Recipe{
		{
			ID:   "c4f6f6f0-90a6-4f4f-8c36-demo00000001",
			Name: "Matcha Cake",
			Slug: "matcha-cake",
			Note: "standard batch",
			Ingredients: []recipedomain.Ingredient{
				{MaterialName: "Cake Flour", Quantity: 2, Unit: "kg"},
				{MaterialName: "Matcha Powder", Quantity: 0.3, Unit: "kg"},
				{MaterialName: "Unsalted Butter", Quantity: 1, Unit: "kg"},
			},
			CreatedAt: now.AddDate(0, 0, -10),
			UpdatedAt: now.AddDate(0, 0, -10),
		},
	}
}

func demoOrders(now time.Time) []productiondomain.Order {
	return []productiondomain.Order{
		{
			OrderNo:     "PO240901-0001",
			ProductName: "Matcha Cake",
			Qty:         40,
			CreateDate:  now.AddDate(0, 0, -5),
			StartDate:   now.AddDate(0, 0, -4).Format("2006-01-02"),
			DueDate:     now.AddDate(0, 0, 3).Format("2006-01-02"),
			Status:      productiondomain.StatusInProgress,
		},
	}
}

func demoLots(node *snowflake.Node, now time.Time) []productiondomain.Lot {
	return []productiondomain.Lot{
		{
			ID:          node.Generate().String(),
			OrderNo:     "PO240901-0001",
			LotNo:       "LOT-240905-01",
			ProductName: "Matcha Cake",
			Qty:         20,
			Remain:      20,
			QA:          productiondomain.LotQAAwaiting,
			CreatedAt:   now.AddDate(0, 0, -3),
		},
	}
}

func demoMovements(now time.Time) []warehousedomain.Movement {
	return []warehousedomain.Movement{
		{
			ID:        "01J0DEMO0000000000MOVEIN01",
			LotNo:     "RM-240901",
			Code:      "RM-001",
			Name:      "Cake Flour",
			Qty:       80,
			Direction: warehousedomain.DirectionInbound,
			Category:  "purchase",
			RefNo:     "GRN-1001",
			Date:      now.AddDate(0, 0, -12),
		},
		{
			ID:        "01J0DEMO0000000000MOVEIN02",
			LotNo:     "RM-240915",
			Code:      "RM-001",
			Name:      "Cake Flour",
			Qty:       40,
			Direction: warehousedomain.DirectionInbound,
			Category:  "purchase",
			RefNo:     "GRN-1002",
			Date:      now.AddDate(0, 0, -6),
		},
		{
			ID:        "01J0DEMO0000000000MOVEIN03",
			LotNo:     "RM-240920",
			Code:      "RM-002",
			Name:      "Matcha Powder",
			Qty:       18,
			Direction: warehousedomain.DirectionInbound,
			Category:  "purchase",
			RefNo:     "GRN-1003",
			Date:      now.AddDate(0, 0, -2),
		},
	}
}
