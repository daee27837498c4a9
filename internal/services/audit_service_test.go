package services

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"kopilka/internal/models"
	"kopilka/internal/testutil"
)

func TestAuditLog(t *testing.T) {
	t.Run("records_goal_contribution", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuditService(db)
		user := testutil.CreateTestUser(t, db)
		goal := testutil.CreateTestGoal(t, db, user.ID, testutil.Money(t, "100"))

		svc.Log(user.ID, models.AuditContributeGoal, models.AuditResourceGoal, goal.ID, "127.0.0.1",
			map[string]interface{}{"amount": decimal.RequireFromString("25.50")})

		var entries []models.AuditLog
		db.Where("user_id = ?", user.ID).Find(&entries)
		if len(entries) != 1 {
			t.Fatalf("expected 1 audit entry, got %d", len(entries))
		}
		entry := entries[0]
		if entry.ResourceID != goal.ID || entry.Action != models.AuditContributeGoal || entry.ResourceType != models.AuditResourceGoal {
			t.Errorf("unexpected entry %+v", entry)
		}
		if !strings.Contains(entry.Changes, `"amount":"25.5"`) {
			t.Errorf("expected decimal string in changes, got %s", entry.Changes)
		}
	})

	t.Run("no_changes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuditService(db)
		user := testutil.CreateTestUser(t, db)
		savings := testutil.CreateTestSavings(t, db, user.ID, "USD", decimal.Zero)

		svc.Log(user.ID, models.AuditCreateSavings, models.AuditResourceSavings, savings.ID, "127.0.0.1", nil)

		var entry models.AuditLog
		testutil.AssertNoError(t, db.Where("user_id = ?", user.ID).First(&entry).Error)
		if entry.Changes != "" {
			t.Errorf("expected empty changes, got %q", entry.Changes)
		}
	})

	t.Run("unknown_resource_dropped", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuditService(db)
		user := testutil.CreateTestUser(t, db)

		svc.Log(user.ID, models.AuditDeleteGoal, models.AuditResource("account"), models.NewID(), "127.0.0.1", nil)

		var count int64
		db.Model(&models.AuditLog{}).Where("user_id = ?", user.ID).Count(&count)
		if count != 0 {
			t.Errorf("expected no audit entries, got %d", count)
		}
	})
}
