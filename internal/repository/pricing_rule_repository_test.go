package repository

import (
	"testing"

	"github.com/thinkfashz/osart/internal/constants"
	"github.com/thinkfashz/osart/internal/models"

	"gorm.io/datatypes"
)

func TestPricingRuleRepositoryListActiveOrder(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewPricingRuleRepository(db)

	rules := []*models.PricingRule{
		{Name: "low", RuleType: constants.PricingRuleTypeBulk, Priority: 1, IsActive: true},
		{Name: "high", RuleType: constants.PricingRuleTypeBulk, Priority: 10, IsActive: true},
		{Name: "low-tie", RuleType: constants.PricingRuleTypeBulk, Priority: 1, IsActive: true},
		{Name: "disabled", RuleType: constants.PricingRuleTypeBulk, Priority: 50, IsActive: true},
	}
	for _, rule := range rules {
		rule.Config = datatypes.JSON(`{"min_quantity":1,"discount_percentage":5}`)
		if err := repo.Create(rule); err != nil {
			t.Fatalf("create rule failed: %v", err)
		}
	}
	if _, err := repo.UpdateStatus(rules[3].ID, false); err != nil {
		t.Fatalf("disable rule failed: %v", err)
	}

	active, err := repo.ListActive()
	if err != nil {
		t.Fatalf("list active failed: %v", err)
	}
	want := []string{"high", "low", "low-tie"}
	if len(active) != len(want) {
		t.Fatalf("active rules want %d got %d", len(want), len(active))
	}
	for idx, name := range want {
		if active[idx].Name != name {
			t.Fatalf("active[%d] want %s got %s", idx, name, active[idx].Name)
		}
	}

	inactive := false
	rows, err := repo.List(PricingRuleListFilter{IsActive: &inactive})
	if err != nil {
		t.Fatalf("list inactive failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "disabled" {
		t.Fatalf("unexpected inactive rows: %+v", rows)
	}
}

func TestPricingRuleRepositoryDelete(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewPricingRuleRepository(db)

	rule := &models.PricingRule{Name: "bulk", RuleType: constants.PricingRuleTypeBulk, IsActive: true}
	if err := repo.Create(rule); err != nil {
		t.Fatalf("create rule failed: %v", err)
	}
	affected, err := repo.Delete(rule.ID)
	if err != nil || affected != 1 {
		t.Fatalf("delete want 1 affected got %d err=%v", affected, err)
	}
	affected, err = repo.Delete(rule.ID)
	if err != nil || affected != 0 {
		t.Fatalf("second delete want 0 affected got %d err=%v", affected, err)
	}
	got, err := repo.GetByID(rule.ID)
	if err != nil || got != nil {
		t.Fatalf("expected deleted rule to be gone, got=%v err=%v", got, err)
	}
}
