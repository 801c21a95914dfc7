package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/thinkfashz/osart/internal/constants"
	"github.com/thinkfashz/osart/internal/models"
	"github.com/thinkfashz/osart/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPricingRuleAdminCreateBulk(t *testing.T) {
	f := newPricingFixture(t)

	rule, err := f.ruleAdmin.Create(context.Background(), CreatePricingRuleInput{
		Name:     " wholesale ",
		RuleType: "BULK",
		Config:   json.RawMessage(`{"min_quantity":10,"discount_percentage":"7.5"}`),
		Priority: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "wholesale", rule.Name)
	assert.Equal(t, constants.PricingRuleTypeBulk, rule.RuleType)
	assert.True(t, rule.IsActive)

	cfg, err := rule.BulkConfig()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.MinQuantity)
	assert.Equal(t, "7.5", cfg.DiscountPercentage.String())
}

func TestPricingRuleAdminCreateValidation(t *testing.T) {
	f := newPricingFixture(t)

	cases := []CreatePricingRuleInput{
		{Name: "", RuleType: "bulk", Config: json.RawMessage(`{"min_quantity":1,"discount_percentage":5}`)},
		{Name: "x", RuleType: "tiered"},
		{Name: "x", RuleType: "bulk", Priority: -1, Config: json.RawMessage(`{"min_quantity":1,"discount_percentage":5}`)},
		{Name: "x", RuleType: "bulk", Config: json.RawMessage(`{"min_quantity":0,"discount_percentage":5}`)},
		{Name: "x", RuleType: "bulk", Config: json.RawMessage(`{"min_quantity":1,"discount_percentage":0}`)},
		{Name: "x", RuleType: "bulk", Config: json.RawMessage(`{"min_quantity":1,"discount_percentage":150}`)},
		{Name: "x", RuleType: "bulk", Config: json.RawMessage(`{"min_quantity":"many"}`)},
		{Name: "x", RuleType: "markup", Config: json.RawMessage(`{not json`)},
	}
	for idx, input := range cases {
		_, err := f.ruleAdmin.Create(context.Background(), input)
		require.Error(t, err, "case %d", idx)
		assert.True(t, errors.Is(err, ErrPricingRuleInvalid), "case %d: %v", idx, err)
		assert.Equal(t, ErrorKindInvalid, KindOf(err), "case %d", idx)
	}
}

func TestPricingRuleAdminToggleDeleteList(t *testing.T) {
	f := newPricingFixture(t)
	inactive := false
	disabled, err := f.ruleAdmin.Create(context.Background(), CreatePricingRuleInput{
		Name:     "reserved",
		RuleType: constants.PricingRuleTypeMarkup,
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.False(t, disabled.IsActive)

	bulk := f.bulkRule(t, "bulk", 2, "5", 7)

	rules, err := f.ruleAdmin.List(context.Background(), repository.PricingRuleListFilter{})
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, bulk.ID, rules[0].ID)

	toggled, err := f.ruleAdmin.Toggle(context.Background(), disabled.ID, true)
	require.NoError(t, err)
	assert.True(t, toggled.IsActive)

	_, err = f.ruleAdmin.Toggle(context.Background(), 404, true)
	assert.True(t, errors.Is(err, ErrPricingRuleNotFound))

	require.NoError(t, f.ruleAdmin.Delete(context.Background(), bulk.ID))
	err = f.ruleAdmin.Delete(context.Background(), bulk.ID)
	assert.Equal(t, ErrorKindNotFound, KindOf(err))
}

func TestPricingRuleAdminCreateInactiveIsAtomic(t *testing.T) {
	f := newPricingFixture(t)
	product := f.product(t, f.category(t, "tools").ID, "saw", "100.00")

	// 停用状态写入失败时，插入的规则必须随事务回滚
	require.NoError(t, f.db.Callback().Update().Before("gorm:update").Register("test:fail_rule_status", func(tx *gorm.DB) {
		if tx.Statement.Table == "pricing_rules" {
			_ = tx.AddError(errors.New("connection reset"))
		}
	}))

	inactive := false
	rule, err := f.ruleAdmin.Create(context.Background(), CreatePricingRuleInput{
		Name:     "draft bulk",
		RuleType: constants.PricingRuleTypeBulk,
		Config:   json.RawMessage(`{"min_quantity":1,"discount_percentage":50}`),
		IsActive: &inactive,
	})
	require.Error(t, err)
	assert.Nil(t, rule)
	assert.Equal(t, ErrorKindPersistence, KindOf(err))

	var count int64
	require.NoError(t, f.db.Model(&models.PricingRule{}).Count(&count).Error)
	assert.Zero(t, count)

	quote, err := f.pricing.CalculateFinalPrice(context.Background(), PriceQuoteInput{ProductID: product.ID, Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, "100.00", quote.FinalPrice.String())
	assert.Empty(t, quote.DiscountsApplied)
}

func TestPricingRuleAdminCreateInactiveIsStored(t *testing.T) {
	f := newPricingFixture(t)
	inactive := false
	rule, err := f.ruleAdmin.Create(context.Background(), CreatePricingRuleInput{
		Name:     "draft",
		RuleType: constants.PricingRuleTypeBulk,
		Config:   json.RawMessage(`{"min_quantity":2,"discount_percentage":10}`),
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.False(t, rule.IsActive)

	stored, err := f.ruleRepo.GetByID(rule.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.IsActive)
}
