package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyInstallationComplexity(t *testing.T) {
	table := DefaultPricingTable()

	cases := []struct {
		name     string
		window   string
		material string
		want     InstallationComplexity
	}{
		{"window wins over material", "mansard", "fabric_eco", InstallationComplexity{true, DifficultyHard, 2500}},
		{"arched with wood is still hard", "arched", "wood", InstallationComplexity{true, DifficultyHard, 2500}},
		{"wood on standard window", "standard", "wood", InstallationComplexity{true, DifficultyMedium, 1500}},
		{"aluminum without window", "", "aluminum", InstallationComplexity{true, DifficultyMedium, 1500}},
		{"plain fabric", "standard", "fabric_eco", InstallationComplexity{false, DifficultyEasy, 0}},
		{"nothing selected", "", "", InstallationComplexity{false, DifficultyEasy, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, table.ClassifyInstallationComplexity(tc.window, tc.material))
		})
	}
}

func TestLocationMultiplier(t *testing.T) {
	table := DefaultPricingTable()
	assert.Equal(t, 1.0, table.LocationMultiplier("unknown_city"))
	assert.Equal(t, 1.0, table.LocationMultiplier(""))
	assert.Equal(t, 0.85, table.LocationMultiplier("lviv"))
	assert.Equal(t, 0.95, table.LocationMultiplier("odesa"))
}

func TestInstallationPriceRounding(t *testing.T) {
	table := DefaultPricingTable()
	hard := InstallationComplexity{RequiresInstallation: true, Difficulty: DifficultyHard, BasePrice: 2500}
	medium := InstallationComplexity{RequiresInstallation: true, Difficulty: DifficultyMedium, BasePrice: 1500}

	assert.Equal(t, Money(2125), table.InstallationPrice(hard, "lviv"))
	assert.Equal(t, Money(2375), table.InstallationPrice(hard, "odesa"))
	assert.Equal(t, Money(1350), table.InstallationPrice(medium, "kharkiv"))
	assert.Equal(t, Money(1500), table.InstallationPrice(medium, "nowhere"))

	// 1275 * 0.9 = 1147.5 -> половина вверх
	odd := InstallationComplexity{RequiresInstallation: true, BasePrice: 1275}
	assert.Equal(t, Money(1148), table.InstallationPrice(odd, "dnipro"))
}

func TestLineItemPrice(t *testing.T) {
	cat := MustDefaultCatalog()

	price, err := cat.LineItemPrice(StepRoomType, "bedroom")
	require.NoError(t, err)
	assert.Zero(t, price)

	price, err = cat.LineItemPrice(StepWindowType, "arched")
	require.NoError(t, err, "window type never has a price")
	assert.Zero(t, price)

	for _, step := range []Step{StepRoomType, StepWindowType} {
		price, err = cat.LineItemPrice(step, "garage")
		var unknown *PriceLookupError
		require.True(t, errors.As(err, &unknown), "step %d", step)
		assert.Equal(t, step, unknown.Step)
		assert.Equal(t, "garage", unknown.OptionID)
		assert.Zero(t, price)
	}

	price, err = cat.LineItemPrice(StepProduct, "plisse_premium")
	require.NoError(t, err)
	assert.Equal(t, Money(3500), price)

	price, err = cat.LineItemPrice(StepMaterial, "wood")
	require.NoError(t, err)
	assert.Equal(t, Money(2000), price)

	price, err = cat.LineItemPrice(StepAdditionalOptions, "timer")
	require.NoError(t, err)
	assert.Equal(t, Money(500), price)

	price, err = cat.LineItemPrice(StepMaterial, "velvet")
	var lookup *PriceLookupError
	require.True(t, errors.As(err, &lookup))
	assert.Equal(t, StepMaterial, lookup.Step)
	assert.Equal(t, "velvet", lookup.OptionID)
	assert.Zero(t, price)

	_, err = cat.LineItemPrice(Step(6), "x")
	var invalid *InvalidStepError
	assert.True(t, errors.As(err, &invalid))
}

func TestTotalPriceScenarios(t *testing.T) {
	cat := MustDefaultCatalog()

	base := Selection{
		StepRoomType:   "bedroom",
		StepWindowType: "standard",
		StepProduct:    "plisse_premium",
		StepMaterial:   "fabric_premium",
	}

	total, warnings := cat.TotalPrice(base, false, "kiev")
	assert.Empty(t, warnings)
	assert.Equal(t, Money(5000), total)

	mansard := base.Clone()
	mansard[StepWindowType] = "mansard"
	q := cat.Quote(mansard, true, "lviv")
	assert.Equal(t, DifficultyHard, q.Complexity.Difficulty)
	assert.Equal(t, Money(2500), q.Complexity.BasePrice)
	assert.Equal(t, Money(2125), q.InstallationPrice)
	assert.True(t, q.InstallationApplied)
	assert.Equal(t, Money(7125), q.Total)
}

func TestTotalPriceInstallationGating(t *testing.T) {
	cat := MustDefaultCatalog()
	sel := Selection{
		StepWindowType: "standard",
		StepProduct:    "plisse_premium",
		StepMaterial:   "fabric_eco",
	}

	withFlag, _ := cat.TotalPrice(sel, true, "kiev")
	withoutFlag, _ := cat.TotalPrice(sel, false, "kiev")
	assert.Equal(t, withoutFlag, withFlag, "installation must add 0 when not required")
	assert.Equal(t, Money(4300), withFlag)
}

func TestTotalPriceIsDeterministic(t *testing.T) {
	cat := MustDefaultCatalog()
	sel := Selection{
		StepWindowType:        "arched",
		StepProduct:           "markizy_terrace",
		StepMaterial:          "aluminum",
		StepAdditionalOptions: "smart_control",
	}
	first, _ := cat.TotalPrice(sel, true, "odesa")
	for i := 0; i < 20; i++ {
		again, _ := cat.TotalPrice(sel, true, "odesa")
		require.Equal(t, first, again)
	}
	assert.Equal(t, Money(4500+1200+2500+2375), first)
}

func TestTotalPriceUnknownOptionIsZeroWithWarning(t *testing.T) {
	cat := MustDefaultCatalog()
	sel := Selection{StepProduct: "plisse_premium", StepAdditionalOptions: "jetpack"}

	total, warnings := cat.TotalPrice(sel, false, "kiev")
	assert.Equal(t, Money(3500), total)
	require.Len(t, warnings, 1)
	assert.Equal(t, "price_lookup", WarningFrom(warnings[0]).Code)
}
