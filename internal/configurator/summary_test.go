package configurator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"configurator-backend/internal/domain"
)

func TestProjectEndToEnd(t *testing.T) {
	cat := domain.MustDefaultCatalog()
	sel := domain.Selection{
		domain.StepRoomType:   "bedroom",
		domain.StepWindowType: "standard",
		domain.StepProduct:    "plisse_premium",
		domain.StepMaterial:   "fabric_premium",
	}

	view := Project(cat, sel, false, "kiev")
	assert.Equal(t, domain.Money(5000), view.Total)
	assert.Empty(t, view.Warnings)
	assert.Equal(t, []SummaryItem{
		{Step: 1, OptionID: "bedroom", Label: "Спальня", Price: 0},
		{Step: 2, OptionID: "standard", Label: "Стандартные окна", Price: 0},
		{Step: 3, OptionID: "plisse_premium", Label: "Плиссе Премиум", Price: 3500},
		{Step: 4, OptionID: "fabric_premium", Label: "Премиум ткань", Price: 1500},
	}, view.Items)
}

func TestProjectInstallationLine(t *testing.T) {
	cat := domain.MustDefaultCatalog()
	sel := domain.Selection{
		domain.StepWindowType: "mansard",
		domain.StepProduct:    "plisse_premium",
		domain.StepMaterial:   "fabric_premium",
	}

	view := Project(cat, sel, true, "lviv")
	require.NotEmpty(t, view.Items)
	last := view.Items[len(view.Items)-1]
	assert.Equal(t, SummaryItem{OptionID: InstallationItemID, Label: InstallationItemLabel, Price: 2125}, last)
	assert.Equal(t, domain.Money(7125), view.Total)

	total, _ := cat.TotalPrice(sel, true, "lviv")
	assert.Equal(t, total, view.Total)

	// монтаж запрошен, но не нужен: строки нет
	easy := domain.Selection{domain.StepWindowType: "standard", domain.StepMaterial: "fabric_eco"}
	for _, item := range Project(cat, easy, true, "kiev").Items {
		assert.NotEqual(t, InstallationItemID, item.OptionID)
	}
}

func TestProjectUnknownOptionUsesIDAsLabel(t *testing.T) {
	cat := domain.MustDefaultCatalog()
	view := Project(cat, domain.Selection{domain.StepAdditionalOptions: "jetpack"}, false, "")

	require.Len(t, view.Items, 1)
	assert.Equal(t, SummaryItem{Step: 5, OptionID: "jetpack", Label: "jetpack", Price: 0}, view.Items[0])
	require.Len(t, view.Warnings, 1)
	assert.Equal(t, "jetpack", view.Warnings[0].OptionID)
}

func TestProjectEmptyViewEncodesArrays(t *testing.T) {
	raw, err := json.Marshal(Project(domain.MustDefaultCatalog(), nil, false, ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[],"total":0,"warnings":[]}`, string(raw))
}
