package configurator

import (
	"configurator-backend/internal/domain"
)

const (
	InstallationItemID    = "installation_service"
	InstallationItemLabel = "Монтаж под ключ"
)

// SummaryItem — строка сводки. Step = 0 у строки монтажа.
type SummaryItem struct {
	Step     int          `json:"step"`
	OptionID string       `json:"optionId"`
	Label    string       `json:"label"`
	Price    domain.Money `json:"price"`
}

type SummaryView struct {
	Items    []SummaryItem    `json:"items"`
	Total    domain.Money     `json:"total"`
	Warnings []domain.Warning `json:"warnings"`
}

// Project строит сводку с нуля по выбору. Total совпадает с TotalPrice.
func Project(cat *domain.Catalog, sel domain.Selection, installationRequested bool, location string) SummaryView {
	q := cat.Quote(sel, installationRequested, location)

	view := SummaryView{
		Items:    make([]SummaryItem, 0, len(q.Lines)+1),
		Total:    q.Total,
		Warnings: make([]domain.Warning, 0, len(q.Warnings)),
	}
	for _, line := range q.Lines {
		label, ok := cat.Label(line.Step, line.OptionID)
		if !ok {
			label = line.OptionID
		}
		view.Items = append(view.Items, SummaryItem{
			Step:     int(line.Step),
			OptionID: line.OptionID,
			Label:    label,
			Price:    line.Price,
		})
	}
	if q.InstallationApplied {
		view.Items = append(view.Items, SummaryItem{
			OptionID: InstallationItemID,
			Label:    InstallationItemLabel,
			Price:    q.InstallationPrice,
		})
	}
	for _, err := range q.Warnings {
		view.Warnings = append(view.Warnings, domain.WarningFrom(err))
	}
	return view
}
