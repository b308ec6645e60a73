package handlers

import "github.com/jalad-shrimali/bureaux-filter/bureau"

// option is one filter button; Active marks the selected ones.
type option struct {
	Value  string `json:"value"`
	Active bool   `json:"active"`
}

type viewResponse struct {
	Dataset            *bureau.Dataset  `json:"dataset,omitempty"`
	Total              int              `json:"total"`
	CityOptions        []option         `json:"city_options"`
	CategoryOptions    []option         `json:"category_options"`
	SelectedCities     []string         `json:"selected_cities"`
	SelectedCategories []string         `json:"selected_categories"`
	Mode               bureau.MatchMode `json:"mode"`
	Visible            []bureau.Record  `json:"visible"`
	NoResults          bool             `json:"no_results"`
}

func options(vals, selected []string) []option {
	active := make(map[string]struct{}, len(selected))
	for _, v := range selected {
		active[v] = struct{}{}
	}
	out := make([]option, len(vals))
	for i, v := range vals {
		_, ok := active[v]
		out[i] = option{Value: v, Active: ok}
	}
	return out
}

func newViewResponse(ds *bureau.Dataset, v bureau.View) viewResponse {
	return viewResponse{
		Dataset:            ds,
		Total:              v.Total,
		CityOptions:        options(v.CityOptions, v.SelectedCities),
		CategoryOptions:    options(v.CategoryOptions, v.SelectedCategories),
		SelectedCities:     v.SelectedCities,
		SelectedCategories: v.SelectedCategories,
		Mode:               v.Mode,
		Visible:            v.Visible,
		NoResults:          v.NoResults,
	}
}
