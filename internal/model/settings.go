package model

type Settings struct {
	SearchContext string `json:"search_context"`
}
