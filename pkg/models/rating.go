package models

// RatingResult is the parsed model verdict for one card.
type RatingResult struct {
	Rating      *float64 `json:"rating"`
	Explanation *string  `json:"explanation"`
}
