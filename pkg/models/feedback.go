package models

import "github.com/ekaya-inc/proposal-relay/pkg/jsonutil"

// ResultMarkPlaceholder is stored in every new feedback entry until a
// reviewer replaces it with one of the two marks.
const ResultMarkPlaceholder = "🟢 or 🔴"

// Feedback is one evaluated proposal as stored in the feedback ledger.
// Rating and Explanation are nil when the model omitted them.
type Feedback struct {
	CardDesc       string   `json:"card_desc" yaml:"card_desc"`
	Rating         *float64 `json:"rating" yaml:"rating"`
	Explanation    *string  `json:"explanation" yaml:"explanation"`
	CardID         string   `json:"card_id" yaml:"card_id"`
	TrelloAPIKey   string   `json:"trello_api_key" yaml:"trello_api_key"`
	TrelloAPIToken string   `json:"trello_api_token" yaml:"trello_api_token"`
	ResultMark     string   `json:"result_mark" yaml:"result_mark"`
}

// NewFeedback assembles the ledger entry for a rated card.
func NewFeedback(cardID, cardDesc string, result *RatingResult, installation InstallationConfig) Feedback {
	fb := Feedback{
		CardDesc:       cardDesc,
		CardID:         cardID,
		TrelloAPIKey:   installation.TrelloAPIKey,
		TrelloAPIToken: installation.TrelloAPIToken,
		ResultMark:     ResultMarkPlaceholder,
	}
	if result != nil {
		fb.Rating = result.Rating
		fb.Explanation = result.Explanation
	}
	return fb
}

// Claims returns the token claims for the entry. Missing rating and
// explanation are kept as explicit nulls.
func (f Feedback) Claims() map[string]any {
	claims := map[string]any{
		"card_desc":        f.CardDesc,
		"rating":           nil,
		"explanation":      nil,
		"card_id":          f.CardID,
		"trello_api_key":   f.TrelloAPIKey,
		"trello_api_token": f.TrelloAPIToken,
		"result_mark":      f.ResultMark,
	}
	if f.Rating != nil {
		claims["rating"] = *f.Rating
	}
	if f.Explanation != nil {
		claims["explanation"] = *f.Explanation
	}
	return claims
}

// FeedbackFromClaims reads a ledger entry from decoded claims.
func FeedbackFromClaims(claims map[string]any) Feedback {
	return Feedback{
		CardDesc:       jsonutil.StringOf(claims["card_desc"]),
		Rating:         jsonutil.FloatPtrOf(claims["rating"]),
		Explanation:    jsonutil.StringPtrOf(claims["explanation"]),
		CardID:         jsonutil.StringOf(claims["card_id"]),
		TrelloAPIKey:   jsonutil.StringOf(claims["trello_api_key"]),
		TrelloAPIToken: jsonutil.StringOf(claims["trello_api_token"]),
		ResultMark:     jsonutil.StringOf(claims["result_mark"]),
	}
}
