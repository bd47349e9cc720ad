package dto

type SearchPostingsRequest struct {
	Query           string `form:"q"`
	Department      string `form:"department"`
	Category        string `form:"category"`
	DeadlineFrom    string `form:"deadline_from"`
	DeadlineTo      string `form:"deadline_to"`
	HasCompensation bool   `form:"has_compensation"`
	Sort            string `form:"sort"`
	Order           string `form:"order"`
	Limit           int    `form:"limit"`
}

type SearchPostingsResponse struct {
	Results []PostingResult `json:"results"`
	Total   int             `json:"total"`
}

type PostingResult struct {
	ID                  string   `json:"id"`
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	Requirements        string   `json:"requirements"`
	Compensation        string   `json:"compensation"`
	Category            string   `json:"category"`
	Department          string   `json:"department"`
	Duration            string   `json:"duration"`
	ApplicationDeadline *string  `json:"application_deadline"`
	CreatedAt           string   `json:"created_at"`
	Score               float64  `json:"score"`
	MatchedFields       []string `json:"matched_fields"`
}

type SuggestionsRequest struct {
	Query string `form:"q"`
	Limit int    `form:"limit"`
}

type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}
