package news

// Event Registry wire types, trimmed to the fields the pipeline consumes.

type articleSearchRequest struct {
	Action            string   `json:"action"`
	Keyword           []string `json:"keyword"`
	KeywordOper       string   `json:"keywordOper"`
	ArticlesPage      int      `json:"articlesPage"`
	ArticlesCount     int      `json:"articlesCount"`
	ArticlesSortBy    string   `json:"articlesSortBy"`
	DataType          []string `json:"dataType,omitempty"`
	DateStart         string   `json:"dateStart,omitempty"`
	Lang              string   `json:"lang,omitempty"`
	SourceLocationURI string   `json:"sourceLocationUri,omitempty"`
	ResultType        string   `json:"resultType"`
	APIKey            string   `json:"apiKey"`
}

type articleSearchResponse struct {
	Articles struct {
		Results      []articleResult `json:"results"`
		TotalResults int             `json:"totalResults"`
	} `json:"articles"`
	Error string `json:"error"`
}

type articleResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Body        string `json:"body"`
	DateTime    string `json:"dateTime"`
	DateTimePub string `json:"dateTimePub"`
	Source      struct {
		Title string `json:"title"`
		URI   string `json:"uri"`
	} `json:"source"`
}

type locationSuggestion struct {
	WikiURI string `json:"wikiUri"`
	Label   struct {
		Eng string `json:"eng"`
	} `json:"label"`
}
