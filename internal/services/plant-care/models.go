// internal/services/plant-care/models.go
package plantcare

// Care attribute names as they appear in plant_data.json.
const (
	AttrLight           = "light"
	AttrWater           = "water"
	AttrSoil            = "soil"
	AttrVastu           = "vastu"
	AttrFertilizer      = "fertilizer"
	AttrSuitableWeather = "suitable_weather"
)

// PlantFact is one dictionary entry. Every attribute is optional.
type PlantFact map[string]string

// Get reports the attribute value and whether the entry carries it at all.
func (f PlantFact) Get(attr string) (string, bool) {
	v, ok := f[attr]
	return v, ok
}

// Facts is the whole dictionary keyed by normalized plant name.
type Facts map[string]PlantFact

// Query is the intent and parameters extracted from one webhook call.
type Query struct {
	Intent     string
	Parameters map[string]interface{}
}

// Resolution is what the resolver produced for a Query.
type Resolution struct {
	Text        string
	Key         string
	DisplayName string
	Outcome     string
}

// Resolution outcomes, used as the metrics label.
const (
	OutcomeFound        = "found"
	OutcomeNotFound     = "not_found"
	OutcomeUnrecognized = "unrecognized"
	OutcomeError        = "error"
)

// --- Fulfillment webhook wire format ---

type WebhookRequest struct {
	ResponseID  string      `json:"responseId"`
	Session     string      `json:"session"`
	QueryResult QueryResult `json:"queryResult"`
}

type QueryResult struct {
	QueryText    string                 `json:"queryText"`
	Parameters   map[string]interface{} `json:"parameters"`
	Intent       Intent                 `json:"intent"`
	LanguageCode string                 `json:"languageCode"`
}

type Intent struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

type WebhookResponse struct {
	FulfillmentText string `json:"fulfillmentText"`
}
