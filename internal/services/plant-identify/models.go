// internal/services/plant-identify/models.go
package plantidentify

// Organs accepted by the identification API.
var validOrgans = map[string]bool{
	"flower": true,
	"leaf":   true,
	"fruit":  true,
	"stem":   true,
	"bark":   true,
	"habit":  true,
	"auto":   true,
}

// Image is one uploaded photo.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Input struct {
	Images []Image
	Organs []string
}

type Candidate struct {
	ScientificName string   `json:"scientificName"`
	CommonNames    []string `json:"commonNames"`
	Family         string   `json:"family"`
	Genus          string   `json:"genus"`
	Score          float64  `json:"score"`
}

// Output is the reshaped identification result returned to the front end.
type Output struct {
	ScientificName                  string      `json:"scientificName"`
	CommonNames                     []string    `json:"commonNames"`
	Family                          string      `json:"family"`
	Genus                           string      `json:"genus"`
	Score                           float64     `json:"score"`
	BestMatch                       string      `json:"bestMatch"`
	Candidates                      []Candidate `json:"candidates"`
	RemainingIdentificationRequests int         `json:"remainingIdentificationRequests"`
}

// --- PlantNet /v2/identify response ---

type identifyResponse struct {
	BestMatch                       string           `json:"bestMatch"`
	Results                         []identifyResult `json:"results"`
	RemainingIdentificationRequests int              `json:"remainingIdentificationRequests"`
}

type identifyResult struct {
	Score   float64 `json:"score"`
	Species species `json:"species"`
}

type species struct {
	ScientificNameWithoutAuthor string   `json:"scientificNameWithoutAuthor"`
	ScientificName              string   `json:"scientificName"`
	Genus                       taxon    `json:"genus"`
	Family                      taxon    `json:"family"`
	CommonNames                 []string `json:"commonNames"`
}

type taxon struct {
	ScientificNameWithoutAuthor string `json:"scientificNameWithoutAuthor"`
	ScientificName              string `json:"scientificName"`
}

func (t taxon) name() string {
	if t.ScientificNameWithoutAuthor != "" {
		return t.ScientificNameWithoutAuthor
	}
	return t.ScientificName
}

func (r identifyResult) candidate() Candidate {
	name := r.Species.ScientificNameWithoutAuthor
	if name == "" {
		name = r.Species.ScientificName
	}
	common := r.Species.CommonNames
	if common == nil {
		common = []string{}
	}
	return Candidate{
		ScientificName: name,
		CommonNames:    common,
		Family:         r.Species.Family.name(),
		Genus:          r.Species.Genus.name(),
		Score:          r.Score,
	}
}
