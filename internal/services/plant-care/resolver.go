package plantcare

import (
	"context"
	"fmt"
	"strings"

	"botaniq/internal/common/logger"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Intent display names configured on the agent.
const (
	IntentPlantCare  = "PlantCareIntent"
	IntentVastu      = "vastuShastra"
	IntentFertilizer = "fertilizerNeeds"
	IntentWeather    = "weatherReq"
)

const StillLearningText = "I'm still learning how to help with that!"

const (
	careHeader  = "Here's some care advice for %s:"
	careApology = "Sorry, I don't have specific care information for %s right now. General care usually involves providing appropriate light and watering when the topsoil is dry."
	careGeneral = "General care usually involves providing appropriate light and watering when the topsoil is dry."
)

// careAttributes is the fixed bullet order for PlantCareIntent.
var careAttributes = []string{AttrLight, AttrWater, AttrSoil}

// topic renders the single-attribute intents.
type topic struct {
	attribute string
	header    string
	fallback  string
	apology   string
}

var topics = map[string]topic{
	IntentVastu: {
		attribute: AttrVastu,
		header:    "Regarding Vastu, for %s:",
		fallback:  "According to Vastu principles, the placement and care of plants can influence the energy in your home. You might want to research specific Vastu guidelines for optimal placement of your plant.",
		apology:   "Sorry, I don't have Vastu information for %s right now. You might want to research Vastu principles related to this plant.",
	},
	IntentFertilizer: {
		attribute: AttrFertilizer,
		header:    "Here's the fertilizer advice for %s:",
		fallback:  "Most plants do well with a balanced, diluted liquid fertilizer every four to six weeks during the growing season and little or none in winter.",
		apology:   "Sorry, I don't have fertilizer information for %s right now.",
	},
	IntentWeather: {
		attribute: AttrSuitableWeather,
		header:    "Here are the suitable weather conditions for %s:",
		fallback:  "Most plants prefer moderate temperatures and protection from frost and harsh afternoon sun.",
		apology:   "Sorry, I don't have weather information for %s right now.",
	},
}

// IsKnownIntent reports whether the resolver has a template for intent.
func IsKnownIntent(intent string) bool {
	if intent == IntentPlantCare {
		return true
	}
	_, ok := topics[intent]
	return ok
}

// Label title-cases an attribute key for display: "suitable_weather" -> "Suitable Weather".
func Label(attr string) string {
	// a Caser is stateful, so one per call
	return cases.Title(language.English).String(strings.ReplaceAll(attr, "_", " "))
}

// Render picks the response template for intent. found reports whether the
// dictionary had an entry for the plant.
func Render(intent, displayName string, fact PlantFact, found bool) string {
	if intent == IntentPlantCare {
		return renderCare(displayName, fact, found)
	}

	t, ok := topics[intent]
	if !ok {
		return StillLearningText
	}
	if !found {
		return fmt.Sprintf(t.apology, displayName)
	}

	body := t.fallback
	if v, ok := fact.Get(t.attribute); ok {
		body = v
	}
	return fmt.Sprintf(t.header, possessive(displayName)) + "\n" + body
}

// possessive prefixes "your" unless the name already carries it.
func possessive(displayName string) string {
	if displayName == DefaultDisplayName {
		return displayName
	}
	return "your " + displayName
}

func renderCare(displayName string, fact PlantFact, found bool) string {
	if !found {
		return fmt.Sprintf(careApology, displayName)
	}

	lines := []string{fmt.Sprintf(careHeader, possessive(displayName))}
	for _, attr := range careAttributes {
		if v, ok := fact.Get(attr); ok {
			lines = append(lines, fmt.Sprintf("- %s: %s", Label(attr), v))
		}
	}
	if len(lines) == 1 {
		lines = append(lines, careGeneral)
	}
	return strings.Join(lines, "\n")
}

// Resolver answers a Query from the fact store.
type Resolver struct {
	store  Store
	logger logger.Logger
}

func NewResolver(store Store, log logger.Logger) *Resolver {
	return &Resolver{store: store, logger: log}
}

// Resolve returns the store error untouched; turning it into reply text is
// the caller's job. Unrecognized intents never touch the store.
func (r *Resolver) Resolve(ctx context.Context, q Query) (*Resolution, error) {
	if !IsKnownIntent(q.Intent) {
		return &Resolution{Text: StillLearningText, Outcome: OutcomeUnrecognized}, nil
	}

	key, displayName := Normalize(q.Parameters)
	res := &Resolution{Key: key, DisplayName: displayName}

	facts, err := r.store.Load(ctx)
	if err != nil {
		res.Outcome = OutcomeError
		return res, err
	}

	fact, found := Lookup(facts, key)
	res.Text = Render(q.Intent, displayName, fact, found)
	res.Outcome = OutcomeNotFound
	if found {
		res.Outcome = OutcomeFound
	}

	r.logger.Debug("fulfillment rendered", map[string]interface{}{
		"intent":   q.Intent,
		"plantKey": key,
		"outcome":  res.Outcome,
	})

	return res, nil
}
