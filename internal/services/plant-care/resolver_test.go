package plantcare

import (
	"context"
	"strings"
	"testing"

	apperrors "botaniq/internal/common/errors"
	"botaniq/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStore is an in-memory Store that counts loads.
type stubStore struct {
	facts Facts
	err   error
	loads int
}

func (s *stubStore) Load(_ context.Context) (Facts, error) {
	s.loads++
	return s.facts, s.err
}

func fullFact() PlantFact {
	return PlantFact{
		AttrLight:           "bright indirect",
		AttrWater:           "low",
		AttrSoil:            "sandy, well-draining",
		AttrVastu:           "east or north",
		AttrFertilizer:      "twice a year",
		AttrSuitableWeather: "warm and dry",
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Light", Label(AttrLight))
	assert.Equal(t, "Water", Label(AttrWater))
	assert.Equal(t, "Soil", Label(AttrSoil))
	assert.Equal(t, "Suitable Weather", Label(AttrSuitableWeather))
}

func TestRender_PlantCare(t *testing.T) {
	tests := []struct {
		name     string
		fact     PlantFact
		found    bool
		expected string
	}{
		{
			name:  "all attributes in fixed order",
			fact:  PlantFact{AttrSoil: "loamy", AttrWater: "weekly", AttrLight: "full sun"},
			found: true,
			expected: "Here's some care advice for your Rose:\n" +
				"- Light: full sun\n" +
				"- Water: weekly\n" +
				"- Soil: loamy",
		},
		{
			name:  "subset",
			fact:  PlantFact{AttrWater: "weekly"},
			found: true,
			expected: "Here's some care advice for your Rose:\n" +
				"- Water: weekly",
		},
		{
			name:  "no care attributes",
			fact:  PlantFact{AttrVastu: "north"},
			found: true,
			expected: "Here's some care advice for your Rose:\n" +
				careGeneral,
		},
		{
			name:     "not found",
			found:    false,
			expected: "Sorry, I don't have specific care information for Rose right now. " + careGeneral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Render(IntentPlantCare, "Rose", tt.fact, tt.found))
		})
	}
}

func TestRender_TopicIntents(t *testing.T) {
	for intent, tp := range topics {
		t.Run(intent, func(t *testing.T) {
			withAttr := Render(intent, "Tulsi", fullFact(), true)
			assert.True(t, strings.HasPrefix(withAttr, strings.Replace(tp.header, "%s", "your Tulsi", 1)))
			assert.Contains(t, withAttr, fullFact()[tp.attribute])

			withoutAttr := Render(intent, "Tulsi", PlantFact{}, true)
			assert.Contains(t, withoutAttr, tp.fallback)

			missing := Render(intent, "Tulsi", nil, false)
			assert.Equal(t, strings.Replace(tp.apology, "%s", "Tulsi", 1), missing)
		})
	}
}

func TestRender_DefaultDisplayNameHeaders(t *testing.T) {
	expected := map[string]string{
		IntentPlantCare:  "Here's some care advice for your plant:",
		IntentVastu:      "Regarding Vastu, for your plant:",
		IntentFertilizer: "Here's the fertilizer advice for your plant:",
		IntentWeather:    "Here are the suitable weather conditions for your plant:",
	}

	for intent, header := range expected {
		t.Run(intent, func(t *testing.T) {
			text := Render(intent, DefaultDisplayName, fullFact(), true)
			assert.True(t, strings.HasPrefix(text, header+"\n"), text)
			assert.NotContains(t, text, "your your")
		})
	}

	assert.Equal(t, "Regarding Vastu, for your Tulsi:\n"+fullFact()[AttrVastu], Render(IntentVastu, "Tulsi", fullFact(), true))
}

func TestRender_AllAttributesLabelOrder(t *testing.T) {
	text := Render(IntentPlantCare, "Aloe", fullFact(), true)

	light := strings.Index(text, "- Light:")
	water := strings.Index(text, "- Water:")
	soil := strings.Index(text, "- Soil:")
	require.True(t, light > 0 && water > 0 && soil > 0)
	assert.Less(t, light, water)
	assert.Less(t, water, soil)
}

func TestRender_UnknownIntent(t *testing.T) {
	for _, intent := range []string{"", "Default Welcome Intent", "plantcareintent"} {
		assert.Equal(t, StillLearningText, Render(intent, "Rose", fullFact(), true))
		assert.Equal(t, StillLearningText, Render(intent, "Rose", nil, false))
	}
}

func TestResolver_Resolve(t *testing.T) {
	store := &stubStore{facts: Facts{
		"aloe vera": {AttrLight: "bright indirect", AttrWater: "low"},
	}}
	resolver := NewResolver(store, logger.NewTestLogger(t))

	res, err := resolver.Resolve(context.Background(), Query{
		Intent:     IntentPlantCare,
		Parameters: map[string]interface{}{"plant": []interface{}{"Aloe Vera"}},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.Text, "Here's some care advice for your Aloe Vera:"))
	assert.Contains(t, res.Text, "- Light: bright indirect")
	assert.Contains(t, res.Text, "- Water: low")
	assert.NotContains(t, res.Text, "Soil")
	assert.Equal(t, "aloe vera", res.Key)
	assert.Equal(t, OutcomeFound, res.Outcome)
}

func TestResolver_Resolve_NotFound(t *testing.T) {
	store := &stubStore{facts: Facts{}}
	resolver := NewResolver(store, logger.NewNoOpLogger())

	for _, intent := range []string{IntentPlantCare, IntentVastu, IntentFertilizer, IntentWeather} {
		res, err := resolver.Resolve(context.Background(), Query{
			Intent:     intent,
			Parameters: map[string]interface{}{"plant": "Cactus"},
		})
		require.NoError(t, err)
		assert.Equal(t, OutcomeNotFound, res.Outcome)
		assert.True(t, strings.HasPrefix(res.Text, "Sorry,"), res.Text)
		assert.Contains(t, res.Text, "Cactus")
	}
}

func TestResolver_Resolve_UnknownIntentSkipsStore(t *testing.T) {
	store := &stubStore{err: apperrors.NewFactFileNotFoundError("x", nil)}
	resolver := NewResolver(store, logger.NewNoOpLogger())

	res, err := resolver.Resolve(context.Background(), Query{
		Intent:     "smallTalk",
		Parameters: map[string]interface{}{"plant": "Rose"},
	})
	require.NoError(t, err)
	assert.Equal(t, StillLearningText, res.Text)
	assert.Equal(t, OutcomeUnrecognized, res.Outcome)
	assert.Zero(t, store.loads)
}

func TestResolver_Resolve_StoreError(t *testing.T) {
	storeErr := apperrors.NewFactDataMalformedError("bad", ErrFactDataMalformed)
	resolver := NewResolver(&stubStore{err: storeErr}, logger.NewNoOpLogger())

	res, err := resolver.Resolve(context.Background(), Query{Intent: IntentWeather})
	require.Error(t, err)
	assert.Same(t, storeErr, err)
	assert.Equal(t, OutcomeError, res.Outcome)
	assert.Equal(t, DefaultDisplayName, res.DisplayName)
}
