package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	payload := `{"recipes": []}`

	variants := []string{
		"```json\n" + payload + "\n```",
		"```\n" + payload + "\n```",
		"```JSON\n" + payload + "\n```",
		payload,
	}

	for _, v := range variants {
		got, err := ExtractObject(StripFences(v))
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	}
}

func TestExtractObject(t *testing.T) {
	got, err := ExtractObject("Here are your recipes!\n{\"recipes\": []}\nEnjoy!")
	require.NoError(t, err)
	assert.Equal(t, `{"recipes": []}`, got)

	_, err = ExtractObject("I'm sorry, I can't generate recipes for that.")
	assert.ErrorIs(t, err, ErrNoJSONFound)

	_, err = ExtractObject("} backwards {")
	assert.ErrorIs(t, err, ErrNoJSONFound)
}

func TestStripComments(t *testing.T) {
	in := `{
  "name": "Soup", // a comment
  /* block
     comment */
  "url": "http://example.com/img.png"
}`
	out := StripComments(in)
	assert.NotContains(t, out, "a comment")
	assert.NotContains(t, out, "block")
	assert.Contains(t, out, "http://example.com/img.png")
}

func TestRepairFractions(t *testing.T) {
	assert.Equal(t, `"amount": "0.5"`, RepairFractions(`"amount": "1/2"`))
	assert.Equal(t, `"amount": "0.75"`, RepairFractions(`"amount": "3 / 4"`))
	// Dates and other non-fraction strings are left alone.
	assert.Equal(t, `"amount": "1 1/2 cups"`, RepairFractions(`"amount": "1 1/2 cups"`))
}

func TestDropDuplicateKeys(t *testing.T) {
	in := `{"name": "x", "unit": "cup", "unit": "tbsp"}`
	out := DropDuplicateKeys(in)
	assert.Equal(t, `{"name": "x", "unit": "tbsp"}`, out)

	// Same key in sibling objects is legitimate and must survive.
	in = `[{"unit": "cup"}, {"unit": "tbsp"}]`
	assert.Equal(t, in, DropDuplicateKeys(in))
}

func TestQuoteBareScalars(t *testing.T) {
	assert.Equal(t, `"amount": "2"`, QuoteBareScalars(`"amount": 2`))
	assert.Equal(t, `"amount": "1.5"`, QuoteBareScalars(`"amount": 1.5`))
	assert.Equal(t, `"amount": "1 cup"`, QuoteBareScalars(`"amount": "1 cup"`))
}

func TestStripTrailingCommas(t *testing.T) {
	in := `{"tags": ["a", "b",], "servings": 4,}`
	out := StripTrailingCommas(in)
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &v))
}

func TestRepairJSONFullChain(t *testing.T) {
	raw := "Here you go!\n```json\n" + `{
  "recipes": [
    {
      "name": "Garlic Butter Pasta", // quick weeknight dinner
      "servings": 4,
      "ingredients": [
        {"name": "butter", "amount": "1/2", "unit": "cup", "unit": "stick"},
        {"name": "garlic", "amount": 3, "unit": "cloves"},
      ],
    },
  ]
}` + "\n```\nEnjoy your meal!"

	repaired, err := RepairJSON(raw)
	require.NoError(t, err)

	var wrapper struct {
		Recipes []struct {
			Name        string `json:"name"`
			Ingredients []struct {
				Name   string `json:"name"`
				Amount string `json:"amount"`
				Unit   string `json:"unit"`
			} `json:"ingredients"`
		} `json:"recipes"`
	}
	require.NoError(t, json.Unmarshal([]byte(repaired), &wrapper))
	require.Len(t, wrapper.Recipes, 1)
	require.Len(t, wrapper.Recipes[0].Ingredients, 2)
	assert.Equal(t, "0.5", wrapper.Recipes[0].Ingredients[0].Amount)
	assert.Equal(t, "stick", wrapper.Recipes[0].Ingredients[0].Unit)
	assert.Equal(t, "3", wrapper.Recipes[0].Ingredients[1].Amount)
}
