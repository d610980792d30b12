package digest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nzdigest/nzdigest/internal/engine"
)

func TestResolve(t *testing.T) {
	t.Cleanup(ResetModels)

	f, err := Resolve(DefaultModel)
	require.NoError(t, err)
	assert.Equal(t, FamilyFirstParty, f)

	f, err = Resolve("llama-3.3-70b-versatile")
	require.NoError(t, err)
	assert.Equal(t, FamilyThirdParty, f)

	_, err = Resolve("gpt-4o")
	require.Error(t, err)
	assert.Equal(t, engine.KindUnsupportedModel, engine.KindOf(err))
	assert.Equal(t, "Unsupported model: gpt-4o", engine.UserMessage(err))
}

func TestSetThirdPartyModels(t *testing.T) {
	t.Cleanup(ResetModels)

	SetThirdPartyModels([]engine.ModelInfo{
		{ID: " mixtral-8x7b "},
		{ID: "mixtral-8x7b", DisplayName: "dup"},
		{ID: ""},
		{ID: DefaultModel, DisplayName: "shadow"},
	})

	models := Models()
	require.Len(t, models, 2)
	assert.Equal(t, DefaultModel, models[0].ID)
	assert.True(t, models[0].Default)
	assert.Equal(t, "mixtral-8x7b", models[1].ID)
	assert.Equal(t, "mixtral-8x7b", models[1].DisplayName)
	assert.Equal(t, "groq", models[1].Family)

	_, err := Resolve("llama-3.3-70b-versatile")
	assert.Error(t, err, "replaced catalog drops built-in third-party models")
	_, err = Resolve("mixtral-8x7b")
	assert.NoError(t, err)
}

func TestModels_ReturnsCopy(t *testing.T) {
	t.Cleanup(ResetModels)
	m := Models()
	m[0].ID = "mutated"
	assert.Equal(t, DefaultModel, Models()[0].ID)
}
