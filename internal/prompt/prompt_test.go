package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MereWhiplash/fieldnorm/internal/llm"
)

func TestBuild(t *testing.T) {
	ctx := "SSW : {'SSW': 'gestational_week'}\n"
	msgs := Build([]string{"SSW", "GG"}, ctx, "")

	require.Len(t, msgs, 2)
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "German clinical abbreviations")
	assert.Contains(t, msgs[0].Content, "Output valid JSON only")

	user := msgs[1]
	assert.Equal(t, llm.RoleUser, user.Role)
	assert.Contains(t, user.Content, "Context:\n"+ctx)
	assert.True(t, strings.HasSuffix(user.Content, "Fields:\nSSW, GG"))
	assert.Contains(t, user.Content, `"primary": "english_std_name"`)
	assert.NotContains(t, user.Content, "Samples")
}

func TestBuild_WithSamples(t *testing.T) {
	msgs := Build([]string{"RR"}, "", "RR\n120/80\n")

	user := msgs[1].Content
	assert.True(t, strings.HasSuffix(user, "Samples (CSV):\nRR\n120/80"))
}

func TestBuild_EmptyContext(t *testing.T) {
	msgs := Build([]string{"x"}, "", "   ")
	assert.Contains(t, msgs[1].Content, "Context:\n\n")
	assert.NotContains(t, msgs[1].Content, "Samples")
}
