package comps_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlockonautAlchemist/ResellrAi-sub001/internal/comps"
)

func TestShapeQuery_HyphenIdentifier(t *testing.T) {
	s := comps.ShapeQuery("Nintendo Switch HAC-001 console")

	assert.Equal(t, []string{"nintendo", "switch", "hac", "001", "console"}, s.RawTokens)
	assert.Equal(t, []string{"nintendo", "switch", "hac", "001", "console"}, s.Tokens)
	assert.Equal(t, []string{"hac-001"}, s.Identifiers)
	assert.Equal(t, []string{"nintendo", "switch"}, s.BrandTokens)
	assert.Equal(t, []string{
		"hac-001",
		"hac-001 nintendo switch console",
		"nintendo switch hac 001 console",
		"nintendo switch hac 001",
	}, s.Ladder)
	assert.True(t, s.ProductIntent)
	assert.False(t, s.WantsAccessory)
	assert.False(t, s.WantsBundle)
}

func TestShapeQuery_DigitRunComesFirst(t *testing.T) {
	s := comps.ShapeQuery("Sony WH-1000XM4 headphones 027242919412")
	assert.Equal(t, []string{"027242919412", "wh-1000xm4"}, s.Identifiers)
	require.NotEmpty(t, s.Ladder)
	assert.Equal(t, "027242919412", s.Ladder[0])
}

func TestShapeQuery_ShortCodesAreNotIdentifiers(t *testing.T) {
	s := comps.ShapeQuery("3-pack usb-c cables")
	assert.Empty(t, s.Identifiers)
	assert.True(t, s.WantsBundle)
}

func TestShapeQuery_FluffRemoval(t *testing.T) {
	s := comps.ShapeQuery("The North Face men's jacket for women")
	assert.Equal(t, []string{"north", "face", "jacket"}, s.Tokens)
	assert.Equal(t, []string{"north", "face"}, s.BrandTokens)
	require.NotNil(t, s.RequiredPair)
	assert.Equal(t, "north face", s.RequiredPair.Bigram())
}

func TestShapeQuery_AllFluffKeepsRawTokens(t *testing.T) {
	s := comps.ShapeQuery("the men's shirt")
	assert.Equal(t, []string{"the", "men's", "shirt"}, s.Tokens)
	assert.Equal(t, []string{"the men's shirt"}, s.Ladder)
}

func TestShapeQuery_QuotesStripped(t *testing.T) {
	s := comps.ShapeQuery(`"Pyrex" 'butterfly' bowl`)
	assert.Equal(t, []string{"pyrex", "butterfly", "bowl"}, s.Tokens)
}

func TestShapeQuery_BrandPairFromHyphenatedBrand(t *testing.T) {
	s := comps.ShapeQuery("Harley-Davidson leather jacket")
	require.NotNil(t, s.RequiredPair)
	assert.Equal(t, "harley", s.RequiredPair.First)
	assert.Equal(t, "davidson", s.RequiredPair.Second)
	assert.Empty(t, s.Identifiers)
}

func TestShapeQuery_TokenCap(t *testing.T) {
	words := []string{
		"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf",
		"hotel", "india", "juliet", "kilo", "lima", "mike", "november",
		"oscar", "papa", "quebec", "romeo",
	}
	s := comps.ShapeQuery(strings.Join(words, " "))
	assert.Len(t, s.Tokens, comps.MaxCleanTokens)
	assert.Equal(t, words[:comps.MaxCleanTokens], s.Tokens)
}

func TestShapeQuery_LadderBounds(t *testing.T) {
	for _, q := range []string{
		"Bosch GSR12V-300 drill driver kit brushless 12V max cordless",
		"vintage levis 501 jeans 32x30 made in usa selvedge red line",
		"lego",
		"Canon AE-1 Program 35mm film camera 50mm lens",
	} {
		s := comps.ShapeQuery(q)
		assert.NotEmpty(t, s.Ladder, q)
		assert.LessOrEqual(t, len(s.Ladder), comps.MaxLadderLength, q)

		seen := map[string]bool{}
		for _, v := range s.Ladder {
			assert.NotEmpty(t, v, q)
			assert.False(t, seen[v], "duplicate variant %q for %q", v, q)
			seen[v] = true
		}
	}
}

func TestShapeQuery_LongQueryLadder(t *testing.T) {
	s := comps.ShapeQuery("Bosch GSR12V-300 drill driver kit brushless 12V max cordless")
	assert.Equal(t, []string{"gsr12v-300"}, s.Identifiers)
	assert.Equal(t, []string{
		"gsr12v-300",
		"gsr12v-300 bosch drill driver",
		"bosch gsr12v 300 drill driver kit",
		"bosch gsr12v 300 drill driver kit brushless 12v max cordless",
		"bosch gsr12v 300 drill",
	}, s.Ladder)
}

func TestShapeQuery_AccessoryIntent(t *testing.T) {
	s := comps.ShapeQuery("iPhone 13 case")
	assert.True(t, s.WantsAccessory)
	assert.False(t, s.ProductIntent)

	s = comps.ShapeQuery("iPhone 13 screen protector")
	assert.True(t, s.WantsAccessory)
}
