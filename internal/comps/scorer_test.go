package comps_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlockonautAlchemist/ResellrAi-sub001/internal/comps"
)

func TestScorer_IdentifierBoost(t *testing.T) {
	s := comps.ShapeQuery("Nintendo Switch HAC-001 console")
	sc := comps.NewScorer()

	withID := sc.Breakdown(&s, "Nintendo Switch HAC-001 Console Gray")
	assert.Equal(t, comps.IdentifierBonus, withID["identifier_match"])
	assert.Equal(t, 5*comps.TokenBonus, withID["token_match"])

	withoutID := sc.ScoreTitle(&s, "Nintendo Switch OLED Console White")
	assert.GreaterOrEqual(t, sc.ScoreTitle(&s, "Nintendo Switch HAC-001 Console Gray")-withoutID, comps.IdentifierBonus)
}

func TestScorer_IdentifierTokenBonus(t *testing.T) {
	s := comps.ShapeQuery("galaxy 027242919412")
	got := comps.NewScorer().Breakdown(&s, "Samsung Galaxy 027242919412 sealed")
	assert.Equal(t, comps.IdentifierBonus, got["identifier_match"])
	assert.Equal(t, comps.IdentifierTokenBonus+comps.TokenBonus, got["token_match"])
}

func TestScorer_RanksTenDigitModelFirst(t *testing.T) {
	s := comps.ShapeQuery("Makita drill 0088381618 18V")
	require.Contains(t, s.Identifiers, "0088381618")

	ranked := comps.NewScorer().Rank(&s, []comps.Candidate{
		candidate("a", "Makita 18V LXT Cordless Drill Driver Kit", 80, 0),
		candidate("b", "Makita Drill 18V Brushless Cordless", 70, 0),
		candidate("c", "Makita 0088381618 drill", 150, 0),
		candidate("d", "Makita 18V drill combo", 60, 0),
	})
	require.Len(t, ranked, 4)
	assert.Equal(t, "c", ranked[0].ExternalID)
	for _, rc := range ranked[1:] {
		assert.Greater(t, ranked[0].Score, rc.Score)
	}
}

func TestScorer_HarleyQuinnIsNotHarleyDavidson(t *testing.T) {
	s := comps.ShapeQuery("Harley Davidson t-shirt")
	require.Equal(t, []string{"harley", "davidson"}, s.Tokens)
	sc := comps.NewScorer()

	davidson := sc.ScoreTitle(&s, "Harley-Davidson Men's Black Eagle T-Shirt XL")
	quinn := sc.ScoreTitle(&s, "Harley Quinn Suicide Squad T-Shirt")

	assert.Equal(t, 2*comps.TokenBonus, davidson)
	assert.Equal(t, comps.TokenBonus+comps.BrandPairPenalty, quinn)
	assert.GreaterOrEqual(t, davidson-quinn, -comps.BrandPairPenalty)
}

func TestScorer_PhoneOutranksCase(t *testing.T) {
	s := comps.ShapeQuery("iPhone 13 Pro 128GB")
	require.True(t, s.ProductIntent)
	sc := comps.NewScorer()

	phone := sc.ScoreTitle(&s, "Apple iPhone 13 Pro 128GB Graphite Unlocked")
	phoneCase := sc.ScoreTitle(&s, "iPhone 13 Pro Case Silicone Cover")

	assert.Equal(t, 4*comps.TokenBonus, phone)
	assert.Equal(t, 3*comps.TokenBonus+comps.AccessoryPenalty, phoneCase)
	assert.Greater(t, phone, phoneCase)
}

func TestScorer_AccessoryQueryKeepsAccessories(t *testing.T) {
	s := comps.ShapeQuery("iPhone 13 Pro case")
	got := comps.NewScorer().Breakdown(&s, "iPhone 13 Pro Case Silicone Cover")
	assert.Zero(t, got["accessory"])
}

func TestScorer_BrandMiss(t *testing.T) {
	s := comps.ShapeQuery("Pyrex butterfly bowl")
	sc := comps.NewScorer()
	assert.Equal(t, comps.BrandMissPenalty, sc.Breakdown(&s, "Anchor Hocking mixing bowl")["brand_miss"])
	assert.Zero(t, sc.Breakdown(&s, "Vintage PYREX Butterfly Gold bowl")["brand_miss"])
}

func TestScorer_UnrequestedBundle(t *testing.T) {
	sc := comps.NewScorer()

	single := comps.ShapeQuery("pokemon charizard card")
	assert.Equal(t, comps.BundlePenalty, sc.Breakdown(&single, "Pokemon card bundle charizard")["bundle"])
	assert.Equal(t, comps.BundlePenalty, sc.Breakdown(&single, "Charizard card 5 pack")["bundle"])
	assert.Zero(t, sc.Breakdown(&single, "Pokemon Charizard holo card")["bundle"])

	lot := comps.ShapeQuery("pokemon card lot")
	require.True(t, lot.WantsBundle)
	assert.Zero(t, sc.Breakdown(&lot, "Pokemon card bundle charizard")["bundle"])
}

func TestScorer_CustomRules(t *testing.T) {
	s := comps.ShapeQuery("lego castle")
	sc := comps.NewScorer(comps.Rule{
		Name: "constant",
		Eval: func(*comps.Shape, comps.Title) int { return 7 },
	})
	assert.Equal(t, 7, sc.ScoreTitle(&s, "anything"))
	assert.Equal(t, map[string]int{"constant": 7}, sc.Breakdown(&s, "anything"))
}

func TestRank_Deterministic(t *testing.T) {
	s := comps.ShapeQuery("lego castle 6080")
	candidates := []comps.Candidate{
		candidate("c", "LEGO castle 6080 complete", 40, 0),
		candidate("a", "LEGO castle 6080 complete", 30, 5),
		candidate("b", "LEGO castle 6080 complete", 30, 5),
		candidate("d", "LEGO space shuttle", 10, 0),
	}
	sc := comps.NewScorer()

	first := sc.Rank(&s, candidates)
	for i := 0; i < 10; i++ {
		shuffled := []comps.Candidate{candidates[3], candidates[1], candidates[0], candidates[2]}
		again := sc.Rank(&s, shuffled)
		assert.Equal(t, ids(first), ids(again))
	}
	// Equal scores fall back to total cost, then ID.
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(first))
}

func candidate(id, title string, price, shipping float64) comps.Candidate {
	c := comps.Candidate{
		ExternalID:   id,
		Title:        title,
		Price:        comps.Money{Amount: price, Currency: "USD"},
		ShippingCost: shipping,
	}
	c.RecomputeTotal()
	return c
}

func ids(scored []comps.ScoredCandidate) []string {
	out := make([]string, len(scored))
	for i, s := range scored {
		out[i] = s.ExternalID
	}
	return out
}
