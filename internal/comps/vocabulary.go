package comps

import "regexp"

// fluffWords carry no matching signal for marketplace titles.
var fluffWords = toSet(
	"a", "an", "the", "and", "or", "of", "for", "with", "in", "on", "by", "to",
	"men", "mens", "men's", "women", "womens", "women's", "woman", "man",
	"ladies", "lady", "boys", "boy's", "girls", "girl's", "unisex", "kids", "adult",
	"shirt", "shirts", "tee", "tees", "t-shirt", "tshirt", "top", "tops",
	"clothing", "apparel", "item", "size",
)

// BrandPair is a two-word brand whose words must co-occur in a match.
type BrandPair struct {
	First  string
	Second string
}

// Bigram is the pair as a phrase.
func (p BrandPair) Bigram() string { return p.First + " " + p.Second }

// requiredBrandPairs lists brands where one word alone names a different
// product line (Harley Quinn vs Harley-Davidson).
var requiredBrandPairs = []BrandPair{
	{"harley", "davidson"},
	{"louis", "vuitton"},
	{"ralph", "lauren"},
	{"calvin", "klein"},
	{"tommy", "hilfiger"},
	{"michael", "kors"},
	{"kate", "spade"},
	{"under", "armour"},
	{"north", "face"},
	{"vera", "bradley"},
	{"tory", "burch"},
	{"hot", "wheels"},
	{"lucky", "brand"},
	{"american", "eagle"},
	{"banana", "republic"},
}

// productKeywords mark a query as asking for the product itself.
var productKeywords = toSet(
	"iphone", "ipad", "macbook", "imac", "airpods", "galaxy", "pixel", "oneplus",
	"playstation", "ps4", "ps5", "xbox", "switch", "nintendo", "gameboy",
	"laptop", "notebook", "chromebook", "tablet", "phone", "smartphone",
	"console", "camera", "lens", "drone", "gopro", "kindle", "watch", "smartwatch",
	"headphones", "earbuds", "speaker", "monitor", "tv", "television", "router",
	"gpu", "graphics", "cpu", "processor", "controller", "dyson", "vacuum", "kitchenaid",
)

// accessoryWords describe listings for things that go with a product.
var accessoryWords = toSet(
	"case", "cases", "cover", "covers", "charger", "charging", "cable", "cord",
	"adapter", "protector", "skin", "skins", "sleeve", "strap", "band", "bands",
	"mount", "holder", "stand", "dock", "decal", "sticker", "replacement",
	"housing", "shell", "manual", "empty", "lot", "parts",
)

// accessoryPhrases are multi-word accessory terms matched as substrings.
var accessoryPhrases = []string{
	"screen protector", "tempered glass", "box only", "for parts", "compatible with",
}

// bundlePattern matches lot, bundle and multi-pack language.
var bundlePattern = regexp.MustCompile(
	`\b(lot|lots|bundle|bundles|bulk|wholesale|multipack|multi-pack|set of \d+|pack of \d+|\d+[\s-]?(pc|pcs|pk|pack|ct|count)|x\d+)\b`)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
