package router

// Declarative rule tables. Keeping the vocabulary as data means the cascade
// in router.go stays pure lookup and the tables can be reviewed on their
// own.

// CachedAnswer is one instant-answer rule: if any keyword matches, the
// response is returned verbatim without ranking.
type CachedAnswer struct {
	Name     string
	Keywords []string
	Response string
}

// quickAnswers covers facts customers ask for constantly. First matching
// entry wins, so more specific rules come first.
var quickAnswers = []CachedAnswer{
	{
		Name:     "discount_code",
		Keywords: []string{"discount code", "coupon", "promo code", "promotion"},
		Response: "New customers get 10% off their first order with code WELCOME10 at checkout. We also run seasonal sales, so keep an eye on the homepage banner.",
	},
	{
		Name:     "shipping_policy",
		Keywords: []string{"shipping cost", "shipping time", "how long does shipping", "free shipping", "ship internationally", "international shipping"},
		Response: "Orders ship within 1 to 2 business days. US orders over $50 ship free; standard delivery takes 3 to 5 business days. We ship internationally, but customs fees are the buyer's responsibility.",
	},
	{
		Name:     "payment_methods",
		Keywords: []string{"payment method", "pay with", "accept paypal", "accept crypto", "credit card"},
		Response: "We accept all major credit cards and several cryptocurrencies at checkout. PayPal is not available for our product category.",
	},
	{
		Name:     "what_is_bubbler",
		Keywords: []string{"what is a bubbler", "what is a hydratube", "whats a bubbler"},
		Response: "A bubbler (also called a hydratube or water attachment) is a glass piece that passes vapor through water to cool and smooth it before you inhale.",
	},
	{
		Name:     "what_is_tcr",
		Keywords: []string{"what is tcr", "whats tcr", "tcr mean"},
		Response: "TCR stands for temperature coefficient of resistance. It lets a mod hold your heater at a set temperature instead of firing at raw wattage, which protects flavor and prevents burning.",
	},
	{
		Name:     "age_requirement",
		Keywords: []string{"age requirement", "how old", "minimum age"},
		Response: "You must be 21 or older to purchase from our store. Age verification happens at checkout.",
	},
}

// serviceIssues are fulfillment problems that skip straight to a canned
// apology plus the support contact, ahead of any keyword routing.
var serviceIssues = []CachedAnswer{
	{
		Name:     "damaged_item",
		Keywords: []string{"arrived damaged", "arrived broken", "came broken", "damaged in shipping", "box was crushed"},
		Response: "Sorry about that. Please email support@ with your order number and a photo of the damage and we'll send a replacement right away.",
	},
	{
		Name:     "missing_item",
		Keywords: []string{"missing from my order", "item missing", "didn't receive everything", "incomplete order", "missing part of"},
		Response: "Sorry about that. Email support@ with your order number and which item is missing; we'll ship the missing piece immediately.",
	},
	{
		Name:     "wrong_item",
		Keywords: []string{"wrong item", "wrong product", "sent me the wrong", "not what i ordered"},
		Response: "Apologies for the mix-up. Email support@ with your order number and a photo of what arrived and we'll cross-ship the correct item.",
	},
}

// supportInfo holds the policy texts for the warranty/return/order routes.
var supportInfo = map[string]string{
	"warranty": "All devices carry a 90-day warranty against manufacturing defects. DOA units are replaced free including shipping. The warranty doesn't cover physical damage or normal coil wear.",
	"return":   "Unused items in original packaging can be returned within 30 days for a refund. Opened atomizers and mouthpieces can't be returned for hygiene reasons, but defective units fall under warranty instead.",
	"order":    "I can check on that. Could you share your order number (the 5 to 7 digit number from your confirmation email)?",
	"contact":  "You can reach the team at support@ or through the contact form; replies usually land within one business day.",
}

// ComparisonPair is a cached head-to-head answer.
type ComparisonPair struct {
	Name     string
	Keywords [][]string // each inner list must all appear in the query
	Response string
}

var comparisonPairs = []ComparisonPair{
	{
		Name:     "v5_vs_v5_xl",
		Keywords: [][]string{{"v5", "xl"}},
		Response: "The V5 XL is the bigger brother of the V5: a deeper bucket for larger loads and longer sessions, while the V5 heats up slightly faster and sips less battery. Same coil platform, so bubblers and caps interchange.",
	},
	{
		Name:     "v5_vs_core",
		Keywords: [][]string{{"v5", "core"}},
		Response: "The V5 runs on an external mod and rewards dialing in your own TCR settings; the Core is an all-in-one with its own battery and presets. Pick the V5 for control and flavor tinkering, the Core for grab-and-go simplicity.",
	},
	{
		Name:     "flower_vs_concentrate",
		Keywords: [][]string{{"flower", "concentrate"}, {"herb", "concentrate"}, {"flower", "wax"}},
		Response: "Dry herb devices vaporize ground flower and are the familiar starting point; concentrate devices work with wax or rosin and deliver stronger effects from smaller amounts. We make dedicated devices for each, so it comes down to what material you prefer.",
	},
}

// moderationPatterns are disallowed-content triggers. Matching any of these
// short-circuits everything, including catalog lookup.
var moderationPatterns = []string{
	"under 21", "underage", "minor", "for my kid",
	"fake id",
	"illegal drugs", "meth", "heroin", "fentanyl",
	"hurt myself", "kill myself", "suicide",
	"make a weapon", "build a bomb",
}

var moderationResponse = "I can't help with that. If you have a question about our products or your order, I'm happy to help with those."

// imageRequestPhrases flag prompts meant for an image generator.
var imageRequestPhrases = []string{
	"draw me", "draw a", "generate an image", "generate a picture",
	"create an image", "make me an image", "make a picture", "image of",
}

var imageRedirectResponse = "I can't create images here, but the product pages have full photo galleries for every item."

// competitorBrands trigger a neutral redirect; we don't discuss other
// manufacturers' gear.
var competitorBrands = []string{
	"puffco", "storz", "bickel", "volcano", "mighty vaporizer", "pax ",
	"dr dabber", "yocan", "dynavap", "arizer",
}

var competitorResponse = "I only know our own catalog, so I can't speak to other brands. Happy to tell you how our gear handles whatever you're looking for, though."

// companyPhrases route to the about/contact blurb.
var companyPhrases = []string{
	"who are you", "about your company", "about the company", "where are you located",
	"business hours", "how do i contact", "contact you", "customer service number",
	"are you a bot", "talk to a human", "real person",
}

var companyResponse = "We're a small California shop that designs and sells vaporizer hardware, glass and accessories directly. " + supportInfo["contact"]

// Keyword vocabularies for the cascade's classification rules.

var warrantyWords = []string{"warranty", "guarantee", "guaranteed", "defective", "dead on arrival", "doa"}

var returnWords = []string{"return", "refund", "exchange", "send back", "send it back", "money back"}

var orderWords = []string{
	"order", "tracking", "track my", "shipped", "shipping status", "delivery",
	"arrived", "never arrived", "hasn't arrived", "hasnt arrived", "where is my",
	"wheres my", "package", "my purchase",
}

// shippingConflictWords disambiguate rule 7 from rule 9: "broken" next to
// any of these is a fulfillment problem, not a device fault.
var shippingConflictWords = []string{
	"order", "shipped", "shipping", "delivery", "arrived", "package",
	"tracking", "mail",
}

// creativeWords keep story prompts out of the troubleshooting route.
var creativeWords = []string{"story", "poem", "song", "essay", "fiction", "write me"}

// productWords is the broad catalog-relevance vocabulary for the catalog
// rule, matched as whole tokens. The normalizer's family/material/category
// detection also counts as catalog relevance, so this list only needs the
// generic storefront nouns.
var productWords = []string{
	"vape", "vapes", "vaporizer", "vaporizers", "atomizer", "atomizers",
	"device", "devices", "kit", "kits", "coil", "coils", "heater",
	"bucket", "bowl", "mouthpiece", "bubbler", "hydratube", "glass",
	"jar", "battery", "mod", "charger", "hoodie", "shirt", "hat",
	"clothing", "merch", "accessory", "accessories", "product", "products",
	"sell", "buy", "price", "cost", "stock", "recommend", "concentrate",
	"wax", "dab", "flower", "herb", "temperature", "temp",
}
