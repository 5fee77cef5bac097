package queries

// Query templates per industry. Placeholders in braces are filled from the
// variations table.
var templates = map[string][]string{
	"Meal Kits & Food Delivery": {
		"What are the best meal kit services for {audience}?",
		"Compare meal kit delivery options for {need}",
		"Most affordable meal kit subscriptions",
		"Healthiest meal delivery services",
		"Which meal kit is best for {diet_type}?",
		"Top-rated meal kit services with {feature}",
		"How to choose a meal kit for {scenario}",
		"Meal kit services that deliver to {location}",
		"Best organic meal delivery options",
		"Quick and easy meal kits for {lifestyle}",
	},
	"SaaS & Software": {
		"Best {software_type} for {use_case}",
		"Compare {software_type} platforms",
		"Most affordable {software_type} tools",
		"Top-rated {software_type} software for {vertical}",
		"Which {software_type} has the best {feature}?",
		"How to choose the right {software_type}",
		"{software_type} for {company_size}",
		"Cloud-based {software_type} solutions",
		"Best {software_type} with integrations",
		"Enterprise {software_type} recommendations",
	},
	"Health & Wellness": {
		"Best {product} for {goal}",
		"Compare {product} options",
		"Most affordable {product} programs",
		"Top-rated {product} apps",
		"Which {product} is best for {audience}?",
		"How to choose {product} for {need}",
		"{product} for {lifestyle}",
		"Online {product} platforms",
		"Best {product} subscriptions",
		"{product} reviews and recommendations",
	},
	"E-commerce & Retail": {
		"Best online stores for {product_category}",
		"Where to buy {product_category} online",
		"Most affordable {product_category} retailers",
		"Top-rated {product_category} shops",
		"Compare {product_category} online stores",
		"Best {product_category} deals and discounts",
		"Online shopping for {product_category}",
		"Trusted {product_category} retailers",
		"Best {product_category} subscription boxes",
		"Where to find quality {product_category}",
	},
}

// fallbackIndustry is used when no template set exists for the detected
// industry.
const fallbackIndustry = "E-commerce & Retail"

var variations = map[string][]string{
	"audience":  {"busy professionals", "families", "couples", "beginners", "seniors", "singles"},
	"need":      {"weight loss", "muscle building", "convenience", "variety", "quality", "nutrition"},
	"diet_type": {"keto", "vegan", "paleo", "gluten-free", "low-carb", "vegetarian"},
	"feature":   {"organic ingredients", "quick prep", "dietary customization", "chef recipes", "family-friendly"},
	"scenario":  {"small kitchens", "first time", "picky eaters", "tight budgets", "busy schedules"},
	"location":  {"rural areas", "cities", "suburbs", "apartments"},
	"lifestyle": {"busy parents", "college students", "remote workers", "fitness enthusiasts", "health-conscious"},

	"software_type": {"CRM", "project management", "marketing automation", "analytics", "collaboration"},
	"use_case":      {"small businesses", "enterprises", "startups", "remote teams", "agencies"},
	"vertical":      {"healthcare", "retail", "finance", "education", "manufacturing"},
	"company_size":  {"startups", "small businesses", "mid-size companies", "enterprises"},

	"product": {"fitness apps", "meal planning", "workout programs", "meditation apps", "wellness coaching"},
	"goal":    {"weight loss", "muscle gain", "stress relief", "better sleep", "flexibility"},

	"product_category": {"electronics", "clothing", "home goods", "beauty products", "sporting goods"},
}
