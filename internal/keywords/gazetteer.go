package keywords

// DefaultLocations is the built-in Hawaii place-name gazetteer.
// Place names in a query almost always narrow the project site, so
// they outrank generic vocabulary.
var DefaultLocations = []string{
	"halawa",
	"honolulu",
	"waipahu",
	"kaneohe",
	"kapolei",
	"mililani",
	"aiea",
	"kailua",
	"waikiki",
	"maui",
	"lahaina",
	"kahului",
	"kihei",
	"wailuku",
	"makawao",
	"kula",
	"pukalani",
	"upcountry",
}

// DefaultDomainTerms is the built-in geotechnical terminology list.
// Multi-word entries are matched as phrases over adjacent query tokens.
var DefaultDomainTerms = []string{
	"boring",
	"borings",
	"drilling",
	"excavation",
	"foundation",
	"foundations",
	"grading",
	"groundwater",
	"pavement",
	"soil",
	"soils",
	"seismic",
	"compaction",
	"subsurface",
	"geotechnical",
	"percolation",
	"settlement",
	"liquefaction",
	"boring log",
	"work order",
	"test pit",
	"retaining wall",
	"bearing capacity",
	"slope stability",
}

// defaultStopWords are dropped from extraction. Connective words
// (and/or) are excluded here; logic-mode extraction owns them.
var defaultStopWords = []string{
	"the", "for", "with", "from", "this", "that", "these", "those",
	"near", "about", "into", "onto", "over", "under", "between",
	"what", "when", "where", "which", "who", "how", "why",
	"was", "were", "are", "been", "being", "has", "have", "had",
	"did", "does", "doing", "can", "could", "will", "would", "should",
	"any", "all", "some", "there", "their", "they", "its", "our",
	"not", "but", "per", "via", "you", "your",
}
