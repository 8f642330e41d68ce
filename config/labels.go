package config

// OthersLabel is the catch-all assigned when no official label applies.
// It is excluded from scoring and from the ranked output.
const OthersLabel = "Others"

// OfficialLabels is the fixed topic vocabulary the classifier may draw from.
var OfficialLabels = []string{
	"Aging", "AI & Computational Biology", "Bioengineering", "Biotechnology",
	"Cancer", "Clinical & Medicine", "Development", "Drug Discovery",
	"Evolution", "Genetics & Epigenetics", "Immunology", "Metabolism",
	"Microbiology", "Molecular Design", "Plants", "Single-cell & Spatial omics",
	"Stem cell", "Structure", "Synthetic Biology", "Virtual Cell",
	OthersLabel,
}

// IsOfficialLabel reports whether s belongs to the fixed vocabulary.
func IsOfficialLabel(s string) bool {
	for _, l := range OfficialLabels {
		if l == s {
			return true
		}
	}
	return false
}

// journalWeights holds the per-journal prestige multipliers. Journals not
// listed use DefaultJournalWeight.
var journalWeights = map[string]float64{
	"Nature":                      1.5,
	"Science":                     1.5,
	"Cell":                        1.5,
	"The Lancet":                  1.5,
	"NEJM":                        1.5,
	"Nature Medicine":             1.2,
	"Nature Biotechnology":        1.2,
	"Nature Genetics":             1.2,
	"Nature Machine Intelligence": 1.2,
	"Cancer Cell":                 1.2,
}

// DefaultJournalWeight applies to journals without an explicit override.
const DefaultJournalWeight = 1.0

// JournalWeight returns the scoring multiplier for a journal name.
func JournalWeight(journal string) float64 {
	if w, ok := journalWeights[journal]; ok {
		return w
	}
	return DefaultJournalWeight
}
