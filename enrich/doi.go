package enrich

import "regexp"

// doiPattern matches the standard DOI syntax embedded in article URLs.
var doiPattern = regexp.MustCompile(`(10\.\d{4,9}/[-._;()/:a-zA-Z0-9]+)`)

// ExtractDOI pulls a DOI out of an article link, or returns "" when the
// link carries none.
func ExtractDOI(link string) string {
	return doiPattern.FindString(link)
}

// AuthorsShort derives the display form of an ordered author list:
// "First et al., Last", "First & Last", or the single author.
func AuthorsShort(authors []string) string {
	switch len(authors) {
	case 0:
		return "Unknown Authors"
	case 1:
		return authors[0]
	case 2:
		return authors[0] + " & " + authors[1]
	default:
		return authors[0] + " et al., " + authors[len(authors)-1]
	}
}
