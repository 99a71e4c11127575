package search

// Synonyms maps a normalized job search phrase to alternatives a posting may
// use instead.
var Synonyms = map[string][]string{
	"frontend":       {"front end", "frontend developer", "ui developer"},
	"backend":        {"back end", "server developer", "backend developer"},
	"full stack":     {"fullstack", "full stack developer"},
	"devops":         {"site reliability", "sre", "platform engineer"},
	"qa":             {"quality assurance", "test engineer", "tester"},
	"hr":             {"human resources", "recruiter", "talent acquisition"},
	"golang":         {"go developer", "go engineer"},
	"designer":       {"ui designer", "ux designer", "product designer"},
	"data scientist": {"machine learning engineer", "ml engineer", "data analyst"},
	"admin":          {"administration", "administrative staff"},
	"office boy":     {"office assistant", "office helper"},
}

func GetSynonyms(phrase string) []string {
	if phrase == "" {
		return []string{}
	}
	v, ok := Synonyms[phrase]
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(v))
	return append(out, v...)
}
