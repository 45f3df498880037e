// Package scoring holds the pure functions behind marksheet summaries, domain
// classification and skill matching. Nothing here performs I/O.
package scoring

import (
	"strings"

	"github.com/noah-isme/campus2career-api/internal/models"
)

// GeneralDomain is returned when no domain keyword matched.
const GeneralDomain = "General"

const (
	confidencePerMatch = 15
	maxConfidence      = 100
	// subjects averaging below this are not taken as evidence for a domain
	subjectEvidenceFloor = 50
)

// Domain is one row of the keyword table. Roles, Certifications and Projects
// feed the offline career analysis.
type Domain struct {
	Name           string
	Keywords       []string
	Roles          []string
	Certifications []string
	Projects       []string
}

// Domains is the declared keyword table. Declaration order breaks ties.
var Domains = []Domain{
	{
		Name:           "Web Development",
		Keywords:       []string{"html", "css", "javascript", "typescript", "react", "angular", "vue", "node.js", "express", "next.js", "django", "flask", "php", "rest api", "web technologies"},
		Roles:          []string{"Frontend Developer", "Backend Developer", "Full Stack Developer"},
		Certifications: []string{"Meta Front-End Developer", "AWS Certified Developer - Associate"},
		Projects:       []string{"Portfolio site with a headless CMS", "REST API with authentication and pagination", "Realtime chat application"},
	},
	{
		Name:           "Data Science",
		Keywords:       []string{"python", "pandas", "numpy", "statistics", "data analysis", "sql", "tableau", "power bi", "excel", "data visualization", "probability", "database"},
		Roles:          []string{"Data Analyst", "Business Intelligence Analyst", "Data Scientist"},
		Certifications: []string{"Google Data Analytics", "Microsoft Power BI Data Analyst"},
		Projects:       []string{"Sales dashboard from a public dataset", "Exploratory analysis notebook with a written report", "SQL reporting pipeline"},
	},
	{
		Name:           "Machine Learning",
		Keywords:       []string{"machine learning", "deep learning", "tensorflow", "pytorch", "scikit-learn", "nlp", "computer vision", "keras", "artificial intelligence", "neural networks"},
		Roles:          []string{"Machine Learning Engineer", "AI Engineer", "Research Assistant"},
		Certifications: []string{"TensorFlow Developer Certificate", "DeepLearning.AI Machine Learning Specialization"},
		Projects:       []string{"Image classifier served behind an API", "Text sentiment model with evaluation report", "Recommendation system prototype"},
	},
	{
		Name:           "Cloud & DevOps",
		Keywords:       []string{"aws", "azure", "gcp", "docker", "kubernetes", "terraform", "jenkins", "ci/cd", "linux", "devops", "cloud computing"},
		Roles:          []string{"DevOps Engineer", "Cloud Engineer", "Site Reliability Engineer"},
		Certifications: []string{"AWS Certified Cloud Practitioner", "Certified Kubernetes Administrator"},
		Projects:       []string{"CI/CD pipeline for a containerised service", "Infrastructure as code for a three-tier app", "Monitoring stack with alerts"},
	},
	{
		Name:           "Cybersecurity",
		Keywords:       []string{"network security", "cryptography", "ethical hacking", "penetration testing", "firewalls", "siem", "owasp", "information security", "computer networks"},
		Roles:          []string{"Security Analyst", "SOC Analyst", "Penetration Tester"},
		Certifications: []string{"CompTIA Security+", "Certified Ethical Hacker"},
		Projects:       []string{"Home lab with IDS and log analysis", "OWASP Top 10 audit of a sample app", "Capture-the-flag writeups"},
	},
	{
		Name:           "Mobile Development",
		Keywords:       []string{"android", "kotlin", "swift", "ios", "flutter", "dart", "react native", "mobile application development"},
		Roles:          []string{"Android Developer", "iOS Developer", "Mobile Developer"},
		Certifications: []string{"Associate Android Developer", "Google Flutter Certification"},
		Projects:       []string{"Offline-first notes app", "Expense tracker with charts", "App consuming a public REST API"},
	},
	{
		Name:           "Software Engineering",
		Keywords:       []string{"java", "c++", "go", "data structures", "algorithms", "object oriented programming", "git", "design patterns", "operating systems", "software engineering"},
		Roles:          []string{"Software Engineer", "Backend Engineer", "Graduate Engineer Trainee"},
		Certifications: []string{"Oracle Certified Associate Java Programmer", "GitHub Foundations"},
		Projects:       []string{"Command line tool with tests", "Implementation of classic data structures", "Open source contribution"},
	},
}

// Lookup returns the domain row with the given name.
func Lookup(name string) (Domain, bool) {
	for _, d := range Domains {
		if d.Name == name {
			return d, true
		}
	}
	return Domain{}, false
}

// Classification is the winning domain and its confidence proxy.
type Classification struct {
	Domain     string `json:"domain"`
	Confidence int    `json:"confidence"`
	Matches    int    `json:"matches"`
}

// DomainScore is one domain with the number of matching inputs.
type DomainScore struct {
	Domain  string
	Matches int
}

// ClassifySkills counts, per domain, the skills equal to one of its keywords
// (case-insensitive) and returns the best domain.
func ClassifySkills(skills []string) Classification {
	return pick(scoreDomains(normalizeAll(skills), equalsKeyword))
}

// ClassifySubjects counts, per domain, the subjects whose name contains one of
// its keywords as whole words. Subjects averaging below 50 are ignored.
func ClassifySubjects(subjects []models.SubjectPerformance) Classification {
	names := make([]string, 0, len(subjects))
	for _, s := range subjects {
		if s.Average < subjectEvidenceFloor {
			continue
		}
		names = append(names, normalize(s.Subject))
	}
	return pick(scoreDomains(names, containsKeyword))
}

// RankDomains scores skills and subject names together and returns every domain
// with at least one match, best first, declaration order on ties.
func RankDomains(skills []string, subjects []models.SubjectPerformance) []DomainScore {
	bySkill := scoreDomains(normalizeAll(skills), equalsKeyword)
	names := make([]string, 0, len(subjects))
	for _, s := range subjects {
		if s.Average >= subjectEvidenceFloor {
			names = append(names, normalize(s.Subject))
		}
	}
	bySubject := scoreDomains(names, containsKeyword)

	ranked := make([]DomainScore, 0, len(Domains))
	for i := range Domains {
		if n := bySkill[i] + bySubject[i]; n > 0 {
			ranked = append(ranked, DomainScore{Domain: Domains[i].Name, Matches: n})
		}
	}
	// insertion sort keeps equal elements in declaration order
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && ranked[j].Matches > ranked[j-1].Matches; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}
	return ranked
}

// Confidence converts a match count to the 0..100 confidence proxy.
func Confidence(matches int) int {
	c := matches * confidencePerMatch
	if c > maxConfidence {
		return maxConfidence
	}
	if c < 0 {
		return 0
	}
	return c
}

// Keywords returns the keyword list of a domain, or nil when unknown.
func Keywords(domain string) []string {
	if d, ok := Lookup(domain); ok {
		return append([]string(nil), d.Keywords...)
	}
	return nil
}

// MentionedKeywords returns every table keyword that occurs in text as whole
// words, in table order and without repeats.
func MentionedKeywords(text string) []string {
	text = strings.ToLower(text)
	seen := make(map[string]struct{})
	var found []string
	for _, d := range Domains {
		for _, kw := range d.Keywords {
			if _, ok := seen[kw]; ok {
				continue
			}
			if containsKeyword(text, kw) {
				seen[kw] = struct{}{}
				found = append(found, kw)
			}
		}
	}
	return found
}

// FillMissingSkills returns missing unchanged when it has entries, otherwise
// the domain keywords the candidate does not already list.
func FillMissingSkills(domain string, present, missing []string) []string {
	if len(missing) > 0 {
		return missing
	}
	have := make(map[string]struct{}, len(present))
	for _, p := range present {
		have[normalize(p)] = struct{}{}
	}
	out := make([]string, 0)
	for _, kw := range Keywords(domain) {
		if _, ok := have[kw]; !ok {
			out = append(out, kw)
		}
	}
	return out
}

func scoreDomains(items []string, match func(item, keyword string) bool) []int {
	counts := make([]int, len(Domains))
	for i, d := range Domains {
		for _, item := range items {
			if item == "" {
				continue
			}
			for _, kw := range d.Keywords {
				if match(item, kw) {
					counts[i]++
					break
				}
			}
		}
	}
	return counts
}

func pick(counts []int) Classification {
	best := -1
	for i, n := range counts {
		if n > 0 && (best < 0 || n > counts[best]) {
			best = i
		}
	}
	if best < 0 {
		return Classification{Domain: GeneralDomain}
	}
	return Classification{Domain: Domains[best].Name, Confidence: Confidence(counts[best]), Matches: counts[best]}
}

func equalsKeyword(item, keyword string) bool {
	return item == keyword
}

func containsKeyword(text, keyword string) bool {
	for from := 0; from <= len(text)-len(keyword); {
		idx := strings.Index(text[from:], keyword)
		if idx < 0 {
			return false
		}
		start := from + idx
		end := start + len(keyword)
		if (start == 0 || !isWordByte(text[start-1])) && (end == len(text) || !isWordByte(text[end])) {
			return true
		}
		from = start + 1
	}
	return false
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '_'
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, normalize(item))
	}
	return out
}
