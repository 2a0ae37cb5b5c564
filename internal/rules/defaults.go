package rules

import "github.com/Veraticus/dossier/internal/model"

// Category names used by the default rule table.
const (
	CategoryMOU           = "MOUs & MOAs"
	CategoryAwards        = "Awards & Recognition"
	CategoryMinutes       = "Meeting Minutes"
	CategoryEvents        = "Events & Activities"
	CategoryCertificates  = "Certificates"
	CategoryReports       = "Reports"
	CategoryPolicies      = "Policies & Guidelines"
	CategoryResearch      = "Research & Publications"
	CategoryDocuments     = "Documents"
	CategoryImages        = "Images"
	CategorySpreadsheets  = "Spreadsheets"
	CategoryPresentations = "Presentations"
	CategoryOthers        = "Others"
)

var filenameDatePatterns = []string{
	`\d{4}[-_.]\d{1,2}[-_.]\d{1,2}`,
	`\d{1,2}[-_.]\d{1,2}[-_.]\d{2,4}`,
	`(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*[-_ ]?\d{1,2}`,
}

// DefaultRules returns the built-in category rule table in iteration order.
func DefaultRules() []model.CategoryRule {
	return []model.CategoryRule{
		{
			Name:         CategoryMOU,
			Keywords:     []string{"memorandum of understanding", "memorandum of agreement", "mou", "moa", "partnership agreement", "linkage"},
			FilePatterns: []string{`(?:^|[^a-z])mo[ua](?:[^a-z]|$)`, `memorandum`, `agreement`},
			Priority:     1,
		},
		{
			Name:         CategoryAwards,
			Keywords:     []string{"award", "recognition", "citation", "plaque", "honor", "accolade"},
			FilePatterns: []string{`award`, `recogni[sz]`, `citation`},
			Priority:     1,
		},
		{
			Name:         CategoryMinutes,
			Keywords:     []string{"minutes", "agenda", "meeting", "board resolution", "attendance"},
			FilePatterns: []string{`minutes`, `agenda`, `meeting|(?:^|[^a-z])mtg(?:[^a-z]|$)`, `resolution`},
			DatePatterns: filenameDatePatterns,
			Priority:     2,
		},
		{
			Name:         CategoryEvents,
			Keywords:     []string{"event", "seminar", "conference", "workshop", "webinar", "activity", "celebration", "ceremony", "outreach"},
			FilePatterns: []string{`event`, `seminar|webinar|workshop`, `conference|summit|symposium`, `activit(?:y|ies)`},
			DatePatterns: filenameDatePatterns,
			Priority:     2,
		},
		{
			Name:         CategoryCertificates,
			Keywords:     []string{"certificate", "certification", "certify", "certified"},
			FilePatterns: []string{`certif`, `(?:^|[^a-z])cert(?:[^a-z]|$)`},
			Priority:     2,
		},
		{
			Name:         CategoryReports,
			Keywords:     []string{"report", "annual report", "accomplishment", "narrative", "assessment"},
			FilePatterns: []string{`report`, `accomplishment`, `narrative`},
			Priority:     3,
		},
		{
			Name:         CategoryPolicies,
			Keywords:     []string{"policy", "guideline", "manual", "handbook", "procedure"},
			FilePatterns: []string{`polic(?:y|ies)`, `guideline`, `manual|handbook`},
			Priority:     3,
		},
		{
			Name:         CategoryResearch,
			Keywords:     []string{"research", "journal", "publication", "thesis", "abstract", "proceedings"},
			FilePatterns: []string{`research`, `journal|publication`, `thesis|dissertation`},
			Priority:     3,
		},
	}
}

// DefaultFallback returns the built-in extension fallback table.
func DefaultFallback() FallbackTable {
	return FallbackTable{
		Default: CategoryOthers,
		Extensions: map[string]string{
			"pdf":  CategoryDocuments,
			"doc":  CategoryDocuments,
			"docx": CategoryDocuments,
			"txt":  CategoryDocuments,
			"rtf":  CategoryDocuments,
			"odt":  CategoryDocuments,
			"jpg":  CategoryImages,
			"jpeg": CategoryImages,
			"png":  CategoryImages,
			"gif":  CategoryImages,
			"bmp":  CategoryImages,
			"tif":  CategoryImages,
			"tiff": CategoryImages,
			"webp": CategoryImages,
			"xls":  CategorySpreadsheets,
			"xlsx": CategorySpreadsheets,
			"csv":  CategorySpreadsheets,
			"ods":  CategorySpreadsheets,
			"ppt":  CategoryPresentations,
			"pptx": CategoryPresentations,
			"odp":  CategoryPresentations,
		},
	}
}

// Default compiles the built-in rule table.
func Default() (*RuleSet, error) {
	return NewRuleSet(DefaultRules(), DefaultFallback())
}
