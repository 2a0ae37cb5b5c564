package ocr

// WeightedTerm is a phrase that hints at a content category.
type WeightedTerm struct {
	Term   string `yaml:"term"`
	Weight int    `yaml:"weight"`
}

// Template is a description sentence selected when any trigger appears in
// the text.
type Template struct {
	Sentence string   `yaml:"sentence"`
	Triggers []string `yaml:"triggers"`
}

// Vocabulary is the static configuration behind the analyzer. Order is
// significant for TitlePatterns, the template lists and Topics.
type Vocabulary struct {
	EventTerms             []WeightedTerm `yaml:"event_terms"`
	ActivityTerms          []WeightedTerm `yaml:"activity_terms"`
	TitlePatterns          []string       `yaml:"title_patterns"`
	EventTemplates         []Template     `yaml:"event_templates"`
	ActivityTemplates      []Template     `yaml:"activity_templates"`
	Topics                 []string       `yaml:"topics"`
	CompletionMarkers      []string       `yaml:"completion_markers"`
	GenericEvent           string         `yaml:"generic_event"`
	GenericActivity        string         `yaml:"generic_activity"`
	EmptyEvent             string         `yaml:"empty_event"`
	EmptyActivity          string         `yaml:"empty_activity"`
	EventCompletionNote    string         `yaml:"event_completion_note"`
	ActivityCompletionNote string         `yaml:"activity_completion_note"`
}

// Fixed sentences used when there is no text to describe.
const (
	EmptyEventDescription    = "Event documentation uploaded to the portal without readable text."
	EmptyActivityDescription = "Activity documentation uploaded to the portal without readable text."
)

// DefaultVocabulary returns the built-in analyzer configuration.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		EventTerms: []WeightedTerm{
			{Term: "conference", Weight: 3},
			{Term: "seminar", Weight: 3},
			{Term: "summit", Weight: 3},
			{Term: "symposium", Weight: 3},
			{Term: "convention", Weight: 3},
			{Term: "webinar", Weight: 2},
			{Term: "workshop", Weight: 2},
			{Term: "forum", Weight: 2},
			{Term: "assembly", Weight: 2},
			{Term: "meeting", Weight: 2},
			{Term: "ceremony", Weight: 2},
			{Term: "celebration", Weight: 2},
			{Term: "festival", Weight: 2},
			{Term: "event", Weight: 2},
			{Term: "gathering", Weight: 1},
			{Term: "orientation", Weight: 1},
			{Term: "launch", Weight: 1},
			{Term: "competition", Weight: 1},
		},
		ActivityTerms: []WeightedTerm{
			{Term: "activity", Weight: 3},
			{Term: "activities", Weight: 3},
			{Term: "assignment", Weight: 3},
			{Term: "homework", Weight: 2},
			{Term: "exercise", Weight: 2},
			{Term: "project", Weight: 2},
			{Term: "outreach", Weight: 2},
			{Term: "immersion", Weight: 2},
			{Term: "fieldwork", Weight: 2},
			{Term: "field trip", Weight: 2},
			{Term: "community service", Weight: 2},
			{Term: "tree planting", Weight: 2},
			{Term: "clean-up", Weight: 2},
			{Term: "drive", Weight: 1},
			{Term: "campaign", Weight: 1},
			{Term: "research", Weight: 1},
			{Term: "survey", Weight: 1},
			{Term: "task", Weight: 1},
		},
		TitlePatterns: []string{
			// Announcement phrasing.
			`(?i)^(?:announcing|announcement:?|invitation to|invites? you to|join us (?:for|at|in)|you are (?:cordially )?invited to|presents:?)\s+(?:the\s+|our\s+|an?\s+)?(.+?)[.!:]*$`,
			// Subject followed by an event noun.
			`(?i)^((?:[\w'&-]+\s+){1,10}(?:event|seminar|conference|summit|symposium|workshop|webinar|forum|convention|ceremony|celebration|festival|assembly|meeting))s?\b`,
			// Subject followed by an activity noun.
			`(?i)^((?:[\w'&-]+\s+){1,10}(?:activity|activities|assignment|project|exercise|outreach|drive|campaign|immersion|fieldwork))\b`,
			// A line that is already written in Title Case.
			`^([A-Z][A-Za-z'-]*(?:\s+(?:[A-Z][A-Za-z'-]*|of|and|the|for|in|on|at|to|a|an|with)){1,11})$`,
			// Subject followed by a program noun.
			`(?i)^((?:[\w'&-]+\s+){1,10}(?:program|programme|training|course|orientation|bootcamp))\b`,
		},
		EventTemplates: []Template{
			{
				Triggers: []string{"conference", "seminar"},
				Sentence: "An academic gathering where speakers and participants shared presentations and insights with the community.",
			},
			{
				Triggers: []string{"meeting", "assembly"},
				Sentence: "A formal meeting that brought members of the institution together to review plans and agree on decisions.",
			},
			{
				Triggers: []string{"ceremony", "celebration"},
				Sentence: "A ceremonial occasion held to recognize achievements and celebrate milestones with the community.",
			},
			{
				Triggers: []string{"workshop", "training"},
				Sentence: "A hands-on workshop that gave participants practical training and room to develop new skills.",
			},
		},
		ActivityTemplates: []Template{
			{
				Triggers: []string{"research", "study", "survey"},
				Sentence: "A research activity in which participants gathered and analyzed information on a focused area of study.",
			},
			{
				Triggers: []string{"outreach", "community", "extension"},
				Sentence: "A community outreach activity that extended the services and expertise of the institution to its partner communities.",
			},
			{
				Triggers: []string{"assignment", "homework", "exercise"},
				Sentence: "An academic assignment completed by students to apply and reinforce concepts learned in class.",
			},
			{
				Triggers: []string{"project", "proposal"},
				Sentence: "A project carried out by members of the institution to achieve a defined set of objectives.",
			},
		},
		GenericEvent:    "An institutional event documented through photographs and supporting materials submitted to the portal.",
		GenericActivity: "An institutional activity documented through photographs and supporting materials submitted to the portal.",
		EmptyEvent:      EmptyEventDescription,
		EmptyActivity:   EmptyActivityDescription,
		Topics: []string{
			"leadership",
			"sustainability",
			"innovation",
			"community engagement",
			"research",
			"education",
			"technology",
			"health",
			"environment",
			"culture",
			"governance",
			"international",
			"entrepreneurship",
			"gender and development",
			"disaster preparedness",
			"student development",
		},
		CompletionMarkers:      []string{"completed", "finished", "concluded"},
		EventCompletionNote:    "The event was successfully concluded.",
		ActivityCompletionNote: "The activity has been completed.",
	}
}
