package document

// Field presence is a separate pass from validation: it feeds UI hints
// about what a phase document still needs, independent of severity.

type fieldCheck struct {
	name    string
	present func(content string) bool
}

var fieldChecks = map[Type][]fieldCheck{
	TypeRequirements: {
		{"user stories", func(c string) bool {
			return userStoryRe.MatchString(c) || userStoryTag.MatchString(c)
		}},
		{"acceptance criteria", func(c string) bool { return earsClauseRe.MatchString(c) }},
		{"introduction", func(c string) bool { return introRe.MatchString(c) }},
	},
	TypeDesign: {
		{"overview", func(c string) bool { return overviewRe.MatchString(c) }},
		{"architecture", func(c string) bool { return architectRe.MatchString(c) }},
		{"components", func(c string) bool { return componentRe.MatchString(c) }},
		{"data models", func(c string) bool { return dataModelRe.MatchString(c) }},
	},
	TypeTasks: {
		{"task checklist", func(c string) bool { return checklistRe.MatchString(c) }},
		{"requirement references", func(c string) bool { return reqRefRe.MatchString(c) }},
	},
}

// RequiredFields lists the fields a document of this type must carry.
func RequiredFields(t Type) []string {
	checks := fieldChecks[t]
	fields := make([]string, 0, len(checks))
	for _, check := range checks {
		fields = append(fields, check.name)
	}
	return fields
}

// MissingFields lists required fields absent from content.
func MissingFields(t Type, content string) []string {
	var missing []string
	for _, check := range fieldChecks[t] {
		if !check.present(content) {
			missing = append(missing, check.name)
		}
	}
	return missing
}
