package reporter

import (
	"encoding/json"
	"html/template"
)

// GetCommonTemplateFunctions returns the functions available to summary
// templates, including custom ones loaded from report.template_path.
func GetCommonTemplateFunctions() template.FuncMap {
	return template.FuncMap{
		// json exposes page data to inline scripts, e.g. for charts in a custom template.
		"json": func(v any) (template.JS, error) {
			data, err := json.Marshal(v)
			if err != nil {
				return "", err
			}
			return template.JS(data), nil
		},
		"isBaseline": func(pattern string) bool {
			return pattern == ""
		},
	}
}
