package render

import (
	"strings"

	"exhibitrag/internal/domain"
)

// Separator delimits record blocks in formatted output. It is written
// before every record, so each block is self-delimited for downstream
// parsing.
const Separator = "============================================================"

// Placeholder is rendered for empty fields so field positions stay stable.
const Placeholder = "未填写"

// fieldOrder is the fixed render order for every work. Consumers rely on
// both the labels and their order being stable.
var fieldOrder = []struct {
	label string
	value func(domain.Work) string
}{
	{"作品名称", func(w domain.Work) string { return w.Name }},
	{"设计作者", func(w domain.Work) string { return w.Authors }},
	{"指导老师", func(w domain.Work) string { return w.Advisor }},
	{"类别标签", func(w domain.Work) string { return w.Category }},
	{"呈现形式", func(w domain.Work) string { return w.Form }},
	{"作品描述", func(w domain.Work) string { return w.Description }},
	{"创作时间", func(w domain.Work) string { return w.CreatedAt }},
	{"设计动机", func(w domain.Work) string { return w.Motivation }},
	{"灵感来源", func(w domain.Work) string { return w.Inspiration }},
	{"设计目的", func(w domain.Work) string { return w.Purpose }},
	{"设计理念", func(w domain.Work) string { return w.Style }},
	{"视觉形式语言", func(w domain.Work) string { return w.VisualLanguage }},
	{"技术特点", func(w domain.Work) string { return w.Technical }},
	{"预期效果", func(w domain.Work) string { return w.ExpectedEffect }},
	{"创作历程", func(w domain.Work) string { return w.Process }},
	{"面临的困难", func(w domain.Work) string { return w.Challenges }},
	{"所属展区", func(w domain.Work) string { return w.Zone }},
}

// TextFormatter renders works into the fixed knowledge-text template
// consumed by the downstream language model. Formatting is pure: the same
// ordered input always yields the same text.
type TextFormatter struct{}

// NewTextFormatter creates a formatter.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// Format renders each work as a separator-delimited block listing every
// field in a stable order. Empty fields render the placeholder rather than
// being omitted. Formatting zero works yields an empty string.
func (f *TextFormatter) Format(works []domain.Work) string {
	if len(works) == 0 {
		return ""
	}

	var b strings.Builder
	for i, w := range works {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(Separator)
		b.WriteString("\n")
		for _, field := range fieldOrder {
			value := strings.TrimSpace(field.value(w))
			if value == "" {
				value = Placeholder
			}
			if field.label == "作品名称" {
				value = "《" + value + "》"
			}
			b.WriteString(field.label)
			b.WriteString("：")
			b.WriteString(value)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Document composes the text that gets embedded for a work: every non-empty
// field with its label, one per line. Unlike Format it skips empty fields,
// matching what the corpus was built from.
func Document(w domain.Work) string {
	var parts []string
	for _, field := range fieldOrder {
		value := strings.TrimSpace(field.value(w))
		if value == "" {
			continue
		}
		if field.label == "作品名称" {
			value = "《" + value + "》"
		}
		parts = append(parts, field.label+"："+value)
	}
	return strings.Join(parts, "\n")
}
