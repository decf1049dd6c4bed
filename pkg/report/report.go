// Package report defines the genetic report navigation graph and its default content.
package report

import (
	"fmt"
	"strings"

	"github.com/mygenetics/reportnav/pkg/domain"
	"github.com/mygenetics/reportnav/pkg/dsl"
)

// Well-known screens of the report graph.
const (
	ScreenSummary  domain.ScreenID = "REPORT_SUMMARY"
	ScreenMenu     domain.ScreenID = "MENU"
	ScreenInput    domain.ScreenID = "INPUT_QUESTION"
	ScreenQuestion domain.ScreenID = "CONFIRM_QUESTION"
)

// Section is one chapter of the report with a summary and a detail screen.
type Section struct {
	Key     string
	Title   string
	Emoji   string
	Summary string
	Detail  string
}

// SummaryScreen returns the ID of the section's summary screen.
func (s Section) SummaryScreen() domain.ScreenID {
	return domain.ScreenID("SHOW_" + strings.ToUpper(s.Key) + "_SUMMARY")
}

// DetailScreen returns the ID of the section's detail screen.
func (s Section) DetailScreen() domain.ScreenID {
	return domain.ScreenID("SHOW_" + strings.ToUpper(s.Key) + "_DETAIL")
}

// Sections lists the report sections in reading order.
// Forward on a detail screen leads to the next section's summary.
var Sections = []Section{
	{
		Key:     "detox",
		Title:   "Detoxification systems",
		Emoji:   "🧪",
		Summary: "A short overview of your genes involved in detoxification.",
		Detail:  "Your detoxification genes in depth, with recommendations and an analysis of the results.",
	},
	{
		Key:     "behavior",
		Title:   "Eating behaviour",
		Emoji:   "🍽️",
		Summary: "A short overview of your genes linked to eating behaviour.",
		Detail:  "Your eating behaviour genes in depth, with nutrition advice tailored to your genetics.",
	},
	{
		Key:     "carb",
		Title:   "Carbohydrate metabolism",
		Emoji:   "🥐",
		Summary: "A short overview of your genes linked to carbohydrate metabolism.",
		Detail:  "Your carbohydrate metabolism genes in depth, with dietary recommendations.",
	},
	{
		Key:     "sport",
		Title:   "Sport health",
		Emoji:   "🏃",
		Summary: "A short overview of your genes linked to physical activity.",
		Detail:  "Your sport-related genes in depth, with training recommendations.",
	},
	{
		Key:     "lipid",
		Title:   "Lipid metabolism",
		Emoji:   "🥑",
		Summary: "A short overview of your genes linked to lipid metabolism.",
		Detail:  "Your lipid metabolism genes in depth, with recommendations on dietary fats.",
	},
}

// Content references of the fixed screens.
const (
	ContentSummary  domain.ContentRef = "report.summary"
	ContentMenu     domain.ContentRef = "menu"
	ContentInput    domain.ContentRef = "question.input"
	ContentQuestion domain.ContentRef = "question.answer"
)

// SummaryContent returns the content reference of a section summary.
func SummaryContent(key string) domain.ContentRef {
	return domain.ContentRef(key + ".summary")
}

// DetailContent returns the content reference of a section detail.
func DetailContent(key string) domain.ContentRef {
	return domain.ContentRef(key + ".detail")
}

// Builder returns a builder pre-populated with the report graph.
// Callers may tweak screens before calling Build.
func Builder() *dsl.Builder {
	b := dsl.New(ScreenSummary)

	b.Screen(ScreenSummary).
		Content(ContentSummary).
		Body("# 🧬 Your genetic report\n\nHere is a short summary of your genetic report.\nPress **Forward** to open the main menu.").
		NoBack().Caption("Back").
		Forward(ScreenMenu).Caption("Forward")

	menu := b.Screen(ScreenMenu).
		Content(ContentMenu).
		Body("# 🧪 Choose a report section\n\nNavigate the sections of your report:").
		AskQuestion(ScreenInput).Caption("Ask a question about the report")
	for i, s := range Sections {
		menu.Open(s.Key, s.SummaryScreen()).Caption(s.Emoji + " " + s.Title).Row(i + 1)
	}
	menu.ReturnBack(ScreenSummary).Caption("Back").Row(len(Sections) + 1)

	b.Screen(ScreenInput).
		Input().
		Content(ContentInput).
		Body("# ❓ Ask a question about your report\n\nType your question in the chat and our assistant will try to answer it.").
		Back(ScreenMenu).Caption("Back to menu").
		FreeText(ScreenQuestion)

	b.Screen(ScreenQuestion).
		Answer().
		Content(ContentQuestion).
		Body("**Your question:** {{.question}}\n\n{{.answer}}").
		Back(ScreenMenu).Caption("Back to menu").
		AskQuestion(ScreenInput).Caption("Ask another question")

	for i, s := range Sections {
		next := ScreenMenu
		if i+1 < len(Sections) {
			next = Sections[i+1].SummaryScreen()
		}

		b.Screen(s.SummaryScreen()).
			Content(SummaryContent(s.Key)).
			Body(fmt.Sprintf("# %s %s\n\n%s\nPress **More details** for the full analysis.", s.Emoji, s.Title, s.Summary)).
			ReturnBack(ScreenMenu).Caption("Back").
			MoreDetails(s.DetailScreen()).Caption("More details")

		b.Screen(s.DetailScreen()).
			Content(DetailContent(s.Key)).
			Body(fmt.Sprintf("# %s %s (details)\n\n%s", s.Emoji, s.Title, s.Detail)).
			ReturnBack(s.SummaryScreen()).Caption("Back").
			Forward(next).Caption("Forward")
	}

	return b
}

// Graph builds and validates the report graph.
func Graph() (*dsl.Graph, error) {
	return Builder().Build()
}

// DefaultContent returns the built-in Markdown bodies keyed by content reference.
func DefaultContent() map[domain.ContentRef]string {
	g, err := Graph()
	if err != nil {
		panic(fmt.Sprintf("report: invalid built-in graph: %v", err))
	}
	return g.Content
}
