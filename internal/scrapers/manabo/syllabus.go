package manabo

import (
	"strings"

	"portalextract/internal/extract"
	"portalextract/internal/validate"
	"portalextract/lib/htmlutil"
	"portalextract/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

type SyllabusEvaluation struct {
	Type   string `json:"type"`
	Weight string `json:"weight"`
}

type SyllabusTextbook struct {
	Type  string `json:"type"`
	Title string `json:"title"`
}

type SyllabusReference struct {
	Title string `json:"title"`
	Code  string `json:"code"`
}

type SyllabusPlanItem struct {
	No      int    `json:"no"`
	Item    string `json:"item"`
	Content string `json:"content"`
}

type ClassSyllabus struct {
	Object       string               `json:"object"`
	Goal         []string             `json:"goal"`
	Method       string               `json:"method"`
	UsedMethods  []string             `json:"usedMethods"`
	Evaluation   []SyllabusEvaluation `json:"evaluation"`
	Textbooks    []SyllabusTextbook   `json:"textbooks"`
	References   []SyllabusReference  `json:"references"`
	OfficeHour   string               `json:"officeHour"`
	Plan         []SyllabusPlanItem   `json:"plan"`
	Comment      string               `json:"comment"`
	PrePostStudy string               `json:"prePostStudy"`
}

var classSyllabusSchema = validate.Object(
	validate.Req("object", validate.String()),
	validate.Req("goal", validate.Array(validate.String())),
	validate.Req("method", validate.String()),
	validate.Req("usedMethods", validate.Array(validate.String())),
	validate.Req("evaluation", validate.Array(validate.Object(
		validate.Req("type", validate.String()),
		validate.Req("weight", validate.String()),
	))),
	validate.Req("textbooks", validate.Array(validate.Object(
		validate.Req("type", validate.String()),
		validate.Req("title", validate.String()),
	))),
	validate.Req("references", validate.Array(validate.Object(
		validate.Req("title", validate.String()),
		validate.Req("code", validate.String()),
	))),
	validate.Req("officeHour", validate.String()),
	validate.Req("plan", validate.Array(validate.Object(
		validate.Req("no", validate.Integer()),
		validate.Req("item", validate.String()),
		validate.Req("content", validate.String()),
	))),
	validate.Req("comment", validate.String()),
	validate.Req("prePostStudy", validate.String()),
)

// section headings of the syllabus table
const (
	headingObject       = "授業概要・目的"
	headingGoal         = "学修到達目標"
	headingMethod       = "授業方法"
	headingUsedMethods  = "活用される授業方法"
	headingEvaluation   = "成績評価方法・基準"
	headingBooks        = "教科書・教材・参考文献"
	headingOfficeHour   = "質問への対応（オフィスアワー等）"
	headingPlan         = "授業計画"
	headingComment      = "履修者へのコメント"
	headingPrePostStudy = "事前事後学習"

	bookLabelTextbook  = "教科書・教材"
	bookLabelReference = "参考文献"
)

// ParseClassSyllabus reads the syllabus table of a class. Each row of the
// table is one section keyed by its heading, sections that are missing
// stay empty and unknown sections are ignored.
func ParseClassSyllabus(input string) (ClassSyllabus, error) {
	doc := htmlutil.Parse(input)

	out := map[string]any{
		"object":       "",
		"goal":         []any{},
		"method":       "",
		"usedMethods":  []any{},
		"evaluation":   []any{},
		"textbooks":    []any{},
		"references":   []any{},
		"officeHour":   "",
		"plan":         []any{},
		"comment":      "",
		"prePostStudy": "",
	}
	textField := func(name string) func(cell *goquery.Selection) {
		return func(cell *goquery.Selection) {
			out[name] = extract.Text(cell)
		}
	}

	headings := extract.Headings{
		headingObject: textField("object"),
		headingGoal: func(cell *goquery.Selection) {
			out["goal"] = extract.NonEmptyTexts(htmlutil.QueryAll(cell, "li"))
		},
		headingMethod: textField("method"),
		headingUsedMethods: func(cell *goquery.Selection) {
			methods := []any{}
			htmlutil.QueryAll(cell, "input.usemethod[checked]").Each(func(_ int, input *goquery.Selection) {
				label := extract.SiblingRun(input, extract.StopAtBreak)
				if label != "" {
					methods = append(methods, label)
				}
			})
			out["usedMethods"] = methods
		},
		headingEvaluation: func(cell *goquery.Selection) {
			out["evaluation"] = extract.MapRows(htmlutil.QueryAll(cell, "table tr"), "td", func(cells extract.Cells) any {
				kind := cells.Text(0)
				weight := cells.Text(1)
				if kind == "" || weight == "" {
					return nil
				}
				return map[string]any{"type": kind, "weight": weight}
			})
		},
		headingBooks: func(cell *goquery.Selection) {
			textbooks := []any{}
			htmlutil.QueryAll(cell, "table tr").Each(func(_ int, row *goquery.Selection) {
				cells := extract.NewCells(row, "td")
				label := cells.Text(0)
				value := cells.At(1)
				if value.Length() == 0 {
					return
				}

				switch {
				case strings.Contains(label, bookLabelTextbook):
					title := extract.Text(value)
					if title != "" {
						textbooks = append(textbooks, map[string]any{"type": label, "title": title})
					}
				case strings.Contains(label, bookLabelReference):
					out["references"] = syllabusReferences(value)
				}
			})
			out["textbooks"] = textbooks
		},
		headingOfficeHour: textField("officeHour"),
		headingPlan: func(cell *goquery.Selection) {
			table := htmlutil.QueryOne(cell, "table")
			out["plan"] = extract.MapRows(htmlutil.QueryAll(table, "tbody tr"), "td", func(cells extract.Cells) any {
				no, ok := textutil.LeadingInt(cells.Text(0))
				item := cells.Text(1)
				content := cells.Text(2)
				if !ok || item == "" || content == "" {
					return nil
				}
				return map[string]any{"no": no, "item": item, "content": content}
			})
		},
		headingComment: textField("comment"),
		headingPrePostStudy: func(cell *goquery.Selection) {
			out["prePostStudy"] = strings.ReplaceAll(extract.Text(cell), " (", "(")
		},
	}
	headings.Dispatch(syllabusRows(doc), "th", "td")

	return validate.Parse[ClassSyllabus](classSyllabusSchema, out)
}

// syllabusRows returns the rows of the main syllabus table, leaving out the
// rows of the tables nested inside its cells.
func syllabusRows(doc *goquery.Document) *goquery.Selection {
	table := htmlutil.QueryOne(doc.Selection, ".panel-body .table.table-default")
	if table.Length() == 0 {
		return htmlutil.None()
	}
	return htmlutil.QueryAll(table, "tr").FilterFunction(func(_ int, row *goquery.Selection) bool {
		return htmlutil.SameNode(htmlutil.Closest(row, "table"), table)
	})
}

func syllabusReferences(cell *goquery.Selection) []any {
	references := []any{}
	htmlutil.QueryAll(cell, "li").Each(func(_ int, li *goquery.Selection) {
		title := extract.Text(li)
		code := extract.AttrOrEmpty(li, "data-code")
		if title == "" || code == "" {
			return
		}
		references = append(references, map[string]any{"title": title, "code": code})
	})
	return references
}
