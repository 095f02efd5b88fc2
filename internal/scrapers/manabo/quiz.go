package manabo

import (
	"portalextract/internal/extract"
	"portalextract/internal/validate"
	"portalextract/lib/htmlutil"
	"portalextract/lib/textutil"
)

type QuizScore struct {
	Obtained int `json:"obtained"`
	Total    int `json:"total"`
}

type QuizQuestion struct {
	Page           string  `json:"page"`
	QuestionNumber string  `json:"questionNumber"`
	QuestionText   string  `json:"questionText"`
	CorrectAnswer  string  `json:"correctAnswer"`
	StudentAnswer  string  `json:"studentAnswer"`
	ResultIconAlt  *string `json:"resultIconAlt"`
	ResultIconSrc  *string `json:"resultIconSrc"`
	ResultText     *string `json:"resultText"`
	TeacherComment *string `json:"teacherComment"`
}

type ClassQuizResult struct {
	Score          QuizScore      `json:"score"`
	TotalItemsText *string        `json:"totalItemsText"`
	Questions      []QuizQuestion `json:"questions"`
}

var classQuizResultSchema = validate.Object(
	validate.Req("score", validate.Object(
		validate.Req("obtained", validate.Integer()),
		validate.Req("total", validate.Integer()),
	)),
	validate.Req("totalItemsText", validate.Nullable(validate.String())),
	validate.Req("questions", validate.Array(validate.Object(
		validate.Req("page", validate.String()),
		validate.Req("questionNumber", validate.String()),
		validate.Req("questionText", validate.String()),
		validate.Req("correctAnswer", validate.String()),
		validate.Req("studentAnswer", validate.String()),
		validate.Req("resultIconAlt", validate.Nullable(validate.String())),
		validate.Req("resultIconSrc", validate.Nullable(validate.String())),
		validate.Req("resultText", validate.Nullable(validate.String())),
		validate.Req("teacherComment", validate.Nullable(validate.String())),
	))),
)

// a question row that still carries the page cell (when the rowspan
// attribute is missing) has this many cells
const quizRowColumns = 7

// ParseClassQuizResult reads the graded result of a quiz. Questions are
// grouped by quiz page, the page cell spans all the questions of the page.
func ParseClassQuizResult(input string) (ClassQuizResult, error) {
	doc := htmlutil.Parse(input)

	scoreText := extract.TextOf(doc.Selection, ".text-center .Red b")
	totalText := extract.TextOf(doc.Selection, ".text-center")

	questions := extract.WalkRows(
		htmlutil.QueryAll(doc.Selection, "table.table-default-grade tbody tr"),
		extract.GroupRule{Columns: quizRowColumns},
		func(ctx *extract.Context, cells extract.Cells) any {
			questionCell := cells.At(1)
			question := htmlutil.QueryOne(questionCell, ".div-instructions")
			if question.Length() == 0 {
				question = questionCell
			}

			result := cells.At(4)
			icon := htmlutil.QueryOne(result, "img")
			alt := ""
			if value, ok := htmlutil.Attr(icon, "alt"); ok {
				alt = textutil.NormalizeWhitespace(value)
			}

			return map[string]any{
				"page":           ctx.Group,
				"questionNumber": cells.Text(0),
				"questionText":   extract.Text(question),
				"correctAnswer":  cells.Text(2),
				"studentAnswer":  cells.Text(3),
				"resultIconAlt":  extract.Nullable(alt),
				"resultIconSrc":  extract.AttrOrNil(icon, "src"),
				"resultText":     extract.Nullable(cells.Text(4)),
				"teacherComment": extract.Nullable(cells.Text(5)),
			}
		},
	)

	return validate.Parse[ClassQuizResult](classQuizResultSchema, map[string]any{
		"score": map[string]any{
			"obtained": textutil.DigitsToInt(scoreText),
			"total":    textutil.DigitsToInt(textutil.AfterSlash(totalText)),
		},
		"totalItemsText": extract.NullableText(htmlutil.QueryOne(doc.Selection, ".row.margin-top-md .col-sm-2")),
		"questions":      questions,
	})
}
