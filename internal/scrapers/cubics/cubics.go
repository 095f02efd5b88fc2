// Package cubics extracts records out of the cubics student system.
package cubics

import (
	"strings"

	"portalextract/internal/extract"
	"portalextract/internal/validate"
	"portalextract/lib/htmlutil"
	"portalextract/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/getkin/kin-openapi/openapi3"
)

type Student struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Division    string `json:"division"`
	Affiliation string `json:"affiliation"`
	Status      string `json:"status"`
	ClassName   string `json:"className"`
	Faculty     string `json:"faculty"`
	Department  string `json:"department"`
	Course      string `json:"course"`
	Address     string `json:"address"`
}

type Day struct {
	Label string `json:"label"`
	Date  string `json:"date"`
}

// Slot is one cell of the timetable, every field is null for an empty
// cell.
type Slot struct {
	Classroom     *string `json:"classroom"`
	Subject       *string `json:"subject"`
	DetailUrl     *string `json:"detailUrl"`
	LessonCode    *string `json:"lessonCode"`
	LessonYear    *string `json:"lessonYear"`
	TermCode      *string `json:"termCode"`
	TimetableCode *string `json:"timetableCode"`
	OptionDate    *string `json:"optionDate"`
}

type Period struct {
	PeriodLabel string `json:"periodLabel"`
	Slots       []Slot `json:"slots"`
}

type Timetable struct {
	Student     Student  `json:"student"`
	PeriodRange string   `json:"periodRange"`
	Days        []Day    `json:"days"`
	Periods     []Period `json:"periods"`
}

var slotFields = []string{
	"classroom",
	"subject",
	"detailUrl",
	"lessonCode",
	"lessonYear",
	"termCode",
	"timetableCode",
	"optionDate",
}

var timetableSchema = func() *openapi3.Schema {
	slotSchema := []validate.Field{}
	for _, name := range slotFields {
		slotSchema = append(slotSchema, validate.Req(name, validate.Nullable(validate.String())))
	}
	return validate.Object(
		validate.Req("student", validate.Object(
			validate.Req("id", validate.String()),
			validate.Req("name", validate.String()),
			validate.Req("division", validate.String()),
			validate.Req("affiliation", validate.String()),
			validate.Req("status", validate.String()),
			validate.Req("className", validate.String()),
			validate.Req("faculty", validate.String()),
			validate.Req("department", validate.String()),
			validate.Req("course", validate.String()),
			validate.Req("address", validate.String()),
		)),
		validate.Req("periodRange", validate.String()),
		validate.Req("days", validate.Array(validate.Object(
			validate.Req("label", validate.String()),
			validate.Req("date", validate.String()),
		))),
		validate.Req("periods", validate.Array(validate.Object(
			validate.Req("periodLabel", validate.String()),
			validate.Req("slots", validate.Array(validate.Object(slotSchema...))),
		))),
	)
}()

// hidden inputs carrying the lesson keys of a slot, they are matched by the
// suffix of their (row specific) name
var slotInputs = map[string]string{
	"lessonCode":    ".hdnLsnCd1",
	"lessonYear":    ".hdnLsnOpcFcy1",
	"termCode":      ".hdnTacTrmCd1",
	"timetableCode": ".hdnTmtxCd",
	"optionDate":    ".hdnOpcDt",
}

const detailPopup = "execPopupWindowOpen"

func slot(cell *goquery.Selection) map[string]any {
	out := map[string]any{}
	for field, suffix := range slotInputs {
		out[field] = extract.AttrOrNil(htmlutil.QueryOne(cell, `input[name$="`+suffix+`"]`), "value")
	}

	var detailUrl any
	htmlutil.QueryAll(cell, "a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		onclick := extract.AttrOrEmpty(a, "onclick")
		if !strings.Contains(onclick, detailPopup) {
			return true
		}
		if url, ok := textutil.ExtractFirstQuotedValue(onclick); ok {
			detailUrl = url
		}
		return false
	})
	out["detailUrl"] = detailUrl

	info := htmlutil.QueryAll(cell, "a.chiphelp")
	out["classroom"] = extract.NullableText(htmlutil.Nth(info, 0))
	out["subject"] = extract.NullableText(htmlutil.Nth(info, 1))

	// a cell without a class still has some of the hidden inputs
	if out["classroom"] == nil && out["subject"] == nil && out["detailUrl"] == nil && out["lessonCode"] == nil {
		for _, name := range slotFields {
			out[name] = nil
		}
	}
	return out
}

// ParseTimetable reads the weekly timetable page, which has the student's
// details on top followed by the curriculum grid.
func ParseTimetable(input string) (Timetable, error) {
	doc := htmlutil.Parse(input)

	studentRows := htmlutil.QueryAll(htmlutil.QueryOne(doc.Selection, "table.output"), "tr")
	row := func(i int) extract.Cells {
		return extract.NewCells(htmlutil.Nth(studentRows, i), "td")
	}
	student := map[string]any{
		"id":          row(0).Text(0),
		"name":        row(0).Text(1),
		"division":    row(1).Text(0),
		"affiliation": row(1).Text(1),
		"status":      row(1).Text(2),
		"className":   row(1).Text(3),
		"faculty":     row(2).Text(0),
		"department":  row(2).Text(1),
		"course":      row(2).Text(2),
		"address":     row(3).Text(0),
	}

	periodRange, ok := htmlutil.Attr(htmlutil.QueryOne(doc.Selection, "input[name='lblSpcfProd']"), "value")
	if !ok {
		periodRange = extract.TextOf(doc.Selection, "div.searcharea ul li")
	}

	curriculum := htmlutil.QueryOne(doc.Selection, "table.output_curriculum")
	rows := htmlutil.QueryAll(curriculum, "tr")

	days := []any{}
	htmlutil.QueryAll(htmlutil.Nth(rows, 0), "th").Each(func(i int, th *goquery.Selection) {
		// the first header is the corner above the period labels
		if i == 0 {
			return
		}
		segments := strings.Fields(extract.Text(th))
		day := map[string]any{"label": "", "date": ""}
		if len(segments) > 0 {
			day["label"] = segments[0]
		}
		if len(segments) > 1 {
			day["date"] = segments[1]
		}
		days = append(days, day)
	})

	periods := []any{}
	rows.Each(func(i int, tr *goquery.Selection) {
		if i == 0 {
			return
		}
		slots := []any{}
		htmlutil.QueryAll(tr, "td").Each(func(_ int, cell *goquery.Selection) {
			slots = append(slots, slot(cell))
		})
		periods = append(periods, map[string]any{
			"periodLabel": extract.TextOf(tr, "th"),
			"slots":       slots,
		})
	})

	return validate.Parse[Timetable](timetableSchema, map[string]any{
		"student":     student,
		"periodRange": textutil.NormalizeWhitespace(periodRange),
		"days":        days,
		"periods":     periods,
	})
}
