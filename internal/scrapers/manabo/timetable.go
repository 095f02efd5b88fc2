package manabo

import (
	"portalextract/internal/extract"
	"portalextract/internal/validate"
	"portalextract/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

type TimetableSlot struct {
	Day       string  `json:"day"`
	ClassName *string `json:"className"`
	Teacher   *string `json:"teacher"`
	Href      *string `json:"href"`
}

type TimetablePeriod struct {
	Period string          `json:"period"`
	Slots  []TimetableSlot `json:"slots"`
}

type TimetableTerm struct {
	ArchiveId string `json:"archiveId"`
	Label     string `json:"label"`
	Active    bool   `json:"active"`
}

type TimetableViewMode struct {
	ArchiveId string  `json:"archiveId"`
	Mode      *string `json:"mode"`
	Label     string  `json:"label"`
	Active    bool    `json:"active"`
}

type Timetable struct {
	Title     string              `json:"title"`
	Terms     []TimetableTerm     `json:"terms"`
	ViewModes []TimetableViewMode `json:"viewModes"`
	Days      []string            `json:"days"`
	Periods   []TimetablePeriod   `json:"periods"`
}

var timetableSchema = validate.Object(
	validate.Req("title", validate.String()),
	validate.Req("terms", validate.Array(validate.Object(
		validate.Req("archiveId", validate.String()),
		validate.Req("label", validate.String()),
		validate.Req("active", validate.Bool()),
	))),
	validate.Req("viewModes", validate.Array(validate.Object(
		validate.Req("archiveId", validate.String()),
		validate.Req("mode", validate.Nullable(validate.String())),
		validate.Req("label", validate.String()),
		validate.Req("active", validate.Bool()),
	))),
	validate.Req("days", validate.Array(validate.String())),
	validate.Req("periods", validate.Array(validate.Object(
		validate.Req("period", validate.String()),
		validate.Req("slots", validate.Array(validate.Object(
			validate.Req("day", validate.String()),
			validate.Req("className", validate.Nullable(validate.String())),
			validate.Req("teacher", validate.Nullable(validate.String())),
			validate.Req("href", validate.Nullable(validate.String())),
		))),
	))),
)

// timetableSlot reads one cell of the timetable. The class link holds the
// class name in bold with the teacher as loose text after it, classes with a
// status label (cancelled, moved) show the label instead of a teacher.
func timetableSlot(cell *goquery.Selection, day string) map[string]any {
	anchor := htmlutil.QueryOne(cell, "div.student a")
	if anchor.Length() == 0 {
		return map[string]any{
			"day":       day,
			"className": nil,
			"teacher":   nil,
			"href":      nil,
		}
	}

	var teacher any
	if htmlutil.QueryOne(anchor, "small.label").Length() == 0 {
		teacher = extract.Nullable(extract.CollectTextExcluding(anchor, extract.ExcludeTags("b")))
	}

	return map[string]any{
		"day":       day,
		"className": extract.NullableText(htmlutil.QueryOne(anchor, "b")),
		"teacher":   teacher,
		"href":      extract.AttrOrNil(anchor, "href"),
	}
}

// ParseTimetable reads the weekly timetable along with the term tabs and
// view mode switches above it.
func ParseTimetable(input string) (Timetable, error) {
	doc := htmlutil.Parse(input)

	terms := []any{}
	htmlutil.QueryAll(doc.Selection, ".calendar .nav-tabs a.a-load-timetable[archive_id]").Each(func(_ int, anchor *goquery.Selection) {
		terms = append(terms, map[string]any{
			"archiveId": extract.AttrOrEmpty(anchor, "archive_id"),
			"label":     extract.Text(anchor),
			"active":    htmlutil.HasClass(anchor, "active") || htmlutil.HasClass(htmlutil.Closest(anchor, "li"), "active"),
		})
	})

	viewModes := []any{}
	htmlutil.QueryAll(doc.Selection, ".panel-body .text-right a.a-load-timetable").Each(func(_ int, anchor *goquery.Selection) {
		viewModes = append(viewModes, map[string]any{
			"archiveId": extract.AttrOrEmpty(anchor, "archive_id"),
			"mode":      extract.AttrOrNil(anchor, "mode"),
			"label":     extract.Text(anchor),
			"active":    htmlutil.HasClass(anchor, "active"),
		})
	})

	table := htmlutil.QueryOne(doc.Selection, ".table-calendar")
	days := []string{}
	htmlutil.QueryAll(table, "thead tr th.data").Each(func(_ int, th *goquery.Selection) {
		days = append(days, extract.Text(th))
	})

	periods := []any{}
	htmlutil.QueryAll(table, "tbody tr").Each(func(_ int, row *goquery.Selection) {
		slots := []any{}
		htmlutil.QueryAll(row, "td").Each(func(i int, cell *goquery.Selection) {
			day := ""
			if i < len(days) {
				day = days[i]
			}
			slots = append(slots, timetableSlot(cell, day))
		})
		periods = append(periods, map[string]any{
			"period": extract.TextOf(row, "th.time"),
			"slots":  slots,
		})
	})

	return validate.Parse[Timetable](timetableSchema, map[string]any{
		"title":     extract.TextOf(doc.Selection, "#time_table_name"),
		"terms":     terms,
		"viewModes": viewModes,
		"days":      extract.Strings(days),
		"periods":   periods,
	})
}
