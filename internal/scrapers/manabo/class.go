// Package manabo extracts records out of the pages of the manabo course
// management system.
//
// Every Parse* function is a pure transform of one page into one record, it
// either returns a record that passed validation or a *validate.Error.
package manabo

import (
	"portalextract/internal/extract"
	"portalextract/internal/validate"
	"portalextract/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

type ClassDirectoryItem struct {
	DirectoryId string `json:"directoryId"`
	Title       string `json:"title"`
}

type ClassDirectory struct {
	ClassId     string               `json:"classId"`
	ClassName   string               `json:"className"`
	Directories []ClassDirectoryItem `json:"directories"`
}

var classDirectorySchema = validate.Object(
	validate.Req("classId", validate.String()),
	validate.Req("className", validate.String()),
	validate.Req("directories", validate.Array(validate.Object(
		validate.Req("directoryId", validate.String()),
		validate.Req("title", validate.String()),
	))),
)

// ParseClassDirectory reads the directory (folder) list at the top of a
// class page.
func ParseClassDirectory(input string) (ClassDirectory, error) {
	doc := htmlutil.Parse(input)

	classNode := htmlutil.QueryOne(doc.Selection, ".class-top-directory .x-content-drop")
	directories := []any{}
	htmlutil.QueryAll(doc.Selection, ".div-panel-directory li[directory_id]").Each(func(_ int, li *goquery.Selection) {
		directoryId := extract.AttrOrEmpty(li, "directory_id")
		title := extract.TextOf(li, ".x-directory-name")
		if directoryId == "" || title == "" {
			return
		}
		directories = append(directories, map[string]any{
			"directoryId": directoryId,
			"title":       title,
		})
	})

	return validate.Parse[ClassDirectory](classDirectorySchema, map[string]any{
		"classId":     extract.AttrOrEmpty(classNode, "class_id"),
		"className":   extract.TextOf(doc.Selection, ".class-top-directory .span-class-name"),
		"directories": directories,
	})
}

type ClassEntryRow struct {
	Directory   string  `json:"directory"`
	LectureDate *string `json:"lectureDate"`
	Status      string  `json:"status"`
}

type ClassEntry struct {
	Rows []ClassEntryRow `json:"rows"`
}

var classEntrySchema = validate.Object(
	validate.Req("rows", validate.Array(validate.Object(
		validate.Req("directory", validate.String()),
		validate.Req("lectureDate", validate.Nullable(validate.String())),
		validate.Req("status", validate.String()),
	))),
)

// ParseClassEntry reads the attendance entry table of a class.
func ParseClassEntry(input string) (ClassEntry, error) {
	doc := htmlutil.Parse(input)

	rows := extract.MapRows(
		htmlutil.QueryAll(doc.Selection, "table.table-default tbody tr"),
		"td",
		func(cells extract.Cells) any {
			return map[string]any{
				"directory":   cells.Text(0),
				"lectureDate": extract.Nullable(cells.Text(1)),
				"status":      cells.Text(2),
			}
		},
	)

	return validate.Parse[ClassEntry](classEntrySchema, map[string]any{
		"rows": rows,
	})
}

type ClassNewsItem struct {
	Id       *string `json:"id"`
	Title    string  `json:"title"`
	BodyHtml string  `json:"bodyHtml"`
}

type ClassNews struct {
	Items []ClassNewsItem `json:"items"`
}

var classNewsSchema = validate.Object(
	validate.Req("items", validate.Array(validate.Object(
		validate.Req("id", validate.Nullable(validate.String())),
		validate.Req("title", validate.String()),
		validate.Req("bodyHtml", validate.String()),
	))),
)

// ParseClassNews reads the announcements posted to a class.
func ParseClassNews(input string) (ClassNews, error) {
	doc := htmlutil.Parse(input)

	items := []any{}
	htmlutil.QueryAll(doc.Selection, "dl.x-openclose").Each(func(_ int, dl *goquery.Selection) {
		items = append(items, map[string]any{
			"id":       extract.AttrOrNil(dl, "id"),
			"title":    extract.TextOf(dl, "dt b"),
			"bodyHtml": innerHTML(htmlutil.QueryOne(dl, "dd")),
		})
	})

	return validate.Parse[ClassNews](classNewsSchema, map[string]any{
		"items": items,
	})
}
