package manabo

import (
	"portalextract/internal/extract"
	"portalextract/internal/validate"
	"portalextract/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

type EntryForm struct {
	Action      string   `json:"action"`
	ClassId     string   `json:"classId"`
	DirectoryId string   `json:"directoryId"`
	EntryId     string   `json:"entryId"`
	Uniqid      string   `json:"uniqid"`
	Messages    []string `json:"messages"`
}

var entryFormSchema = validate.Object(
	validate.Req("action", validate.String()),
	validate.Req("classId", validate.String()),
	validate.Req("directoryId", validate.String()),
	validate.Req("entryId", validate.String()),
	validate.Req("uniqid", validate.String()),
	validate.Req("messages", validate.Array(validate.String())),
)

// inputValue is the value of the input named name under form, or "".
func inputValue(form *goquery.Selection, name string) string {
	return extract.AttrOrEmpty(htmlutil.QueryOne(form, `input[name="`+name+`"]`), "value")
}

// ParseEntryForm reads the hidden fields of the attendance entry form.
func ParseEntryForm(input string) (EntryForm, error) {
	doc := htmlutil.Parse(input)
	form := htmlutil.QueryOne(doc.Selection, "#form-entry")

	return validate.Parse[EntryForm](entryFormSchema, map[string]any{
		"action":      inputValue(form, "action"),
		"classId":     inputValue(form, "class_id"),
		"directoryId": inputValue(form, "directory_id"),
		"entryId":     inputValue(form, "entry_id"),
		"uniqid":      inputValue(form, "uniqid"),
		"messages":    extract.NonEmptyTexts(htmlutil.QueryAll(form, "p")),
	})
}

type EntryResponseData struct {
	IsAccepted float64 `json:"is_accepted"`
}

// EntryResponse is the JSON answer to an attendance entry submission.
type EntryResponse struct {
	Success bool              `json:"success"`
	Html    *string           `json:"html"`
	Error   *string           `json:"error"`
	Message *string           `json:"message"`
	Data    EntryResponseData `json:"data"`
}

var entryResponseSchema = validate.Object(
	validate.Req("success", validate.Bool()),
	validate.Req("html", validate.Nullable(validate.String())),
	validate.Req("error", validate.Nullable(validate.String())),
	validate.Req("message", validate.Nullable(validate.String())),
	validate.Req("data", validate.Object(
		validate.Req("is_accepted", validate.Number()),
	)),
)

func ParseEntryResponse(input string) (EntryResponse, error) {
	return validate.Parse[EntryResponse](entryResponseSchema, extract.JSON(input))
}
