package manabo

import (
	"portalextract/internal/extract"
	"portalextract/internal/validate"
	"portalextract/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

type NewsItem struct {
	Text string `json:"text"`
}

type News struct {
	Message *string    `json:"message"`
	Items   []NewsItem `json:"items"`
}

var newsSchema = validate.Object(
	validate.Req("message", validate.Nullable(validate.String())),
	validate.Req("items", validate.Array(validate.Object(
		validate.Req("text", validate.String()),
	))),
)

// ParseNews reads the portal wide notice list. Rows with a link are
// notices, a row without one is the "nothing to show" message.
func ParseNews(input string) (News, error) {
	doc := htmlutil.Parse(input)

	var message any
	items := []any{}
	htmlutil.QueryAll(doc.Selection, ".table-info tbody tr").Each(func(_ int, row *goquery.Selection) {
		text := extract.Text(row)
		if text == "" {
			return
		}
		if htmlutil.QueryOne(row, "a").Length() > 0 {
			items = append(items, map[string]any{"text": text})
			return
		}
		message = text
	})

	return validate.Parse[News](newsSchema, map[string]any{
		"message": message,
		"items":   items,
	})
}
