package manabo

import (
	"strings"

	"portalextract/internal/extract"
	"portalextract/internal/validate"
	"portalextract/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/getkin/kin-openapi/openapi3"
)

const (
	contentRows    = ".table-class-content tbody tr"
	contentAnchor  = "a.a-content-open"
	contentToggle  = "toggle-area"
	contentIcon    = ".plugin-icon"
	contentDetails = ".description"
	contentAction  = ".confirm a.btn"
)

// innerHTML is the trimmed inner markup of the first node in sel.
func innerHTML(sel *goquery.Selection) string {
	return strings.TrimSpace(htmlutil.InnerHTML(sel))
}

type ContentAction struct {
	Label string `json:"label"`
	Url   string `json:"url"`
}

var contentActionSchema = validate.Object(
	validate.Req("label", validate.String()),
	validate.Req("url", validate.String()),
)

// contentToggleFields reads the description and action button out of the
// collapsible row that follows a content row.
func contentToggleFields(toggle *goquery.Selection) (description any, action any) {
	description = extract.Nullable(innerHTML(htmlutil.QueryOne(toggle, contentDetails)))

	button := htmlutil.QueryOne(toggle, contentAction)
	href := extract.AttrOrEmpty(button, "href")
	if href == "" {
		return description, nil
	}
	return description, map[string]any{
		"label": extract.Text(button),
		"url":   href,
	}
}

// ContentEntry is one row of a class content table, it is either a
// FileEntry or a ReportEntry.
type ContentEntry interface {
	contentKind() string
}

const (
	ContentKindFile   = "file"
	ContentKindReport = "report"
)

// FileEntry is content that is only viewed (handouts, links, videos).
type FileEntry struct {
	Kind            string         `json:"kind"`
	ContentId       *string        `json:"contentId"`
	PluginKey       *string        `json:"pluginKey"`
	Title           string         `json:"title"`
	IconSrc         *string        `json:"iconSrc"`
	DescriptionHtml *string        `json:"descriptionHtml"`
	Action          *ContentAction `json:"action"`
}

func (FileEntry) contentKind() string { return ContentKindFile }

// ReportEntry is content that is submitted to (reports, quizzes), it has a
// submission period and status.
type ReportEntry struct {
	Kind            string         `json:"kind"`
	ContentId       *string        `json:"contentId"`
	PluginKey       *string        `json:"pluginKey"`
	Title           string         `json:"title"`
	IconSrc         *string        `json:"iconSrc"`
	DescriptionHtml *string        `json:"descriptionHtml"`
	Action          *ContentAction `json:"action"`
	Period          *string        `json:"period"`
	Status          *string        `json:"status"`
}

func (ReportEntry) contentKind() string { return ContentKindReport }

type ClassContent struct {
	Entries []ContentEntry `json:"entries"`
}

func contentEntryFields(kind string, extra ...validate.Field) *openapi3.Schema {
	fields := []validate.Field{
		validate.Req("kind", validate.Const(kind)),
		validate.Req("contentId", validate.Nullable(validate.String())),
		validate.Req("pluginKey", validate.Nullable(validate.String())),
		validate.Req("title", validate.String()),
		validate.Req("iconSrc", validate.Nullable(validate.String())),
		validate.Req("descriptionHtml", validate.Nullable(validate.String())),
		validate.Req("action", validate.Nullable(contentActionSchema)),
	}
	return validate.Closed(append(fields, extra...)...)
}

var contentEntrySchema = validate.Union("kind",
	validate.Variant{
		Kind:   ContentKindFile,
		Schema: contentEntryFields(ContentKindFile),
	},
	validate.Variant{
		Kind: ContentKindReport,
		Schema: contentEntryFields(
			ContentKindReport,
			validate.Req("period", validate.Nullable(validate.String())),
			validate.Req("status", validate.Nullable(validate.String())),
		),
	},
)

var contentEntryHook = validate.UnionHook((*ContentEntry)(nil), "kind", map[string]any{
	ContentKindFile:   FileEntry{},
	ContentKindReport: ReportEntry{},
})

var classContentSchema = validate.Object(
	validate.Req("entries", validate.Array(contentEntrySchema)),
)

// merged cells only appear on file rows, report rows spread their period
// and status over separate cells
var contentClassifier = extract.Classifier{
	ContinuationClass: contentToggle,
	VariantAttr:       "colspan",
	Primary:           []string{contentAnchor, "b"},
}

func contentEntry(kind string, row *goquery.Selection) map[string]any {
	title := contentClassifier.Title(row)
	anchor := htmlutil.QueryOne(row, contentAnchor)
	return map[string]any{
		"kind":            kind,
		"contentId":       extract.AttrOrNil(anchor, "content_id"),
		"pluginKey":       extract.AttrOrNil(anchor, "plugin_key"),
		"title":           extract.Text(title),
		"iconSrc":         extract.AttrOrNil(htmlutil.QueryOne(row, contentIcon), "src"),
		"descriptionHtml": nil,
		"action":          nil,
	}
}

var contentHandlers = extract.VariantHandlers{
	A: func(row *goquery.Selection) map[string]any {
		return contentEntry(ContentKindFile, row)
	},
	B: func(row *goquery.Selection) map[string]any {
		entry := contentEntry(ContentKindReport, row)
		entry["period"] = extract.NullableText(htmlutil.QueryOne(row, "td.td-period"))
		entry["status"] = extract.NullableText(htmlutil.QueryOne(row, "td.td-status"))
		return entry
	},
	Continue: func(previous map[string]any, row *goquery.Selection) {
		description, action := contentToggleFields(row)
		if description != nil {
			previous["descriptionHtml"] = description
		}
		if action != nil {
			previous["action"] = action
		}
	},
}

func contentEntries(doc *goquery.Document) []any {
	return extract.WalkVariants(
		htmlutil.QueryAll(doc.Selection, contentRows),
		contentClassifier,
		contentHandlers,
	)
}

// ParseClassContent reads the content table of a class directory, each row
// becomes a FileEntry or a ReportEntry.
func ParseClassContent(input string) (ClassContent, error) {
	doc := htmlutil.Parse(input)
	return validate.Parse[ClassContent](
		classContentSchema,
		map[string]any{"entries": contentEntries(doc)},
		validate.WithHook(contentEntryHook),
	)
}

type ClassNotAttendContent struct {
	Message *string        `json:"message"`
	Entries []ContentEntry `json:"entries"`
}

var classNotAttendContentSchema = validate.Object(
	validate.Req("message", validate.Nullable(validate.String())),
	validate.Req("entries", validate.Array(contentEntrySchema)),
)

// ParseClassNotAttendContent reads the content page shown for a class the
// student is not enrolled in, it carries a notice on top of the usual
// content table.
func ParseClassNotAttendContent(input string) (ClassNotAttendContent, error) {
	doc := htmlutil.Parse(input)
	return validate.Parse[ClassNotAttendContent](
		classNotAttendContentSchema,
		map[string]any{
			"message": extract.NullableText(htmlutil.QueryOne(doc.Selection, ".alert")),
			"entries": contentEntries(doc),
		},
		validate.WithHook(contentEntryHook),
	)
}

// ContentItem is the flat form of a content row.
type ContentItem struct {
	ContentId       string         `json:"contentId"`
	PluginKey       string         `json:"pluginKey"`
	Title           string         `json:"title"`
	IconSrc         *string        `json:"iconSrc"`
	DescriptionHtml *string        `json:"descriptionHtml"`
	Action          *ContentAction `json:"action"`
}

type ClassContentItems struct {
	Items []ContentItem `json:"items"`
}

var classContentItemsSchema = validate.Object(
	validate.Req("items", validate.Array(validate.Object(
		validate.Req("contentId", validate.String()),
		validate.Req("pluginKey", validate.String()),
		validate.Req("title", validate.String()),
		validate.Req("iconSrc", validate.Nullable(validate.String())),
		validate.Req("descriptionHtml", validate.Nullable(validate.String())),
		validate.Req("action", validate.Nullable(contentActionSchema)),
	))),
)

// ParseClassContentItems reads the content table into flat items. Only rows
// with a content anchor are kept and the details come from the next toggle
// row after them.
func ParseClassContentItems(input string) (ClassContentItems, error) {
	doc := htmlutil.Parse(input)

	items := []any{}
	htmlutil.QueryAll(doc.Selection, contentRows).Each(func(_ int, row *goquery.Selection) {
		anchor := htmlutil.QueryOne(row, contentAnchor)
		if anchor.Length() == 0 {
			return
		}

		var description, action any
		toggle := htmlutil.NextMatchingSibling(row, "."+contentToggle)
		if toggle.Length() > 0 {
			description, action = contentToggleFields(toggle)
		}

		items = append(items, map[string]any{
			"contentId":       extract.AttrOrEmpty(anchor, "content_id"),
			"pluginKey":       extract.AttrOrEmpty(anchor, "plugin_key"),
			"title":           extract.Text(anchor),
			"iconSrc":         extract.AttrOrNil(htmlutil.QueryOne(row, contentIcon), "src"),
			"descriptionHtml": description,
			"action":          action,
		})
	})

	return validate.Parse[ClassContentItems](classContentItemsSchema, map[string]any{
		"items": items,
	})
}
