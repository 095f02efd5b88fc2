package manabo

import (
	"portalextract/internal/extract"
	"portalextract/internal/validate"
	"portalextract/lib/htmlutil"
	"portalextract/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	mailRows    = "table.table-default tbody tr"
	mailSummary = ".row.margin-top-md .col-sm-2"
)

type MailListPage struct {
	Label  string `json:"label"`
	Page   string `json:"page"`
	Active bool   `json:"active"`
}

var mailListPageSchema = validate.Object(
	validate.Req("label", validate.String()),
	validate.Req("page", validate.String()),
	validate.Req("active", validate.Bool()),
)

// mailPages reads the pagination links under a mail list, the current page
// is a span instead of a link.
func mailPages(doc *goquery.Document) []any {
	pages := []any{}
	htmlutil.QueryAll(doc.Selection, "ul.pagination li").Each(func(_ int, li *goquery.Selection) {
		anchor := htmlutil.QueryOne(li, "a")
		label := extract.TextOf(li, "span")
		page := label
		if anchor.Length() > 0 {
			label = extract.Text(anchor)
			page = htmlutil.AttrOr(anchor, "page", label)
		}
		if label == "" {
			return
		}
		pages = append(pages, map[string]any{
			"label":  label,
			"page":   page,
			"active": htmlutil.HasClass(anchor, "active") || htmlutil.HasClass(li, "active"),
		})
	})
	return pages
}

// mailId is the id carried by the selection checkbox of a mail row.
func mailId(row *goquery.Selection) string {
	checkbox := htmlutil.QueryOne(row, `input[type="checkbox"]`)
	if value, ok := htmlutil.Attr(checkbox, "value"); ok {
		return value
	}
	return extract.AttrOrEmpty(checkbox, "name")
}

func statusIconAlt(icon *goquery.Selection) any {
	return extract.Nullable(textutil.NormalizeWhitespace(extract.AttrOrEmpty(icon, "alt")))
}

type ReceivedMailItem struct {
	Id            string  `json:"id"`
	Title         string  `json:"title"`
	StatusIconAlt *string `json:"statusIconAlt"`
	StatusIconSrc *string `json:"statusIconSrc"`
	MailLink      *string `json:"mailLink"`
	SenderName    *string `json:"senderName"`
	SenderImage   *string `json:"senderImage"`
	ReceivedAt    string  `json:"receivedAt"`
}

type ReceivedMail struct {
	Summary *string            `json:"summary"`
	Pages   []MailListPage     `json:"pages"`
	Mails   []ReceivedMailItem `json:"mails"`
}

var receivedMailSchema = validate.Object(
	validate.Req("summary", validate.Nullable(validate.String())),
	validate.Req("pages", validate.Array(mailListPageSchema)),
	validate.Req("mails", validate.Array(validate.Object(
		validate.Req("id", validate.String()),
		validate.Req("title", validate.String()),
		validate.Req("statusIconAlt", validate.Nullable(validate.String())),
		validate.Req("statusIconSrc", validate.Nullable(validate.String())),
		validate.Req("mailLink", validate.Nullable(validate.String())),
		validate.Req("senderName", validate.Nullable(validate.String())),
		validate.Req("senderImage", validate.Nullable(validate.String())),
		validate.Req("receivedAt", validate.String()),
	))),
)

// ParseReceivedMail reads the inbox list.
func ParseReceivedMail(input string) (ReceivedMail, error) {
	doc := htmlutil.Parse(input)

	mails := []any{}
	htmlutil.QueryAll(doc.Selection, mailRows).Each(func(_ int, row *goquery.Selection) {
		cells := extract.NewCells(row, "td")
		title := htmlutil.QueryOne(row, "td.title a.a-mail-view")
		icon := htmlutil.QueryOne(row, "td.title img.icon")
		mails = append(mails, map[string]any{
			"id":            mailId(row),
			"title":         extract.Text(title),
			"statusIconAlt": statusIconAlt(icon),
			"statusIconSrc": extract.AttrOrNil(icon, "src"),
			"mailLink":      extract.AttrOrNil(title, "href"),
			"senderName":    extract.Nullable(cells.Text(2)),
			"senderImage":   extract.AttrOrNil(htmlutil.QueryOne(cells.At(2), "img"), "src"),
			"receivedAt":    cells.Text(3),
		})
	})

	return validate.Parse[ReceivedMail](receivedMailSchema, map[string]any{
		"summary": extract.NullableText(htmlutil.QueryOne(doc.Selection, mailSummary)),
		"pages":   mailPages(doc),
		"mails":   mails,
	})
}

type SentMailItem struct {
	Id             string  `json:"id"`
	Title          string  `json:"title"`
	StatusIconAlt  *string `json:"statusIconAlt"`
	StatusIconSrc  *string `json:"statusIconSrc"`
	MailLink       *string `json:"mailLink"`
	RecipientName  *string `json:"recipientName"`
	RecipientImage *string `json:"recipientImage"`
	SentAt         string  `json:"sentAt"`
	UnreadCount    int     `json:"unreadCount"`
}

type SentMail struct {
	Summary *string        `json:"summary"`
	Mails   []SentMailItem `json:"mails"`
}

var sentMailSchema = validate.Object(
	validate.Req("summary", validate.Nullable(validate.String())),
	validate.Req("mails", validate.Array(validate.Object(
		validate.Req("id", validate.String()),
		validate.Req("title", validate.String()),
		validate.Req("statusIconAlt", validate.Nullable(validate.String())),
		validate.Req("statusIconSrc", validate.Nullable(validate.String())),
		validate.Req("mailLink", validate.Nullable(validate.String())),
		validate.Req("recipientName", validate.Nullable(validate.String())),
		validate.Req("recipientImage", validate.Nullable(validate.String())),
		validate.Req("sentAt", validate.String()),
		validate.Req("unreadCount", validate.Integer()),
	))),
)

// ParseSentMail reads the outbox list, each sent mail carries the number
// of recipients that have not read it yet.
func ParseSentMail(input string) (SentMail, error) {
	doc := htmlutil.Parse(input)

	mails := []any{}
	htmlutil.QueryAll(doc.Selection, mailRows).Each(func(_ int, row *goquery.Selection) {
		cells := extract.NewCells(row, "td")
		title := htmlutil.QueryOne(cells.At(1), "a.a-mail-view")
		icon := htmlutil.QueryOne(cells.At(1), "img.icon")
		mails = append(mails, map[string]any{
			"id":             mailId(row),
			"title":          extract.Text(title),
			"statusIconAlt":  statusIconAlt(icon),
			"statusIconSrc":  extract.AttrOrNil(icon, "src"),
			"mailLink":       extract.AttrOrNil(title, "href"),
			"recipientName":  extract.Nullable(cells.Text(2)),
			"recipientImage": extract.AttrOrNil(htmlutil.QueryOne(cells.At(2), "img"), "src"),
			"sentAt":         cells.Text(3),
			"unreadCount":    textutil.DigitsToInt(cells.Text(4)),
		})
	})

	return validate.Parse[SentMail](sentMailSchema, map[string]any{
		"summary": extract.NullableText(htmlutil.QueryOne(doc.Selection, mailSummary)),
		"mails":   mails,
	})
}

type MailView struct {
	Title        string  `json:"title"`
	ReplyMailId  *string `json:"replyMailId"`
	FromMemberId *string `json:"fromMemberId"`
	NextMailId   *string `json:"nextMailId"`
	SenderName   string  `json:"senderName"`
	SenderImage  *string `json:"senderImage"`
	SentAt       string  `json:"sentAt"`
	BodyHtml     string  `json:"bodyHtml"`
}

var mailViewSchema = validate.Object(
	validate.Req("title", validate.String()),
	validate.Req("replyMailId", validate.Nullable(validate.String())),
	validate.Req("fromMemberId", validate.Nullable(validate.String())),
	validate.Req("nextMailId", validate.Nullable(validate.String())),
	validate.Req("senderName", validate.String()),
	validate.Req("senderImage", validate.Nullable(validate.String())),
	validate.Req("sentAt", validate.String()),
	validate.Req("bodyHtml", validate.String()),
)

// ParseMailView reads an opened mail. The modal body has a sender block
// (icon, name and the send time as loose text) followed by the body block.
func ParseMailView(input string) (MailView, error) {
	doc := htmlutil.Parse(input)

	reply := htmlutil.QueryOne(doc.Selection, ".a-reply-mail")
	next := htmlutil.QueryOne(doc.Selection, ".a-reopen-mail")
	blocks := htmlutil.QueryAll(doc.Selection, ".modal-body .margin-top-lg")
	sender := htmlutil.Nth(blocks, 0)
	body := htmlutil.Nth(blocks, 1)

	return validate.Parse[MailView](mailViewSchema, map[string]any{
		"title":        extract.TextOf(doc.Selection, ".modal-title"),
		"replyMailId":  extract.AttrOrNil(reply, "reply_mail_id"),
		"fromMemberId": extract.AttrOrNil(reply, "from_member_id"),
		"nextMailId":   extract.AttrOrNil(next, "mail_id"),
		"senderName":   extract.TextOf(sender, "b"),
		"senderImage":  extract.AttrOrNil(htmlutil.QueryOne(sender, "img"), "src"),
		"sentAt":       extract.CollectTextExcluding(sender, extract.ExcludeTags("a", "script")),
		"bodyHtml":     innerHTML(body),
	})
}

type MailSendForm struct {
	Action      string  `json:"action"`
	ReplyMailId *string `json:"replyMailId"`
	Signature   *string `json:"signature"`
	CsrfToken   string  `json:"csrfToken"`
}

type MailSend struct {
	ModalTitle  string       `json:"modalTitle"`
	Form        MailSendForm `json:"form"`
	SubmitLabel string       `json:"submitLabel"`
}

var mailSendSchema = validate.Object(
	validate.Req("modalTitle", validate.String()),
	validate.Req("form", validate.Object(
		validate.Req("action", validate.String()),
		validate.Req("replyMailId", validate.Nullable(validate.String())),
		validate.Req("signature", validate.Nullable(validate.String())),
		validate.Req("csrfToken", validate.String()),
	)),
	validate.Req("submitLabel", validate.String()),
)

// ParseMailSend reads the compose dialog.
func ParseMailSend(input string) (MailSend, error) {
	doc := htmlutil.Parse(input)
	form := htmlutil.QueryOne(doc.Selection, "#form-mail")

	return validate.Parse[MailSend](mailSendSchema, map[string]any{
		"modalTitle": extract.TextOf(doc.Selection, ".modal-title"),
		"form": map[string]any{
			"action":      inputValue(form, "action"),
			"replyMailId": extract.AttrOrNil(htmlutil.QueryOne(form, `input[name="reply_mail_id"]`), "value"),
			"signature":   extract.AttrOrNil(htmlutil.QueryOne(form, `input[name="signature"]`), "value"),
			"csrfToken":   inputValue(form, "csrf_token"),
		},
		"submitLabel": extract.TextOf(doc.Selection, ".button-send-mail"),
	})
}

type MailMember struct {
	MemberId string  `json:"memberId"`
	Name     string  `json:"name"`
	Image    *string `json:"image"`
}

type MailMembers struct {
	Members []MailMember `json:"members"`
}

var mailMembersSchema = validate.Object(
	validate.Req("members", validate.Array(validate.Object(
		validate.Req("memberId", validate.String()),
		validate.Req("name", validate.String()),
		validate.Req("image", validate.Nullable(validate.String())),
	))),
)

// ParseMailMember reads the recipient picker, members without an id are
// section headers and are left out.
func ParseMailMember(input string) (MailMembers, error) {
	doc := htmlutil.Parse(input)

	members := []any{}
	htmlutil.QueryAll(doc.Selection, ".div-mail-members li").Each(func(_ int, li *goquery.Selection) {
		anchor := htmlutil.QueryOne(li, "a.a-set-mail-member")
		memberId := extract.AttrOrEmpty(anchor, "member_id")
		if memberId == "" {
			return
		}
		members = append(members, map[string]any{
			"memberId": memberId,
			"name":     extract.Text(anchor),
			"image":    extract.AttrOrNil(htmlutil.QueryOne(li, "img"), "src"),
		})
	})

	return validate.Parse[MailMembers](mailMembersSchema, map[string]any{
		"members": members,
	})
}
