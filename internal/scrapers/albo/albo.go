// Package albo decodes the JSON envelopes returned by the albo portal API.
//
// The envelopes are passed through as they are, field names stay in the
// snake_case used on the wire. Fields the portal leaves untyped are kept as
// plain values (any) and keys that are not declared here are dropped.
package albo

import (
	"portalextract/internal/extract"
	"portalextract/internal/validate"

	"github.com/getkin/kin-openapi/openapi3"
)

var (
	str         = validate.String
	num         = validate.Number
	boolean     = validate.Bool
	nullStr     = func() *openapi3.Schema { return validate.Nullable(validate.String()) }
	nullNum     = func() *openapi3.Schema { return validate.Nullable(validate.Number()) }
	req         = validate.Req
	unknownList = func() *openapi3.Schema { return validate.Array(validate.Unknown()) }
)

// unknown is a field the portal does not give a fixed shape, it may be
// missing, null or anything else.
func unknown(name string) validate.Field {
	return validate.Opt(name, validate.Unknown())
}

// envelope builds the schema shared by every albo response.
func envelope(user validate.Field, result *openapi3.Schema) *openapi3.Schema {
	return validate.Object(
		req("is_successful", boolean()),
		req("code", num()),
		req("api_version", num()),
		req("gmt", num()),
		user,
		req("result", result),
	)
}

// Envelope is the part shared by every albo response.
type Envelope struct {
	IsSuccessful bool    `json:"is_successful"`
	Code         float64 `json:"code"`
	ApiVersion   float64 `json:"api_version"`
	Gmt          float64 `json:"gmt"`
}

func parse[T any](schema *openapi3.Schema, input string) (T, error) {
	return validate.Parse[T](schema, extract.JSON(input))
}

type CalendarItem struct {
	CalendarSourceUuid string  `json:"calendar_source_uuid"`
	Summary            string  `json:"summary"`
	Description        *string `json:"description"`
	StartAt            float64 `json:"start_at"`
	EndAt              float64 `json:"end_at"`
	CreatedAt          float64 `json:"created_at"`
}

type CalendarResult struct {
	PageTotal  float64        `json:"page_total"`
	PageSize   float64        `json:"page_size"`
	ItemCount  float64        `json:"item_count"`
	SourceName string         `json:"source_name"`
	Items      []CalendarItem `json:"items"`
}

type Calendar struct {
	Envelope
	User   any            `json:"user"`
	Result CalendarResult `json:"result"`
}

var calendarSchema = envelope(unknown("user"), validate.Object(
	req("page_total", num()),
	req("page_size", num()),
	req("item_count", num()),
	req("source_name", str()),
	req("items", validate.Array(validate.Object(
		req("calendar_source_uuid", str()),
		req("summary", str()),
		req("description", nullStr()),
		req("start_at", num()),
		req("end_at", num()),
		req("created_at", num()),
	))),
))

// ParseCalendar decodes a calendar event listing.
func ParseCalendar(input string) (Calendar, error) {
	return parse[Calendar](calendarSchema, input)
}

type TimetableBadge struct {
	Term string `json:"term"`
}

type TimetableItem struct {
	Uuid              string         `json:"uuid"`
	Id                string         `json:"id"`
	ExecuteDate       string         `json:"execute_date"`
	DayOfWeek         float64        `json:"day_of_week"`
	TimeNumber        float64        `json:"time_number"`
	ClassId           string         `json:"class_id"`
	ClassName         string         `json:"class_name"`
	Term              string         `json:"term"`
	Campus            string         `json:"campus"`
	Teacher           string         `json:"teacher"`
	Room              *string        `json:"room"`
	Memo              string         `json:"memo"`
	Options           any            `json:"options"`
	CreatedAt         float64        `json:"created_at"`
	ExecuteSchoolYear string         `json:"execute_school_year"`
	ClassType         float64        `json:"class_type"`
	MemoEn            *string        `json:"memo_en"`
	OptionsEn         any            `json:"options_en"`
	Order             float64        `json:"order"`
	Badge             TimetableBadge `json:"badge"`
	TermEn            string         `json:"term_en"`
	ClassNameEn       string         `json:"class_name_en"`
	CampusEn          string         `json:"campus_en"`
	Cancels           []any          `json:"cancels"`
	Extras            []any          `json:"extras"`
	Changes           []any          `json:"changes"`
}

type TimetableResult struct {
	TimeTableType string          `json:"time_table_type"`
	PageTotal     float64         `json:"page_total"`
	PageSize      float64         `json:"page_size"`
	ItemCount     float64         `json:"item_count"`
	Items         []TimetableItem `json:"items"`
}

type Timetable struct {
	Envelope
	User   any             `json:"user"`
	Result TimetableResult `json:"result"`
}

var timetableSchema = envelope(unknown("user"), validate.Object(
	req("time_table_type", str()),
	req("page_total", num()),
	req("page_size", num()),
	req("item_count", num()),
	req("items", validate.Array(validate.Object(
		req("uuid", str()),
		req("id", str()),
		req("execute_date", str()),
		req("day_of_week", num()),
		req("time_number", num()),
		req("class_id", str()),
		req("class_name", str()),
		req("term", str()),
		req("campus", str()),
		req("teacher", str()),
		req("room", nullStr()),
		req("memo", str()),
		unknown("options"),
		req("created_at", num()),
		req("execute_school_year", str()),
		req("class_type", num()),
		req("memo_en", nullStr()),
		unknown("options_en"),
		req("order", num()),
		req("badge", validate.Object(
			req("term", str()),
		)),
		req("term_en", str()),
		req("class_name_en", str()),
		req("campus_en", str()),
		req("cancels", unknownList()),
		req("extras", unknownList()),
		req("changes", unknownList()),
	))),
))

// ParseTimetable decodes the class schedule, one item per class meeting.
func ParseTimetable(input string) (Timetable, error) {
	return parse[Timetable](timetableSchema, input)
}

type InformationCategory struct {
	Uuid          string  `json:"uuid"`
	Name          string  `json:"name"`
	NameEn        *string `json:"name_en"`
	Description   *string `json:"description"`
	DescriptionEn *string `json:"description_en"`
	Order         float64 `json:"order"`
	IsForGuest    bool    `json:"is_for_guest"`
	CreatedBy     string  `json:"created_by"`
	UpdatedBy     *string `json:"updated_by"`
	CreatedAt     float64 `json:"created_at"`
	UpdatedAt     float64 `json:"updated_at"`
}

type InformationFile struct {
	Uuid          string  `json:"uuid"`
	FileName      string  `json:"file_name"`
	MimeType      string  `json:"mime_type"`
	IsThumbExists bool    `json:"is_thumb_exists"`
	CreatedBy     string  `json:"created_by"`
	CreatedAt     float64 `json:"created_at"`
}

type InformationItem struct {
	Uuid                   string              `json:"uuid"`
	PublishFrom            string              `json:"publish_from"`
	PublishFromEn          *string             `json:"publish_from_en"`
	PublishDepartmentEn    *string             `json:"publish_department_en"`
	PublishStartAt         float64             `json:"publish_start_at"`
	PublishEndAt           float64             `json:"publish_end_at"`
	Title                  string              `json:"title"`
	TitleEn                *string             `json:"title_en"`
	Content                string              `json:"content"`
	ContentEn              *string             `json:"content_en"`
	Priority               float64             `json:"priority"`
	EventTitle             *string             `json:"event_title"`
	EventTitleEn           *string             `json:"event_title_en"`
	EventStartAt           *float64            `json:"event_start_at"`
	EventEndAt             *float64            `json:"event_end_at"`
	IsSendMailNotification float64             `json:"is_send_mail_notification"`
	MailFrom               *string             `json:"mail_from"`
	Options                any                 `json:"options"`
	CreatedBy              string              `json:"created_by"`
	UpdatedBy              *string             `json:"updated_by"`
	CreatedAt              float64             `json:"created_at"`
	IsTemplate             float64             `json:"is_template"`
	IsPublic               bool                `json:"is_public"`
	IsRead                 bool                `json:"is_read"`
	IsPinned               bool                `json:"is_pinned"`
	IsReactedGood          bool                `json:"is_reacted_good"`
	GoodCount              float64             `json:"good_count"`
	Category               InformationCategory `json:"category"`
	Files                  []InformationFile   `json:"files"`
	PersonalFiles          []InformationFile   `json:"personal_files"`
	Images                 []InformationFile   `json:"images"`
}

type InformationResult struct {
	PageTotal float64           `json:"page_total"`
	PageSize  float64           `json:"page_size"`
	ItemCount float64           `json:"item_count"`
	Items     []InformationItem `json:"items"`
}

type Information struct {
	Envelope
	User   any               `json:"user"`
	Result InformationResult `json:"result"`
}

var informationFileSchema = validate.Object(
	req("uuid", str()),
	req("file_name", str()),
	req("mime_type", str()),
	req("is_thumb_exists", boolean()),
	req("created_by", str()),
	req("created_at", num()),
)

var informationSchema = envelope(unknown("user"), validate.Object(
	req("page_total", num()),
	req("page_size", num()),
	req("item_count", num()),
	req("items", validate.Array(validate.Object(
		req("uuid", str()),
		req("publish_from", str()),
		req("publish_from_en", nullStr()),
		req("publish_department_en", nullStr()),
		req("publish_start_at", num()),
		req("publish_end_at", num()),
		req("title", str()),
		req("title_en", nullStr()),
		req("content", str()),
		req("content_en", nullStr()),
		req("priority", num()),
		req("event_title", nullStr()),
		req("event_title_en", nullStr()),
		req("event_start_at", nullNum()),
		req("event_end_at", nullNum()),
		req("is_send_mail_notification", num()),
		req("mail_from", nullStr()),
		unknown("options"),
		req("created_by", str()),
		req("updated_by", nullStr()),
		req("created_at", num()),
		req("is_template", num()),
		req("is_public", boolean()),
		req("is_read", boolean()),
		req("is_pinned", boolean()),
		req("is_reacted_good", boolean()),
		req("good_count", num()),
		req("category", validate.Object(
			req("uuid", str()),
			req("name", str()),
			req("name_en", nullStr()),
			req("description", nullStr()),
			req("description_en", nullStr()),
			req("order", num()),
			req("is_for_guest", boolean()),
			req("created_by", str()),
			req("updated_by", nullStr()),
			req("created_at", num()),
			req("updated_at", num()),
		)),
		req("files", validate.Nullable(validate.Array(informationFileSchema))),
		req("personal_files", validate.Nullable(validate.Array(informationFileSchema))),
		req("images", validate.Nullable(validate.Array(informationFileSchema))),
	))),
))

// ParseInformation decodes the notice board listing.
func ParseInformation(input string) (Information, error) {
	return parse[Information](informationSchema, input)
}

type PersonalAuthProfile struct {
	Uuid      string   `json:"uuid"`
	Name      string   `json:"name"`
	CreatedAt float64  `json:"created_at"`
	UpdatedAt *float64 `json:"updated_at"`
}

type PersonalGroup struct {
	GroupIndex      string  `json:"group_index"`
	NextGroupIndex  string  `json:"next_group_index"`
	OrigGroupIndex  string  `json:"orig_group_index"`
	Uuid            string  `json:"uuid"`
	Name            string  `json:"name"`
	NameEn          *string `json:"name_en"`
	IsAuthority     bool    `json:"is_authority"`
	Order           float64 `json:"order"`
	IsActive        float64 `json:"is_active"`
	IsShownInSignup float64 `json:"is_shown_in_signup"`
	CreatedAt       float64 `json:"created_at"`
	UpdatedAt       float64 `json:"updated_at"`
	FullName        string  `json:"full_name"`
	DisplayName     string  `json:"display_name"`
	DisplayNameEn   string  `json:"display_name_en"`
}

type PersonalUser struct {
	Uuid                        string              `json:"uuid"`
	PersonalId                  string              `json:"personal_id"`
	Name                        string              `json:"name"`
	NameKana                    string              `json:"name_kana"`
	NameAlphabet                string              `json:"name_alphabet"`
	Email                       string              `json:"email"`
	Locale                      string              `json:"locale"`
	Option1                     *string             `json:"option_1"`
	Option2                     *string             `json:"option_2"`
	Option3                     *string             `json:"option_3"`
	Option4                     *string             `json:"option_4"`
	Option5                     *string             `json:"option_5"`
	Option6                     *string             `json:"option_6"`
	Option7                     *string             `json:"option_7"`
	Option8                     *string             `json:"option_8"`
	Option9                     *string             `json:"option_9"`
	Option10                    *string             `json:"option_10"`
	ApprovalStatus              *string             `json:"approval_status"`
	IsUserEnabled               bool                `json:"is_user_enabled"`
	IsLoginEnabled              bool                `json:"is_login_enabled"`
	IsGuest                     bool                `json:"is_guest"`
	StartAt                     float64             `json:"start_at"`
	EndAt                       float64             `json:"end_at"`
	Memo                        *string             `json:"memo"`
	AdminMemo                   *string             `json:"admin_memo"`
	IsNotDeleteCsv              bool                `json:"is_not_delete_csv"`
	CreatedAt                   float64             `json:"created_at"`
	UpdatedAt                   float64             `json:"updated_at"`
	UserId                      string              `json:"user_id"`
	AuthProfiles                PersonalAuthProfile `json:"auth_profiles"`
	Groups                      []PersonalGroup     `json:"groups"`
	HasAnswerForceQuestionnaire bool                `json:"has_answer_force_questionnaire"`
	HasForceQuestionnaire       bool                `json:"has_force_questionnaire"`
	SubEmailAddresses           []string            `json:"sub_email_addresses"`
	DisplayGroupNames           []string            `json:"display_group_names"`
	DisplayGroupNamesEn         []string            `json:"display_group_names_en"`
	Portrait                    *string             `json:"portrait"`
	Permission                  string              `json:"permission"`
	PermissionUnit              []any               `json:"permission_unit"`
	HasLocalAuth                bool                `json:"has_local_auth"`
	AffiliatedGroups            any                 `json:"affiliated_groups"`
}

type PersonalResult struct {
	Login        string  `json:"login"`
	Message      string  `json:"message"`
	LoginMessage *string `json:"login_message"`
}

type Personal struct {
	Envelope
	User   PersonalUser   `json:"user"`
	Result PersonalResult `json:"result"`
}

func personalUserSchema() *openapi3.Schema {
	fields := []validate.Field{
		req("uuid", str()),
		req("personal_id", str()),
		req("name", str()),
		req("name_kana", str()),
		req("name_alphabet", str()),
		req("email", str()),
		req("locale", str()),
	}
	for _, option := range []string{
		"option_1", "option_2", "option_3", "option_4", "option_5",
		"option_6", "option_7", "option_8", "option_9", "option_10",
	} {
		fields = append(fields, req(option, nullStr()))
	}
	fields = append(fields,
		req("approval_status", nullStr()),
		req("is_user_enabled", boolean()),
		req("is_login_enabled", boolean()),
		req("is_guest", boolean()),
		req("start_at", num()),
		req("end_at", num()),
		req("memo", nullStr()),
		req("admin_memo", nullStr()),
		req("is_not_delete_csv", boolean()),
		req("created_at", num()),
		req("updated_at", num()),
		req("user_id", str()),
		req("auth_profiles", validate.Object(
			req("uuid", str()),
			req("name", str()),
			req("created_at", num()),
			req("updated_at", nullNum()),
		)),
		req("groups", validate.Array(validate.Object(
			req("group_index", str()),
			req("next_group_index", str()),
			req("orig_group_index", str()),
			req("uuid", str()),
			req("name", str()),
			req("name_en", nullStr()),
			req("is_authority", boolean()),
			req("order", num()),
			req("is_active", num()),
			req("is_shown_in_signup", num()),
			req("created_at", num()),
			req("updated_at", num()),
			req("full_name", str()),
			req("display_name", str()),
			req("display_name_en", str()),
		))),
		req("has_answer_force_questionnaire", boolean()),
		req("has_force_questionnaire", boolean()),
		req("sub_email_addresses", validate.Array(str())),
		req("display_group_names", validate.Array(str())),
		req("display_group_names_en", validate.Array(str())),
		req("portrait", nullStr()),
		req("permission", str()),
		req("permission_unit", unknownList()),
		req("has_local_auth", boolean()),
		unknown("affiliated_groups"),
	)
	return validate.Object(fields...)
}

var personalSchema = envelope(req("user", personalUserSchema()), validate.Object(
	req("login", str()),
	req("message", str()),
	req("login_message", nullStr()),
))

// ParsePersonal decodes the signed in user's profile.
func ParsePersonal(input string) (Personal, error) {
	return parse[Personal](personalSchema, input)
}
