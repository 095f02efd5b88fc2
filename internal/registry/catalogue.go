package registry

import (
	"portalextract/internal/scrapers/albo"
	"portalextract/internal/scrapers/cubics"
	"portalextract/internal/scrapers/manabo"
	"portalextract/internal/telemetry"
)

const (
	PortalAlbo   = "albo"
	PortalCubics = "cubics"
	PortalManabo = "manabo"
)

// Catalogue is every page the scraper packages can extract.
func Catalogue() []Page {
	return []Page{
		{Portal: PortalAlbo, Name: "calendar", Input: JSON, Parse: Adapt(albo.ParseCalendar)},
		{Portal: PortalAlbo, Name: "information", Input: JSON, Parse: Adapt(albo.ParseInformation)},
		{Portal: PortalAlbo, Name: "personal", Input: JSON, Parse: Adapt(albo.ParsePersonal)},
		{Portal: PortalAlbo, Name: "timetable", Input: JSON, Parse: Adapt(albo.ParseTimetable)},

		{Portal: PortalCubics, Name: "timetable", Input: HTML, Parse: Adapt(cubics.ParseTimetable)},

		{Portal: PortalManabo, Name: "classDirectory", Input: HTML, Parse: Adapt(manabo.ParseClassDirectory)},
		{Portal: PortalManabo, Name: "classContent", Input: HTML, Parse: Adapt(manabo.ParseClassContent)},
		{Portal: PortalManabo, Name: "classContentItems", Input: HTML, Parse: Adapt(manabo.ParseClassContentItems)},
		{Portal: PortalManabo, Name: "classNotAttendContent", Input: HTML, Parse: Adapt(manabo.ParseClassNotAttendContent)},
		{Portal: PortalManabo, Name: "classEntry", Input: HTML, Parse: Adapt(manabo.ParseClassEntry)},
		{Portal: PortalManabo, Name: "classNews", Input: HTML, Parse: Adapt(manabo.ParseClassNews)},
		{Portal: PortalManabo, Name: "classSyllabus", Input: HTML, Parse: Adapt(manabo.ParseClassSyllabus)},
		{Portal: PortalManabo, Name: "classQuizResult", Input: HTML, Parse: Adapt(manabo.ParseClassQuizResult)},
		{Portal: PortalManabo, Name: "entryForm", Input: HTML, Parse: Adapt(manabo.ParseEntryForm)},
		{Portal: PortalManabo, Name: "entry", Input: JSON, Parse: Adapt(manabo.ParseEntryResponse)},
		{Portal: PortalManabo, Name: "mailReceivedList", Input: HTML, Parse: Adapt(manabo.ParseReceivedMail)},
		{Portal: PortalManabo, Name: "mailSentList", Input: HTML, Parse: Adapt(manabo.ParseSentMail)},
		{Portal: PortalManabo, Name: "mailView", Input: HTML, Parse: Adapt(manabo.ParseMailView)},
		{Portal: PortalManabo, Name: "mailSend", Input: HTML, Parse: Adapt(manabo.ParseMailSend)},
		{Portal: PortalManabo, Name: "mailMember", Input: HTML, Parse: Adapt(manabo.ParseMailMember)},
		{Portal: PortalManabo, Name: "news", Input: HTML, Parse: Adapt(manabo.ParseNews)},
		{Portal: PortalManabo, Name: "timetable", Input: HTML, Parse: Adapt(manabo.ParseTimetable)},
	}
}

// Default is a registry holding the whole catalogue.
func Default(tel telemetry.API, opts ...Option) *Registry {
	r := New(tel, opts...)
	for _, page := range Catalogue() {
		r.Register(page)
	}
	return r
}
