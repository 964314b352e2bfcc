package davclient

import "encoding/xml"

// REPORT request bodies. The prop element asks for the raw object text plus
// the etag; the calendar filter narrows to VEVENT components.

type queryProp struct {
	GetETag      *struct{} `xml:"DAV: getetag,omitempty"`
	CalendarData *struct{} `xml:"urn:ietf:params:xml:ns:caldav calendar-data,omitempty"`
	AddressData  *struct{} `xml:"urn:ietf:params:xml:ns:carddav address-data,omitempty"`
}

type calendarQuery struct {
	XMLName xml.Name  `xml:"urn:ietf:params:xml:ns:caldav calendar-query"`
	Prop    queryProp `xml:"DAV: prop"`
	Filter  calFilter `xml:"urn:ietf:params:xml:ns:caldav filter"`
}

type calFilter struct {
	CompFilter compFilter `xml:"urn:ietf:params:xml:ns:caldav comp-filter"`
}

type compFilter struct {
	Name       string      `xml:"name,attr"`
	CompFilter *compFilter `xml:"urn:ietf:params:xml:ns:caldav comp-filter,omitempty"`
}

func newCalendarQuery() *calendarQuery {
	return &calendarQuery{
		Prop: queryProp{
			GetETag:      &struct{}{},
			CalendarData: &struct{}{},
		},
		Filter: calFilter{
			CompFilter: compFilter{
				Name:       "VCALENDAR",
				CompFilter: &compFilter{Name: "VEVENT"},
			},
		},
	}
}

type addressbookQuery struct {
	XMLName xml.Name  `xml:"urn:ietf:params:xml:ns:carddav addressbook-query"`
	Prop    queryProp `xml:"DAV: prop"`
}

func newAddressbookQuery() *addressbookQuery {
	return &addressbookQuery{
		Prop: queryProp{
			GetETag:     &struct{}{},
			AddressData: &struct{}{},
		},
	}
}
