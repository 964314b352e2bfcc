package httpclient

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/http"
)

// DoREPORT executes a CalDAV or CardDAV REPORT request. The query is any
// marshallable request body (calendar-query, addressbook-query).
func (c *httpClientWrapper) DoREPORT(urlStr string, depth int, query interface{}) (*ReportResponse, error) {
	c.logger.Debug("starting REPORT request",
		"url", urlStr,
		"depth", depth,
		"query_type", fmt.Sprintf("%T", query))

	queryXML, err := xml.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal REPORT query: %w", err)
	}

	resolvedURL, err := c.resolveURL(urlStr)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("REPORT", resolvedURL.String(), bytes.NewReader(queryXML))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml; charset=utf-8")
	req.Header.Set("Depth", fmt.Sprintf("%d", depth))

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMultiStatus {
		c.logger.Debug("unexpected response status", "status", resp.Status)
		return nil, &StatusError{Method: "REPORT", URL: urlStr, StatusCode: resp.StatusCode}
	}

	var multiStatus ReportResponse
	if err := xml.NewDecoder(resp.Body).Decode(&multiStatus); err != nil {
		return nil, fmt.Errorf("failed to decode REPORT response: %w", err)
	}

	c.logger.Debug("REPORT request complete", "response_count", len(multiStatus.Responses))
	return &multiStatus, nil
}

// ReportResponse represents a REPORT multistatus response. CalendarData and
// AddressData carry the raw object text; at most one is populated per
// response depending on the collection type.
type ReportResponse struct {
	XMLName   xml.Name `xml:"DAV: multistatus"`
	Responses []struct {
		Href     string `xml:"DAV: href"`
		PropStat struct {
			Prop struct {
				CalendarData string `xml:"urn:ietf:params:xml:ns:caldav calendar-data"`
				AddressData  string `xml:"urn:ietf:params:xml:ns:carddav address-data"`
				ETag         string `xml:"DAV: getetag"`
			} `xml:"DAV: prop"`
			Status string `xml:"DAV: status"`
		} `xml:"DAV: propstat"`
	} `xml:"DAV: response"`
}
