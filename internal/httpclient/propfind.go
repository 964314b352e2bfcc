package httpclient

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/beevik/etree"
)

// PropfindResponse maps each responded href to its decoded properties.
type PropfindResponse struct {
	Resources map[string]ResourceProps
}

// ResourceProps carries the subset of WebDAV properties the sync core reads.
type ResourceProps struct {
	IsCollection bool
	DisplayName  string
	CTag         string
	Etag         string
}

// Property names accepted by DoPROPFIND.
const (
	PropResourceType = "resourcetype"
	PropDisplayName  = "displayname"
	PropGetCTag      = "getctag"
	PropGetETag      = "getetag"
)

var propfindNamespaces = map[string]string{
	"d":  "DAV:",
	"cs": "http://calendarserver.org/ns/",
}

var propfindPrefixes = map[string]string{
	PropResourceType: "d",
	PropDisplayName:  "d",
	PropGetCTag:      "cs",
	PropGetETag:      "d",
}

// DoPROPFIND requests the named properties at the given depth and decodes
// the multistatus response.
func (c *httpClientWrapper) DoPROPFIND(urlStr string, depth int, props ...string) (*PropfindResponse, error) {
	c.logger.Debug("starting PROPFIND request",
		"url", urlStr,
		"depth", depth,
		"properties", props)

	body, err := buildPropfindXML(props...)
	if err != nil {
		return nil, fmt.Errorf("failed to build PROPFIND body: %w", err)
	}

	resolvedURL, err := c.resolveURL(urlStr)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("PROPFIND", resolvedURL.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Depth", fmt.Sprintf("%d", depth))
	req.Header.Set("Content-Type", "application/xml; charset=utf-8")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMultiStatus {
		c.logger.Debug("unexpected response status", "status", resp.Status)
		return nil, &StatusError{Method: "PROPFIND", URL: urlStr, StatusCode: resp.StatusCode}
	}

	result, err := parseMultistatus(resp)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("PROPFIND request complete", "resource_count", len(result.Resources))
	return result, nil
}

// buildPropfindXML constructs the request body for the named properties.
func buildPropfindXML(props ...string) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	propfind := doc.CreateElement("d:propfind")
	for prefix, ns := range propfindNamespaces {
		propfind.CreateAttr("xmlns:"+prefix, ns)
	}

	prop := propfind.CreateElement("d:prop")
	for _, name := range props {
		prefix, ok := propfindPrefixes[name]
		if !ok {
			return nil, fmt.Errorf("unsupported PROPFIND property %q", name)
		}
		prop.CreateElement(prefix + ":" + name)
	}

	return doc.WriteToBytes()
}

// parseMultistatus walks the multistatus tree by local element name, so the
// namespace prefixes various servers pick do not matter.
func parseMultistatus(resp *http.Response) (*PropfindResponse, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to parse multistatus response: %w", err)
	}

	result := &PropfindResponse{Resources: make(map[string]ResourceProps)}

	for _, response := range doc.FindElements("//response") {
		hrefElem := response.FindElement("href")
		if hrefElem == nil {
			continue
		}
		href := strings.TrimSpace(hrefElem.Text())

		var props ResourceProps
		for _, propstat := range response.FindElements("propstat") {
			status := propstat.FindElement("status")
			if status == nil || !strings.Contains(status.Text(), "200") {
				continue
			}
			prop := propstat.FindElement("prop")
			if prop == nil {
				continue
			}

			if e := prop.FindElement(PropDisplayName); e != nil {
				props.DisplayName = strings.TrimSpace(e.Text())
			}
			if e := prop.FindElement(PropGetCTag); e != nil {
				props.CTag = strings.TrimSpace(e.Text())
			}
			if e := prop.FindElement(PropGetETag); e != nil {
				props.Etag = strings.TrimSpace(e.Text())
			}
			if e := prop.FindElement(PropResourceType); e != nil {
				props.IsCollection = e.FindElement("collection") != nil ||
					e.FindElement("calendar") != nil ||
					e.FindElement("addressbook") != nil
			}
		}

		result.Resources[href] = props
	}

	return result, nil
}
