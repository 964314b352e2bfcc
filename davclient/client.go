// Package davclient is the remote scheduling-protocol client: collection
// change tokens, bulk and single object fetch, and precondition-guarded
// writes. It deals exclusively in raw object text; parsing into typed
// records happens above it.
package davclient

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"davsync/internal/httpclient"
)

// RawObject is one stored object as the server returned it.
type RawObject struct {
	URL  string
	ETag string
	Data string
}

// Client provides access to one kind of remote collection (calendars or
// address books).
type Client interface {
	// CollectionCTag returns the collection's current change token.
	CollectionCTag(collectionURL string) (string, error)
	// FetchObjects returns every object in the collection.
	FetchObjects(collectionURL string) ([]RawObject, error)
	// GetObject fetches one object with a fresh etag.
	GetObject(objectURL string) (RawObject, error)
	// ObjectETag fetches only the object's current etag.
	ObjectETag(objectURL string) (string, error)
	// CreateObject stores data under a fresh name inside the collection,
	// demanding that the target does not exist yet.
	CreateObject(collectionURL string, data string) (objectURL, etag string, err error)
	// UpdateObject overwrites an object, demanding an exact etag match.
	UpdateObject(objectURL, etag, data string) (newEtag string, err error)
	// DeleteObject removes an object, demanding an exact etag match.
	DeleteObject(objectURL, etag string) error
}

type davClient struct {
	httpClient  httpclient.HttpClientWrapper
	contentType string
	extension   string
	newQuery    func() interface{}
}

// NewCalendarClient creates a client for CalDAV event collections.
func NewCalendarClient(hc httpclient.HttpClientWrapper) Client {
	return &davClient{
		httpClient:  hc,
		contentType: "text/calendar; charset=utf-8",
		extension:   ".ics",
		newQuery:    func() interface{} { return newCalendarQuery() },
	}
}

// NewContactClient creates a client for CardDAV address books.
func NewContactClient(hc httpclient.HttpClientWrapper) Client {
	return &davClient{
		httpClient:  hc,
		contentType: "text/vcard; charset=utf-8",
		extension:   ".vcf",
		newQuery:    func() interface{} { return newAddressbookQuery() },
	}
}

// CollectionCTag reads the collection's change token via PROPFIND depth 0.
func (c *davClient) CollectionCTag(collectionURL string) (string, error) {
	resp, err := c.httpClient.DoPROPFIND(collectionURL, 0, httpclient.PropGetCTag, httpclient.PropResourceType)
	if err != nil {
		return "", fmt.Errorf("failed to get collection ctag: %w", err)
	}

	for _, props := range resp.Resources {
		if props.CTag != "" {
			return props.CTag, nil
		}
	}
	return "", fmt.Errorf("no ctag found at %s", collectionURL)
}

// FetchObjects pulls every object in the collection through a REPORT.
func (c *davClient) FetchObjects(collectionURL string) ([]RawObject, error) {
	resp, err := c.httpClient.DoREPORT(collectionURL, 1, c.newQuery())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch collection objects: %w", err)
	}

	var objects []RawObject
	for _, response := range resp.Responses {
		if response.PropStat.Status != "" && !statusOK(response.PropStat.Status) {
			continue
		}
		data := response.PropStat.Prop.CalendarData
		if data == "" {
			data = response.PropStat.Prop.AddressData
		}
		if data == "" {
			continue
		}
		objects = append(objects, RawObject{
			URL:  response.Href,
			ETag: response.PropStat.Prop.ETag,
			Data: data,
		})
	}
	return objects, nil
}

func (c *davClient) GetObject(objectURL string) (RawObject, error) {
	body, etag, err := c.httpClient.DoGET(objectURL)
	if err != nil {
		return RawObject{}, fmt.Errorf("failed to fetch object: %w", err)
	}
	if etag == "" {
		if etag, err = c.ObjectETag(objectURL); err != nil {
			return RawObject{}, err
		}
	}
	return RawObject{URL: objectURL, ETag: etag, Data: body}, nil
}

func (c *davClient) ObjectETag(objectURL string) (string, error) {
	resp, err := c.httpClient.DoPROPFIND(objectURL, 0, httpclient.PropGetETag)
	if err != nil {
		return "", fmt.Errorf("failed to get object etag: %w", err)
	}
	props, ok := resp.Resources[objectURL]
	if !ok || props.Etag == "" {
		// Some servers respond with a normalized href; fall back to the
		// single resource in the response.
		for _, p := range resp.Resources {
			if p.Etag != "" {
				return p.Etag, nil
			}
		}
		return "", fmt.Errorf("no etag found for %s", objectURL)
	}
	return props.Etag, nil
}

func (c *davClient) CreateObject(collectionURL string, data string) (string, string, error) {
	base, err := url.Parse(collectionURL)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse collection URL: %w", err)
	}
	ref, err := url.Parse(uuid.New().String() + c.extension)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse object URL: %w", err)
	}
	objectURL := base.ResolveReference(ref).String()

	etag, err := c.httpClient.DoPUT(objectURL, c.contentType, []byte(data), httpclient.IfNoneMatch())
	if err != nil {
		return "", "", fmt.Errorf("failed to create object: %w", err)
	}

	// Not every server returns an ETag header on PUT.
	if etag == "" {
		if etag, err = c.ObjectETag(objectURL); err != nil {
			return objectURL, "", fmt.Errorf("failed to get etag of created object: %w", err)
		}
	}
	return objectURL, etag, nil
}

func (c *davClient) UpdateObject(objectURL, etag, data string) (string, error) {
	newEtag, err := c.httpClient.DoPUT(objectURL, c.contentType, []byte(data), httpclient.IfMatch(etag))
	if err != nil {
		return "", fmt.Errorf("failed to update object: %w", err)
	}
	if newEtag == "" {
		if newEtag, err = c.ObjectETag(objectURL); err != nil {
			return "", fmt.Errorf("failed to get etag of updated object: %w", err)
		}
	}
	return newEtag, nil
}

func (c *davClient) DeleteObject(objectURL, etag string) error {
	if err := c.httpClient.DoDELETE(objectURL, etag); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func statusOK(status string) bool {
	return status == "HTTP/1.1 200 OK" || status == "HTTP/1.0 200 OK"
}
