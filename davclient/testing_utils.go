package davclient

import (
	"davsync/internal/httpclient"
)

// Mock types for testing
type mockHTTPClient struct {
	propfindResponse *httpclient.PropfindResponse
	propfindErr      error
	reportResponse   *httpclient.ReportResponse
	reportErr        error
	getBody          string
	getEtag          string
	getErr           error
	putEtag          string
	putErr           error
	deleteErr        error

	doPropfind func(url string, depth int, props ...string) (*httpclient.PropfindResponse, error)

	putURL          string
	putContentType  string
	putData         []byte
	putPrecondition httpclient.Precondition
	deleteURL       string
	deleteEtag      string
}

func (m *mockHTTPClient) DoPROPFIND(url string, depth int, props ...string) (*httpclient.PropfindResponse, error) {
	if m.doPropfind != nil {
		return m.doPropfind(url, depth, props...)
	}
	return m.propfindResponse, m.propfindErr
}

func (m *mockHTTPClient) DoREPORT(url string, depth int, query interface{}) (*httpclient.ReportResponse, error) {
	return m.reportResponse, m.reportErr
}

func (m *mockHTTPClient) DoGET(url string) (string, string, error) {
	return m.getBody, m.getEtag, m.getErr
}

func (m *mockHTTPClient) DoPUT(url string, contentType string, data []byte, precondition httpclient.Precondition) (string, error) {
	m.putURL = url
	m.putContentType = contentType
	m.putData = data
	m.putPrecondition = precondition
	return m.putEtag, m.putErr
}

func (m *mockHTTPClient) DoDELETE(url string, etag string) error {
	m.deleteURL = url
	m.deleteEtag = etag
	return m.deleteErr
}
