package httpclient

import (
	"io"
	"net/http"
)

// DoGET fetches a single object and its current etag.
func (c *httpClientWrapper) DoGET(urlStr string) (body string, etag string, err error) {
	c.logger.Debug("starting GET request", "url", urlStr)

	resolvedURL, err := c.resolveURL(urlStr)
	if err != nil {
		return "", "", err
	}

	req, err := http.NewRequest(http.MethodGet, resolvedURL.String(), nil)
	if err != nil {
		return "", "", err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "error", err)
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("unexpected response status", "status", resp.Status)
		return "", "", &StatusError{Method: http.MethodGet, URL: urlStr, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}

	etag = resp.Header.Get("ETag")
	c.logger.Debug("GET request complete", "etag", etag, "body_length", len(data))
	return string(data), etag, nil
}
