package httpclient

import (
	"bytes"
	"net/http"
)

// DoPUT stores an object under the given URL. The precondition decides
// whether the write demands absence (create) or an exact etag match
// (update); a 412 response surfaces as a StatusError the caller can
// classify with IsPreconditionFailed.
func (c *httpClientWrapper) DoPUT(urlStr string, contentType string, data []byte, precondition Precondition) (newEtag string, err error) {
	c.logger.Debug("starting PUT request",
		"url", urlStr,
		"content_type", contentType,
		"data_length", len(data))

	resolvedURL, err := c.resolveURL(urlStr)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPut, resolvedURL.String(), bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	precondition.apply(req.Header)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "error", err)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		c.logger.Debug("unexpected response status", "status", resp.Status)
		return "", &StatusError{Method: http.MethodPut, URL: urlStr, StatusCode: resp.StatusCode}
	}

	newEtag = resp.Header.Get("ETag")
	c.logger.Debug("PUT request complete", "status", resp.Status, "new_etag", newEtag)
	return newEtag, nil
}
