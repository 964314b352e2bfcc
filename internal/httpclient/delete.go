package httpclient

import (
	"net/http"
)

// DoDELETE removes an object, demanding the given etag when non-empty.
func (c *httpClientWrapper) DoDELETE(urlStr string, etag string) error {
	c.logger.Debug("starting DELETE request", "url", urlStr, "etag", etag)

	resolvedURL, err := c.resolveURL(urlStr)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodDelete, resolvedURL.String(), nil)
	if err != nil {
		return err
	}
	if etag != "" {
		req.Header.Set("If-Match", etag)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "error", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		c.logger.Debug("unexpected response status", "status", resp.Status)
		return &StatusError{Method: http.MethodDelete, URL: urlStr, StatusCode: resp.StatusCode}
	}

	c.logger.Debug("DELETE request complete", "status", resp.Status)
	return nil
}
