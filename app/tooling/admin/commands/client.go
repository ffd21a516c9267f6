package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/civicledger/civicledger/business/web/errs"
	"github.com/go-resty/resty/v2"
)

// client talks to the node public API.
type client struct {
	rc *resty.Client
}

func newClient(baseURL string) *client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(30 * time.Second)

	return &client{rc: rc}
}

// call performs the request and decodes a successful response into dest.
// A response with no content leaves dest untouched and reports false.
func (c *client) call(method string, path string, body any, dest any) (bool, error) {
	req := c.rc.R()
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return false, fmt.Errorf("%s %s: %w", method, path, err)
	}

	switch {
	case resp.StatusCode() == http.StatusNoContent:
		return false, nil

	case resp.IsError():
		var er errs.Response
		if err := json.Unmarshal(resp.Body(), &er); err != nil || er.Error == "" {
			return false, fmt.Errorf("%s %s: %s", method, path, resp.Status())
		}
		if len(er.Fields) > 0 {
			return false, fmt.Errorf("%s: %v", er.Error, er.Fields)
		}
		return false, fmt.Errorf("%s", er.Error)
	}

	if dest != nil {
		if err := json.Unmarshal(resp.Body(), dest); err != nil {
			return false, fmt.Errorf("decoding response: %w", err)
		}
	}

	return true, nil
}
