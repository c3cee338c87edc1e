// Reader is a client of the http reporter, used by tests and the
// claimant command line tool.

package reporter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

type HttpReader struct {
	serverIP   string // listen ip
	serverPort string // listen port
	client     *http.Client
}

func NewHttpReader(serverIP string, serverPort string) *HttpReader {
	return &HttpReader{
		serverIP:   serverIP,
		serverPort: serverPort,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// StatusError carries the status and error message of a non-200 reply.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

func (hr *HttpReader) url(route string, query url.Values) string {
	u := "http://" + hr.serverIP + ":" + hr.serverPort + route
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (hr *HttpReader) GetHello() (string, error) {
	resp, err := hr.client.Get(hr.url(ROUTE_HELLO, nil))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	// Read the response body
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

func (hr *HttpReader) GetMessage(accountHex string) (*JSONMessage, error) {
	var out JSONMessage
	if err := hr.get(ROUTE_MESSAGE, url.Values{"account": {accountHex}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (hr *HttpReader) GetClaim(addressHex string) (*JSONClaim, error) {
	var out JSONClaim
	if err := hr.get(ROUTE_CLAIM, url.Values{"address": {addressHex}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (hr *HttpReader) GetTotal() (string, error) {
	var out JSONTotal
	if err := hr.get(ROUTE_TOTAL, nil, &out); err != nil {
		return "", err
	}
	return out.Total, nil
}

func (hr *HttpReader) GetClaimedByAddress(addressHex string) ([]JSONClaimedRecord, error) {
	var out struct {
		Data []JSONClaimedRecord `json:"data"`
	}
	if err := hr.get(ROUTE_CLAIMED, url.Values{"address": {addressHex}}, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (hr *HttpReader) PostClaim(accountHex, signatureHex string) (*JSONClaimed, error) {
	body, err := json.Marshal(JSONClaimRequest{Account: accountHex, Signature: signatureHex})
	if err != nil {
		return nil, err
	}

	resp, err := hr.client.Post(hr.url(ROUTE_CLAIM, nil), "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out JSONClaimed
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (hr *HttpReader) get(route string, query url.Values, out interface{}) error {
	resp, err := hr.client.Get(hr.url(route, query))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decode(resp, out)
}

func decode(resp *http.Response, out interface{}) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		var e JSONError
		if err := json.Unmarshal(body, &e); err != nil || e.Error == "" {
			e.Error = string(body)
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	return json.Unmarshal(body, out)
}
