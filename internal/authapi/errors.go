package authapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// Error is a non-2xx provider response. Msg is surfaced to users verbatim.
type Error struct {
	Status    int    `json:"-"`
	Code      int    `json:"code"`
	ErrorCode string `json:"error_code"`
	Msg       string `json:"msg"`
}

func (e *Error) Error() string {
	return e.Msg
}

type errorPayload struct {
	Code             int    `json:"code"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Err              string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// decodeError builds an *Error from a failed response body. fallback prefixes
// the status text when the body carries no message.
func decodeError(resp *http.Response, body []byte, fallback string) *Error {
	e := &Error{Status: resp.StatusCode, Code: resp.StatusCode}

	var p errorPayload
	if len(body) > 0 && json.Unmarshal(body, &p) == nil {
		if p.Code != 0 {
			e.Code = p.Code
		}
		e.ErrorCode = p.ErrorCode
		if e.ErrorCode == "" {
			e.ErrorCode = p.Err
		}
		switch {
		case p.Msg != "":
			e.Msg = p.Msg
		case p.ErrorDescription != "":
			e.Msg = p.ErrorDescription
		case p.Message != "":
			e.Msg = p.Message
		}
	}
	if e.Msg == "" {
		e.Msg = fallback + ": " + statusText(resp)
	}
	return e
}
