package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/skykeeper/internal/common"
)

// xrpcError is the error body returned by XRPC endpoints.
type xrpcError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// describeBody renders an error response body for messages. XRPC bodies are
// reduced to "Name: message", anything else is passed through trimmed.
func describeBody(body []byte) string {
	var xe xrpcError
	if err := json.Unmarshal(body, &xe); err == nil && (xe.Error != "" || xe.Message != "") {
		switch {
		case xe.Error == "":
			return xe.Message
		case xe.Message == "":
			return xe.Error
		default:
			return xe.Error + ": " + xe.Message
		}
	}
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "Unknown error"
	}
	return s
}

func statusError(kind error, status int, msg string) error {
	return &common.Error{Kind: kind, Status: status, Msg: msg}
}

func createSessionError(status int, body []byte) error {
	switch {
	case status == http.StatusUnauthorized:
		return statusError(common.ErrInvalidCredentials, status, "Invalid handle or password")
	case status >= 500:
		return statusError(common.ErrServer, status,
			fmt.Sprintf("Server error (%d %s): %s", status, http.StatusText(status), describeBody(body)))
	default:
		return statusError(common.ErrUnknown, status,
			fmt.Sprintf("HTTP %d %s error: %s", status, http.StatusText(status), describeBody(body)))
	}
}

func refreshSessionError(status int, body []byte) error {
	if status == http.StatusUnauthorized {
		return statusError(common.ErrTokenExpired, status, "refresh token rejected")
	}
	return statusError(common.ErrServer, status,
		fmt.Sprintf("Refresh failed with status %d: %s", status, describeBody(body)))
}

func transportError(err error) error {
	var te interface{ Timeout() bool }
	if errors.As(err, &te) && te.Timeout() {
		return common.NewError(common.ErrNetwork, "Request timeout", err)
	}
	return common.NewError(common.ErrNetwork, "Request failed", err)
}
