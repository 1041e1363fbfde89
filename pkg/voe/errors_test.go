package voe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name         string
		resp         *ErrorResponse
		err          error
		wantCode     ErrorCode
		wantMessage  string
		wantResponse bool
	}{
		{
			name: "api error with upstream message",
			resp: &ErrorResponse{
				StatusCode: http.StatusUnprocessableEntity,
				Status:     "422 Unprocessable Entity",
				Body:       []byte(`{"message":"invalid file code"}`),
			},
			wantCode:     ErrCodeAPI,
			wantMessage:  "invalid file code",
			wantResponse: true,
		},
		{
			name: "api error without message field",
			resp: &ErrorResponse{
				StatusCode: http.StatusInternalServerError,
				Status:     "500 Internal Server Error",
				Body:       []byte(`{"success":false}`),
			},
			wantCode:     ErrCodeAPI,
			wantMessage:  apiFailureMessage,
			wantResponse: true,
		},
		{
			name: "api error with empty body",
			resp: &ErrorResponse{
				StatusCode: http.StatusServiceUnavailable,
				Status:     "503 Service Unavailable",
			},
			wantCode:     ErrCodeAPI,
			wantMessage:  apiFailureMessage,
			wantResponse: true,
		},
		{
			name: "api error with non-json body",
			resp: &ErrorResponse{
				StatusCode: http.StatusBadGateway,
				Status:     "502 Bad Gateway",
				Body:       []byte("<html>gateway</html>"),
			},
			wantCode:     ErrCodeAPI,
			wantMessage:  apiFailureMessage,
			wantResponse: true,
		},
		{
			name:        "transport failure after send",
			err:         &url.Error{Op: "Get", URL: "http://voe.sx/api/account/info", Err: errors.New("connection refused")},
			wantCode:    ErrCodeNetwork,
			wantMessage: noResponseMessage,
		},
		{
			name:        "wrapped transport failure",
			err:         fmt.Errorf("do request: %w", &url.Error{Op: "Post", URL: "http://up.example/x", Err: errors.New("broken pipe")}),
			wantCode:    ErrCodeNetwork,
			wantMessage: noResponseMessage,
		},
		{
			name:        "deadline exceeded",
			err:         context.DeadlineExceeded,
			wantCode:    ErrCodeNetwork,
			wantMessage: noResponseMessage,
		},
		{
			name:     "url parse failure never left the client",
			err:      &url.Error{Op: "parse", URL: "http://[::1]:namedport", Err: errors.New("invalid port")},
			wantCode: ErrCodeRequest,
		},
		{
			name:        "plain construction failure",
			err:         errors.New("boom"),
			wantCode:    ErrCodeRequest,
			wantMessage: "boom",
		},
		{
			name:        "no cause at all",
			wantCode:    ErrCodeRequest,
			wantMessage: badRequestMessage,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clientErr := classify(tc.resp, tc.err)
			if clientErr == nil {
				t.Fatalf("classify returned nil")
			}
			if clientErr.Code != tc.wantCode {
				t.Fatalf("code = %s, want %s", clientErr.Code, tc.wantCode)
			}
			if tc.wantMessage != "" && clientErr.Message != tc.wantMessage {
				t.Fatalf("message = %q, want %q", clientErr.Message, tc.wantMessage)
			}
			if tc.wantResponse != (clientErr.Response != nil) {
				t.Fatalf("response attached = %v, want %v", clientErr.Response != nil, tc.wantResponse)
			}
			if tc.wantResponse && clientErr.Response.StatusCode != tc.resp.StatusCode {
				t.Fatalf("attached status = %d, want %d", clientErr.Response.StatusCode, tc.resp.StatusCode)
			}
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	withResp := &Error{
		Code:    ErrCodeAPI,
		Message: "invalid file code",
		Response: &ErrorResponse{
			StatusCode: http.StatusUnprocessableEntity,
			Status:     "422 Unprocessable Entity",
		},
	}
	if got := withResp.Error(); got != "API_ERROR: invalid file code (status 422)" {
		t.Fatalf("Error() = %q", got)
	}

	withoutResp := &Error{Code: ErrCodeNetwork, Message: noResponseMessage}
	if got := withoutResp.Error(); got != "NETWORK_ERROR: "+noResponseMessage {
		t.Fatalf("Error() = %q", got)
	}
}

func TestIsCodeSeesThroughWrapping(t *testing.T) {
	cause := classify(nil, errors.New("boom"))
	wrapped := fmt.Errorf("upload step: %w", cause)

	if !IsCode(wrapped, ErrCodeRequest) {
		t.Fatalf("IsCode should match through wrapping")
	}
	if IsCode(wrapped, ErrCodeNetwork) {
		t.Fatalf("IsCode matched the wrong classification")
	}
	if IsCode(errors.New("plain"), ErrCodeRequest) {
		t.Fatalf("IsCode matched a plain error")
	}
}

func TestErrorUnwrapKeepsCause(t *testing.T) {
	cause := &url.Error{Op: "Get", URL: "http://voe.sx", Err: errors.New("reset")}
	clientErr := classify(nil, cause)

	if !errors.Is(clientErr, cause) {
		t.Fatalf("cause lost in classification")
	}
	if !strings.Contains(clientErr.Error(), string(ErrCodeNetwork)) {
		t.Fatalf("Error() = %q, want code prefix", clientErr.Error())
	}
}
