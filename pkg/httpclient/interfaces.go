package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Status() string
}

// Client abstracts the upload transport so callers can inject mocks or
// different transports.
type Client interface {
	PostMultipart(ctx context.Context, url string, fields map[string]string, fileField, fileName string, file []byte) (Response, error)
}
