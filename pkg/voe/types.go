package voe

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Response is the JSON envelope the service wraps every payload in. Result is
// left undecoded; the client never interprets result shapes beyond the upload
// server lookup. Raw always holds the exact bytes the service sent, even when
// they are not a JSON object.
type Response struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`

	Raw []byte `json:"-"`
}

// DecodeResult unmarshals the envelope's result payload into v.
func (r *Response) DecodeResult(v any) error {
	if r == nil || len(r.Result) == 0 {
		return fmt.Errorf("response carries no result payload")
	}
	if err := json.Unmarshal(r.Result, v); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

// ListFilesOptions narrows ListFiles output. Zero-valued fields are omitted
// from the query entirely.
type ListFilesOptions struct {
	Page     int
	PerPage  int
	FolderID *int64
	Created  string
	Name     string
}

func (o ListFilesOptions) queryParams() map[string]string {
	params := make(map[string]string)
	if o.Page > 0 {
		params["page"] = strconv.Itoa(o.Page)
	}
	if o.PerPage > 0 {
		params["per_page"] = strconv.Itoa(o.PerPage)
	}
	if o.FolderID != nil {
		params["fld_id"] = strconv.FormatInt(*o.FolderID, 10)
	}
	if o.Created != "" {
		params["created"] = o.Created
	}
	if o.Name != "" {
		params["name"] = o.Name
	}
	return params
}
