package voe

import "context"

// ClientAPI enumerates the operations Client exposes so callers can inject
// fakes.
type ClientAPI interface {
	GetAccountInfo(ctx context.Context) (*Response, error)
	GetAccountStats(ctx context.Context) (*Response, error)
	GetUploadServer(ctx context.Context) (string, error)
	UploadFile(ctx context.Context, serverURL, fileName string, data []byte) (*Response, error)
	RemoteUpload(ctx context.Context, sourceURL string) (*Response, error)
	ListRemoteUploads(ctx context.Context, id *int64) (*Response, error)
	CloneFile(ctx context.Context, fileCode string, folderID int64) (*Response, error)
	GetFileInfo(ctx context.Context, fileCodes string) (*Response, error)
	ListFiles(ctx context.Context, opts ListFilesOptions) (*Response, error)
	RenameFile(ctx context.Context, fileCode, title string) (*Response, error)
	MoveFile(ctx context.Context, fileCode string, folderID int64) (*Response, error)
	DeleteFile(ctx context.Context, fileCode string) (*Response, error)
}

var _ ClientAPI = (*Client)(nil)
