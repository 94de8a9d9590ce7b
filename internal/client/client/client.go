package client

import "context"

// Profile is the caller's identity as the server sees it.
type Profile struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// LogoUpload is a presigned destination for a logo PUT.
type LogoUpload struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type Client interface {
	Register(ctx context.Context, login string, password []byte) (string, error)
	Login(ctx context.Context, login string, password []byte) (string, error)
	Me(ctx context.Context, token string) (*Profile, error)
	PresignLogo(ctx context.Context, token, contentType string) (*LogoUpload, error)
	Listen(ctx context.Context, onReady func(localAddr string), onMessage func(msg string)) error
}
