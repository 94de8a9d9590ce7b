package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/dmitrijs2005/jobhub/internal/client/client"
)

type fakeAPI struct {
	regUser string
	regPass []byte
	regErr  error

	loginUser string
	loginPass []byte
	loginErr  error

	meToken string
	meErr   error

	logoToken string
	logoType  string
	logoURL   string
	logoErr   error

	listenAddr string
	listenMsgs []string
	listenErr  error
}

func (f *fakeAPI) Register(_ context.Context, login string, password []byte) (string, error) {
	f.regUser, f.regPass = login, append([]byte(nil), password...)
	if f.regErr != nil {
		return "", f.regErr
	}
	return "reg-token", nil
}

func (f *fakeAPI) Login(_ context.Context, login string, password []byte) (string, error) {
	f.loginUser, f.loginPass = login, append([]byte(nil), password...)
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return "login-token", nil
}

func (f *fakeAPI) Me(_ context.Context, token string) (*client.Profile, error) {
	f.meToken = token
	if f.meErr != nil {
		return nil, f.meErr
	}
	return &client.Profile{ID: 7, Login: "alice"}, nil
}

func (f *fakeAPI) PresignLogo(_ context.Context, token, contentType string) (*client.LogoUpload, error) {
	f.logoToken, f.logoType = token, contentType
	if f.logoErr != nil {
		return nil, f.logoErr
	}
	return &client.LogoUpload{Key: "logos/7/k", URL: f.logoURL}, nil
}

func (f *fakeAPI) Listen(_ context.Context, onReady func(string), onMessage func(string)) error {
	if f.listenErr != nil {
		return f.listenErr
	}
	onReady(f.listenAddr)
	for _, m := range f.listenMsgs {
		onMessage(m)
	}
	return nil
}

func newTestApp(api client.Client, input string) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	return &App{
		api:      api,
		uploader: http.DefaultClient,
		reader:   bufio.NewReader(strings.NewReader(input)),
		out:      &out,
	}, &out
}

func stubInputs(t *testing.T, username string, password []byte) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) { return username, nil }
	getPassword = func(_ io.Writer) ([]byte, error) { return password, nil }
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}
