package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/jobhub/internal/common"
)

type credentialsFunc func(ctx context.Context, login string, password []byte) (string, error)

// Register prompts for a login and password, creates the account and keeps
// the returned token for the rest of the session.
func (a *App) Register(ctx context.Context) error {
	return a.authenticate(ctx, a.api.Register, "Registered")
}

// Login prompts for credentials and keeps the returned token for the rest of
// the session.
func (a *App) Login(ctx context.Context) error {
	return a.authenticate(ctx, a.api.Login, "Logged in")
}

// Logout forgets the session token.
func (a *App) Logout(context.Context) error {
	a.token = ""
	a.userName = ""
	return nil
}

func (a *App) authenticate(ctx context.Context, call credentialsFunc, done string) error {
	userName, err := getSimpleText(a.reader, "Enter login", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	token, err := call(ctx, userName, password)
	if err != nil {
		fmt.Fprintf(a.out, "Failed: %s\n", err.Error())
		return err
	}

	a.userName = userName
	a.token = token
	fmt.Fprintf(a.out, "%s as %s\n", done, userName)
	return nil
}

// Me prints the identity the server resolves the session token to.
func (a *App) Me(ctx context.Context) error {
	p, err := a.api.Me(ctx, a.token)
	if err != nil {
		fmt.Fprintf(a.out, "Failed: %s\n", err.Error())
		return err
	}
	fmt.Fprintf(a.out, "id=%d login=%s\n", p.ID, p.Login)
	return nil
}
