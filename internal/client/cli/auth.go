package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/farmclub/internal/auth"
	"github.com/dmitrijs2005/farmclub/internal/common"
)

// Swapped in tests.
var (
	readLine   = ReadLine
	readSecret = ReadSecret
)

var errPasswordMismatch = errors.New("passwords do not match")

func (a *App) prompt(text string) (string, error) {
	return readLine(a.reader, text, a.out)
}

func (a *App) password(prompt string) (string, error) {
	pw, err := readSecret(a.out, prompt)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

// Register prompts for the account fields and signs the user up.
//
// Validation and store failures are shown as the session error message and
// returned.
func (a *App) Register(ctx context.Context) error {
	a.session.ClearError()
	email, err := a.prompt("Email")
	if err != nil {
		return err
	}
	displayName, err := a.prompt("Display name")
	if err != nil {
		return err
	}
	roleText, err := a.prompt("Role (farmer|admin) [farmer]")
	if err != nil {
		return err
	}
	password, err := a.password("Password")
	if err != nil {
		return err
	}
	again, err := a.password("Repeat password")
	if err != nil {
		return err
	}
	if again != password {
		fmt.Fprintln(a.out, "Passwords do not match.")
		return errPasswordMismatch
	}

	role, err := auth.ParseRole(roleText)
	if err != nil {
		fmt.Fprintln(a.out, auth.Message(err))
		return err
	}

	if err := a.session.Signup(ctx, email, password, displayName, role); err != nil {
		a.showError(err)
		return err
	}

	fmt.Fprintln(a.out, "Account created. Welcome to Farm Club!")
	a.resume(ctx)
	return nil
}

// Login prompts for credentials and signs in. A page the guard redirected
// away from is opened afterwards.
func (a *App) Login(ctx context.Context) error {
	a.session.ClearError()
	email, err := a.prompt("Email")
	if err != nil {
		return err
	}
	password, err := a.password("Password")
	if err != nil {
		return err
	}

	if err := a.session.Login(ctx, email, password); err != nil {
		a.showError(err)
		return err
	}

	s := a.session.Snapshot()
	fmt.Fprintf(a.out, "Signed in as %s\n", displayName(s.Identity))
	a.resume(ctx)
	return nil
}

// Logout signs out. It never fails from the user's point of view.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}
	if err := a.session.Logout(ctx); err != nil {
		a.showError(err)
		return err
	}
	a.setReturnPath("")
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

// WhoAmI prints the current session.
func (a *App) WhoAmI(ctx context.Context) error {
	writeSession(a.out, a.session.Snapshot())
	return nil
}

func (a *App) showError(err error) {
	msg := a.session.Snapshot().Error
	if msg == "" {
		msg = auth.Message(err)
	}
	fmt.Fprintln(a.out, msg)
}

func (a *App) resume(ctx context.Context) {
	if p := a.takeReturnPath(); p != "" {
		_ = a.Open(ctx, p)
	}
}

func displayName(id *auth.Identity) string {
	if id == nil {
		return ""
	}
	if id.DisplayName != "" {
		return fmt.Sprintf("%s <%s>", id.DisplayName, id.Email)
	}
	return id.Email
}
