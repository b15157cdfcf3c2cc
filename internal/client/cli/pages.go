package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"

	"github.com/dmitrijs2005/farmclub/internal/client/guard"
	"github.com/dmitrijs2005/farmclub/internal/client/session"
)

// Open shows the page at p after consulting the route guard.
func (a *App) Open(ctx context.Context, p string) error {
	p = guard.Clean(p)
	s := a.session.Snapshot()

	d := guard.Route(s, p)
	switch d.Kind {
	case guard.ShowLoadingPlaceholder:
		fmt.Fprintln(a.out, "Loading...")
	case guard.RedirectToLogin:
		a.setReturnPath(d.ReturnPath)
		fmt.Fprintf(a.out, "Please log in to open %s.\n", d.ReturnPath)
	case guard.Forbidden:
		fmt.Fprintf(a.out, "You do not have access to %s.\n", p)
	case guard.ShowContent:
		writePage(a.out, s, p)
	}
	return nil
}

// UploadURL asks the identity service for a profile image upload URL.
func (a *App) UploadURL(ctx context.Context, args []string) error {
	if len(args) < 2 {
		fmt.Fprintln(a.out, "Usage: upload-url <file name> <content type>")
		return nil
	}
	if a.uploader == nil {
		fmt.Fprintln(a.out, "Image uploads need the remote strategy.")
		return errors.New("uploads not supported by this store")
	}
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please log in first.")
		return nil
	}

	url, err := a.uploader.ProfileImageUploadURL(ctx, args[0], args[1])
	if err != nil {
		fmt.Fprintln(a.out, "Could not get an upload URL:", err)
		return err
	}
	fmt.Fprintln(a.out, url)
	return nil
}

// UploadImage sends a local image file to the profile image bucket.
func (a *App) UploadImage(ctx context.Context, args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(a.out, "Usage: upload-image <path>")
		return nil
	}
	if a.uploader == nil {
		fmt.Fprintln(a.out, "Image uploads need the remote strategy.")
		return errors.New("uploads not supported by this store")
	}
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please log in first.")
		return nil
	}

	local := args[0]
	body, err := a.readFile(local)
	if err != nil {
		fmt.Fprintln(a.out, "Could not read file:", err)
		return err
	}
	contentType := mime.TypeByExtension(filepath.Ext(local))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := a.uploader.ProfileImageUploadURL(ctx, filepath.Base(local), contentType)
	if err != nil {
		fmt.Fprintln(a.out, "Could not get an upload URL:", err)
		return err
	}
	if err := a.putter.Put(ctx, url, contentType, body); err != nil {
		fmt.Fprintln(a.out, "Upload failed:", err)
		return err
	}
	fmt.Fprintf(a.out, "Uploaded %s (%d bytes).\n", filepath.Base(local), len(body))
	return nil
}

func writePage(w io.Writer, s session.Session, p string) {
	switch p {
	case "/":
		fmt.Fprintln(w, "Farm Club: fresh produce from local farms.")
	case "/dashboard":
		fmt.Fprintf(w, "Dashboard\nHello, %s.\n", displayName(s.Identity))
		if s.Profile == nil {
			fmt.Fprintln(w, "Your profile is still being set up.")
		}
	case "/farm-profile":
		fmt.Fprintln(w, "Farm profile")
		writeProfile(w, s)
	case "/admin":
		fmt.Fprintln(w, "Admin console")
	default:
		fmt.Fprintf(w, "Page %s\n", p)
	}
}

func writeSession(w io.Writer, s session.Session) {
	fmt.Fprintf(w, "State: %s\n", s.State)
	if s.Identity == nil {
		fmt.Fprintln(w, "Not signed in.")
		return
	}
	fmt.Fprintf(w, "User: %s (%s, id %s)\n", displayName(s.Identity), s.Identity.Origin, s.Identity.ID)
	writeProfile(w, s)
	if s.Error != "" {
		fmt.Fprintf(w, "Last error: %s\n", s.Error)
	}
}

func writeProfile(w io.Writer, s session.Session) {
	if s.Profile == nil {
		fmt.Fprintln(w, "Profile: not loaded")
		return
	}
	fmt.Fprintf(w, "Role: %s\n", s.Profile.Role)
	if s.Profile.FarmID != "" {
		fmt.Fprintf(w, "Farm: %s\n", s.Profile.FarmID)
	}
	fmt.Fprintf(w, "Member since: %s\n", s.Profile.CreatedAt.Format("2006-01-02"))
}
