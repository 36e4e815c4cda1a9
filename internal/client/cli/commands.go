package cli

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/dmitrijs2005/textify/internal/client/client"
	"github.com/dmitrijs2005/textify/internal/server/models"
)

var getPassword = GetPassword

func (a *App) Register(ctx context.Context) error {
	userName, err := GetSimpleText(a.reader, "Enter username:", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Enter email:", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	u, err := a.api.Register(ctx, userName, email, password)
	if err != nil {
		return err
	}

	printf(a.out, "Registered %s (%s). You can log in now.\n", u.UserName, u.Email)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	userName, err := GetSimpleText(a.reader, "Enter username:", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	if err := a.api.Login(ctx, userName, password); err != nil {
		return err
	}

	a.userName = userName
	printf(a.out, "Logged in as %s\n", userName)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.api.Logout()
	a.userName = ""
	printf(a.out, "Logged out\n")
	return nil
}

func (a *App) Me(ctx context.Context) error {
	u, err := a.api.Me(ctx)
	if err != nil {
		return a.checkSession(err)
	}
	a.printUser(u)
	return nil
}

func (a *App) List(ctx context.Context) error {
	docs, err := a.api.ListDocuments(ctx)
	if err != nil {
		return a.checkSession(err)
	}

	if len(docs) == 0 {
		printf(a.out, "No documents\n")
		return nil
	}
	for _, d := range docs {
		printf(a.out, "%s  %s  %s\n", d.ID, d.UpdatedAt.Local().Format("2006-01-02 15:04"), d.Title)
	}
	return nil
}

func (a *App) Show(ctx context.Context, id string) error {
	d, err := a.api.GetDocument(ctx, id)
	if err != nil {
		return a.checkSession(err)
	}
	a.printDocument(d)
	return nil
}

func (a *App) New(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "Enter title:", a.out)
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.reader, "Enter content:", a.out)
	if err != nil {
		return err
	}

	d, err := a.api.CreateDocument(ctx, title, content)
	if err != nil {
		return a.checkSession(err)
	}

	printf(a.out, "Created document %s\n", d.ID)
	return nil
}

func (a *App) Edit(ctx context.Context, id string) error {
	d, err := a.api.GetDocument(ctx, id)
	if err != nil {
		return a.checkSession(err)
	}

	title, err := GetSimpleText(a.reader, "New title (empty keeps \""+d.Title+"\"):", a.out)
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.reader, "New content (empty keeps the current one):", a.out)
	if err != nil {
		return err
	}

	var newTitle, newContent *string
	if title != "" {
		newTitle = &title
	}
	if content != "" {
		newContent = &content
	}
	if newTitle == nil && newContent == nil {
		printf(a.out, "Nothing to change\n")
		return nil
	}

	d, err = a.api.UpdateDocument(ctx, id, newTitle, newContent)
	if err != nil {
		return a.checkSession(err)
	}

	printf(a.out, "Updated document %s\n", d.ID)
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.api.DeleteDocument(ctx, id); err != nil {
		return a.checkSession(err)
	}
	printf(a.out, "Deleted document %s\n", id)
	return nil
}

func (a *App) Profile(ctx context.Context) error {
	u, err := a.api.GetProfile(ctx)
	if err != nil {
		return a.checkSession(err)
	}
	a.printUser(u)
	return nil
}

// Rename changes the username. The server keys tokens by username, so the
// session is closed afterwards.
func (a *App) Rename(ctx context.Context) error {
	userName, err := GetSimpleText(a.reader, "Enter new username:", a.out)
	if err != nil {
		return err
	}

	u, err := a.api.UpdateProfile(ctx, map[string]any{"username": userName})
	if err != nil {
		return a.checkSession(err)
	}

	a.api.Logout()
	a.userName = ""
	printf(a.out, "Username changed to %s. Please log in again.\n", u.UserName)
	return nil
}

// Settings reads key=value lines and merges them into the current settings.
// Values that parse as JSON keep their type; an empty value removes the key.
func (a *App) Settings(ctx context.Context) error {
	u, err := a.api.GetProfile(ctx)
	if err != nil {
		return a.checkSession(err)
	}

	input, err := GetMultiline(a.reader, "Enter settings as key=value, one per line:", a.out)
	if err != nil {
		return err
	}

	settings, err := mergeSettings(u.Settings, input)
	if err != nil {
		return err
	}

	u, err = a.api.UpdateProfile(ctx, map[string]any{"settings": settings})
	if err != nil {
		return a.checkSession(err)
	}

	a.printUser(u)
	return nil
}

func (a *App) DeleteAccount(ctx context.Context) error {
	confirm, err := GetSimpleText(a.reader, "This deletes your account and all documents. Type your username to confirm:", a.out)
	if err != nil {
		return err
	}
	if confirm == "" || confirm != a.userName {
		printf(a.out, "Cancelled\n")
		return nil
	}

	if err := a.api.DeleteProfile(ctx); err != nil {
		return a.checkSession(err)
	}

	a.userName = ""
	printf(a.out, "Account deleted\n")
	return nil
}

// checkSession drops the local session when the server no longer accepts
// the token.
func (a *App) checkSession(err error) error {
	if client.Unauthorized(err) {
		a.api.Logout()
		a.userName = ""
	}
	return err
}

func (a *App) printUser(u *models.PublicUser) {
	printf(a.out, "ID:       %s\n", u.ID)
	printf(a.out, "Username: %s\n", u.UserName)
	printf(a.out, "Email:    %s\n", u.Email)
	printf(a.out, "Active:   %t\n", u.IsActive)
	printf(a.out, "Created:  %s\n", u.CreatedAt.Local().Format("2006-01-02 15:04"))

	keys := make([]string, 0, len(u.Settings))
	for k := range u.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, _ := json.Marshal(u.Settings[k])
		printf(a.out, "  %s = %s\n", k, v)
	}
}

func (a *App) printDocument(d *models.Document) {
	printf(a.out, "ID:      %s\n", d.ID)
	printf(a.out, "Title:   %s\n", d.Title)
	printf(a.out, "Updated: %s\n", d.UpdatedAt.Local().Format("2006-01-02 15:04"))
	printf(a.out, "\n%s\n", d.Content)
}

var errSettingsLine = errors.New("settings lines must look like key=value")

func mergeSettings(current map[string]any, input string) (map[string]any, error) {
	out := make(map[string]any, len(current))
	for k, v := range current {
		out[k] = v
	}

	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, errSettingsLine
		}
		v = strings.TrimSpace(v)
		if v == "" {
			delete(out, k)
			continue
		}
		var parsed any
		if err := json.Unmarshal([]byte(v), &parsed); err != nil {
			parsed = v
		}
		out[k] = parsed
	}

	return out, nil
}
