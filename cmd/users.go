package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/resonate/internal/models"
	"github.com/desertthunder/resonate/internal/shared"
	"github.com/urfave/cli/v3"
)

// UserShow prints a profile. With no uid it shows the viewer's own.
func (r *Runner) UserShow(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.lib()
	if err != nil {
		return err
	}

	uid := strings.TrimSpace(cmd.StringArg("uid"))
	if uid == "" {
		if err := requireLogin(lib, "see your profile"); err != nil {
			return err
		}
	}

	res, err := lib.Profile(ctx, uid)
	if err != nil {
		return err
	}
	p := res.Data

	return r.render(cmd, p, func() error {
		title := p.Username
		if p.IsVIP {
			title += " ★ VIP"
		}
		r.writePlainHeader(title)
		r.writePlain("UID:       %s\n", p.UID)
		r.writePlain("Email:     %s\n", p.Email)
		if p.Age != nil {
			r.writePlain("Age:       %d\n", *p.Age)
		}
		if p.Gender != nil {
			r.writePlain("Gender:    %s\n", *p.Gender)
		}
		if p.City != nil || p.Province != nil {
			r.writePlain("Location:  %s, %s\n", deref(p.City), deref(p.Province))
		}
		if p.MBTI != nil {
			r.writePlain("MBTI:      %s\n", *p.MBTI)
		}
		if len(p.Hobbies) > 0 {
			r.writePlain("Hobbies:   %s\n", strings.Join(p.Hobbies, ", "))
		}
		r.writePlain("Playlists: %d · Favorites: %d\n", p.NumPlaylists, p.NumFavorites)
		return nil
	})
}

// UserUpdate edits the viewer's profile from the flags that were set.
func (r *Runner) UserUpdate(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.lib()
	if err != nil {
		return err
	}

	update := profileUpdateFromFlags(cmd)
	if err := update.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	p, err := lib.UpdateProfile(ctx, update)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Profile updated for %s\n", p.Username)
}

func profileUpdateFromFlags(cmd *cli.Command) models.ProfileUpdate {
	var u models.ProfileUpdate
	str := func(name string) *string {
		if !cmd.IsSet(name) {
			return nil
		}
		v := strings.TrimSpace(cmd.String(name))
		return &v
	}

	u.Username = str("username")
	u.Email = str("email")
	u.Gender = str("gender")
	u.Street = str("street")
	u.City = str("city")
	u.Province = str("province")
	u.MBTI = str("mbti")
	if cmd.IsSet("age") {
		age := int(cmd.Int("age"))
		u.Age = &age
	}
	if cmd.IsSet("hobby") {
		u.Hobbies = cmd.StringSlice("hobby")
	}
	return u
}
