package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/iliyamo/store-rating/internal/auth"
	"github.com/iliyamo/store-rating/internal/handler"
	"github.com/iliyamo/store-rating/internal/model"
	"github.com/iliyamo/store-rating/internal/repository"
)

var adminFlags struct {
	name, email, password, address string
}

// createAdminCmd bootstraps the first system administrator, which neither
// registration nor any unauthenticated route can create.
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create a system administrator account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer db.Close()
		creds, err := newCredentials(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		u, err := createAdmin(ctx, repository.NewUserRepo(db), creds, adminFlags.name, adminFlags.email, adminFlags.password, adminFlags.address)
		if err != nil {
			return err
		}
		log.WithFields(map[string]any{"id": u.ID, "email": u.Email}).Info("administrator created")
		return nil
	},
}

func init() {
	f := createAdminCmd.Flags()
	f.StringVar(&adminFlags.name, "name", "", "display name")
	f.StringVar(&adminFlags.email, "email", "", "login email")
	f.StringVar(&adminFlags.password, "password", "", "password (8-16 chars, one uppercase, one of !@#$&*)")
	f.StringVar(&adminFlags.address, "address", "", "postal address")
	_ = createAdminCmd.MarkFlagRequired("name")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}

func createAdmin(ctx context.Context, users *repository.UserRepo, creds *auth.Credentials, name, email, password, address string) (model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.User{}, errors.New("name is required")
	}
	email = model.NormalizeEmail(email)
	if err := validator.New().Var(email, "required,email"); err != nil {
		return model.User{}, fmt.Errorf("invalid email %q", email)
	}
	if !handler.ValidPassword(password) {
		return model.User{}, errors.New("password must be 8-16 characters with at least one uppercase letter and one of !@#$&*")
	}
	hash, err := creds.HashPassword(password)
	if err != nil {
		return model.User{}, err
	}
	u, err := users.Create(ctx, repository.NewUser{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Address:      address,
		Role:         model.RoleAdmin,
	})
	if errors.Is(err, repository.ErrEmailExists) {
		return model.User{}, fmt.Errorf("a user with email %s already exists", email)
	}
	return u, err
}
