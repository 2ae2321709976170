package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/wolfeidau/sessionauth/internal/auth"
	"github.com/wolfeidau/sessionauth/internal/models"
	"github.com/wolfeidau/sessionauth/internal/store"
)

type UserCmd struct {
	Create UserCreateCmd `cmd:"" help:"Create a single user"`
	Import UserImportCmd `cmd:"" help:"Create users from a YAML file, existing emails are skipped"`
}

type UserCreateCmd struct {
	Email    string `help:"email address, matched exactly on login" required:""`
	Password string `help:"password, at least 8 characters" required:"" env:"SESSIONAUTH_USER_PASSWORD"`
	Name     string `help:"display name" default:""`
	Cost     int    `help:"bcrypt cost, zero uses the library default" default:"0"`

	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

func (c *UserCreateCmd) Run(ctx context.Context, globals *Globals) error {
	setupLogging(globals)

	rec := userRecord{Email: c.Email, Password: c.Password, DisplayName: c.Name}
	if err := validateRecords([]userRecord{rec}); err != nil {
		return err
	}

	stores, _, err := openStores(ctx, "postgres", &c.PostgresStore, false)
	if err != nil {
		return err
	}
	defer stores.Close()

	user, err := newUser(rec, c.Cost)
	if err != nil {
		return err
	}
	if err := stores.Users.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().Str("user_id", user.ID.String()).Str("email", user.Email).Msg("Created user")
	return nil
}

type UserImportCmd struct {
	File string `arg:"" help:"YAML file containing a list of users" type:"existingfile"`
	Cost int    `help:"bcrypt cost, zero uses the library default" default:"0"`

	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

func (c *UserImportCmd) Run(ctx context.Context, globals *Globals) error {
	setupLogging(globals)

	records, err := readUserFile(c.File)
	if err != nil {
		return err
	}

	stores, _, err := openStores(ctx, "postgres", &c.PostgresStore, false)
	if err != nil {
		return err
	}
	defer stores.Close()

	created, skipped, err := provisionUsers(ctx, stores.Users, records, c.Cost)
	if err != nil {
		return err
	}

	log.Info().Int("created", created).Int("skipped", skipped).Str("file", c.File).Msg("Imported users")
	return nil
}

// userRecord is one entry of a user file:
//
//	- email: jane@example.com
//	  password: correct horse battery
//	  display_name: Jane Doe
//	  attributes:
//	    team: platform
type userRecord struct {
	Email       string         `yaml:"email" validate:"required,email"`
	Password    string         `yaml:"password" validate:"required,min=8,max=72"`
	DisplayName string         `yaml:"display_name"`
	Attributes  map[string]any `yaml:"attributes"`
}

func readUserFile(path string) ([]userRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read user file: %w", err)
	}
	return parseUsers(data)
}

func parseUsers(data []byte) ([]userRecord, error) {
	var records []userRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse user file: %w", err)
	}
	if err := validateRecords(records); err != nil {
		return nil, err
	}
	return records, nil
}

func validateRecords(records []userRecord) error {
	v := validator.New()
	seen := make(map[string]int, len(records))

	var errs []error
	for i, rec := range records {
		if err := v.Struct(rec); err != nil {
			var ve validator.ValidationErrors
			if errors.As(err, &ve) {
				for _, fe := range ve {
					errs = append(errs, fmt.Errorf("user %d: %s failed %q", i, fe.Field(), fe.Tag()))
				}
				continue
			}
			return err
		}
		if first, ok := seen[rec.Email]; ok {
			errs = append(errs, fmt.Errorf("user %d: email %s duplicates user %d", i, rec.Email, first))
			continue
		}
		seen[rec.Email] = i
	}

	return errors.Join(errs...)
}

func newUser(rec userRecord, cost int) (*models.User, error) {
	hash, err := auth.HashPassword(rec.Password, cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password for %s: %w", rec.Email, err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user id: %w", err)
	}

	return &models.User{
		ID:           id,
		Email:        rec.Email,
		PasswordHash: hash,
		DisplayName:  rec.DisplayName,
		Attributes:   rec.Attributes,
	}, nil
}

// provisionUsers creates each record, skipping emails that already exist.
func provisionUsers(ctx context.Context, users store.UserStore, records []userRecord, cost int) (created, skipped int, err error) {
	for _, rec := range records {
		user, err := newUser(rec, cost)
		if err != nil {
			return created, skipped, err
		}

		err = users.Create(ctx, user)
		switch {
		case errors.Is(err, store.ErrUserAlreadyExists):
			log.Debug().Str("email", rec.Email).Msg("User already exists, skipping")
			skipped++
		case err != nil:
			return created, skipped, fmt.Errorf("failed to create user %s: %w", rec.Email, err)
		default:
			created++
		}
	}
	return created, skipped, nil
}
