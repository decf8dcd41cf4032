package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/meduaid/qb-portal/internal/config"
	"github.com/meduaid/qb-portal/internal/db"
)

type seedUser struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

type seedFile struct {
	Users []seedUser `yaml:"users"`
}

func newSeedCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert user accounts from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), path)
		},
	}
	cmd.Flags().StringVar(&path, "file", "seed/users.yaml", "path to the users YAML file")
	return cmd
}

func runSeed(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return err
	}
	if len(sf.Users) == 0 {
		return errors.New("seed file has no users")
	}

	cfg := config.FromEnv()
	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	dbh, err := db.Open(openCtx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return err
	}
	defer dbh.Close()

	for _, u := range sf.Users {
		if u.Username == "" || u.Password == "" {
			return fmt.Errorf("seed user %q: username and password required", u.Username)
		}
		role := u.Role
		if role == "" {
			role = "writer"
		}
		if role != "writer" && role != "admin" {
			return fmt.Errorf("seed user %q: invalid role %q", u.Username, role)
		}
		if err := upsertUser(ctx, dbh, u.Username, u.Password, role); err != nil {
			return err
		}
	}
	logrus.WithField("count", len(sf.Users)).Info("seed complete")
	return nil
}

func upsertUser(ctx context.Context, dbh *sql.DB, username, password, role string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return err
	}
	var id string
	err = dbh.QueryRowContext(ctx, `SELECT id FROM users WHERE username=$1`, username).Scan(&id)
	switch {
	case err == nil:
		_, err = dbh.ExecContext(ctx,
			`UPDATE users SET password_hash=$2, role=$3 WHERE id=$1`, id, string(hash), role)
		return err
	case errors.Is(err, sql.ErrNoRows):
		_, err = dbh.ExecContext(ctx,
			`INSERT INTO users (id, username, password_hash, role, created_at) VALUES ($1,$2,$3,$4,$5)`,
			uuid.NewString(), username, string(hash), role, time.Now().Unix())
		return err
	default:
		return err
	}
}
