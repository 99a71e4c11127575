package main

import (
	"errors"
	"fmt"

	"talenthub/internal/repository"
	ucauth "talenthub/internal/usecase/auth"

	"github.com/spf13/cobra"
)

var misUser struct {
	email    string
	password string
	name     string
}

var createMISUserCmd = &cobra.Command{
	Use:   "create-mis-user",
	Short: "Create a verified MIS staff account",
	RunE:  runCreateMISUser,
}

func init() {
	f := createMISUserCmd.Flags()
	f.StringVar(&misUser.email, "email", "", "login email")
	f.StringVar(&misUser.password, "password", "", "initial password (min 8 characters)")
	f.StringVar(&misUser.name, "name", "", "full name")
	_ = createMISUserCmd.MarkFlagRequired("email")
	_ = createMISUserCmd.MarkFlagRequired("password")
	_ = createMISUserCmd.MarkFlagRequired("name")
}

func runCreateMISUser(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	svc := ucauth.NewService(repository.NewPostgresUserRepository(e.db), nil, nil, e.cfg.OTP.TTL, e.log)
	u, err := svc.CreateMIS(cmd.Context(), ucauth.CreateMISInput{
		Email:    misUser.email,
		Password: misUser.password,
		FullName: misUser.name,
	})
	switch {
	case errors.Is(err, ucauth.ErrEmailAlreadyRegistered):
		return fmt.Errorf("%s is already registered", misUser.email)
	case errors.Is(err, ucauth.ErrInvalidInput):
		return errors.New("invalid email, name or password")
	case err != nil:
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created mis user %s (%s)\n", u.Email, u.ID)
	return nil
}
