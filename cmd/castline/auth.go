package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ashureev/castline/internal/apiclient"
	"github.com/ashureev/castline/internal/domain"
)

func (c *cli) loginCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reader := bufio.NewReader(c.in)
			if email == "" {
				var err error
				if email, err = c.prompt(reader, "Email: "); err != nil {
					return err
				}
			}
			password, err := c.promptSecret(reader, "Password: ")
			if err != nil {
				return err
			}
			sess, err := c.app.Account().Login(cmd.Context(), apiclient.Credentials{Email: email, Password: password})
			if err != nil {
				return errors.New(apiclient.UserMessage(err, "Login failed."))
			}
			return c.printer.Session(sess)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Account().Logout(cmd.Context()); err != nil {
				return err
			}
			return c.printer.Line("Logged out.")
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in member",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			sess, ok := c.app.Sessions().Current()
			if !ok {
				return errNotLoggedIn
			}
			return c.printer.Session(sess)
		},
	}
}

func (c *cli) registerCmd() *cobra.Command {
	var reg apiclient.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reader := bufio.NewReader(c.in)
			if reg.Password == "" {
				var err error
				if reg.Password, err = c.promptSecret(reader, "Password: "); err != nil {
					return err
				}
			}
			msg, err := c.app.Account().Register(cmd.Context(), reg)
			if err != nil {
				return errors.New(apiclient.UserMessage(err, "Registration failed."))
			}
			return c.printer.Line("%s You can now log in.", msg)
		},
	}
	cmd.Flags().StringVar(&reg.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&reg.Email, "email", "", "email")
	cmd.Flags().StringVar(&reg.Role, "role", domain.RoleActor, "one of: "+strings.Join(domain.Roles, ", "))
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (c *cli) prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Fprint(c.out, label)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads without echo when stdin is a terminal.
func (c *cli) promptSecret(reader *bufio.Reader, label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if c.in != os.Stdin || !term.IsTerminal(fd) {
		return c.prompt(reader, label)
	}
	fmt.Fprint(c.out, label)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(c.out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(secret)), nil
}
