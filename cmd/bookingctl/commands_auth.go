package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/modubooking/go-booking-client/api"
	"github.com/modubooking/go-booking-client/oauthflow"
)

const oauthWaitTimeout = 5 * time.Minute

func (a *app) cmdLogin(args []string) error {
	flags := pflag.NewFlagSet("login", pflag.ContinueOnError)
	email := flags.String("email", "", "account email")
	password := flags.String("password", "", "account password")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("login requires --email and --password")
	}

	if err := a.session.Login(context.Background(), *email, *password); err != nil {
		// The backend's message is the user-facing text.
		return errors.New(api.MessageOf(err))
	}
	fmt.Println("Logged in.")
	return nil
}

func (a *app) cmdLogout(args []string) error {
	a.session.Logout(context.Background())
	fmt.Println("Logged out.")
	return nil
}

func (a *app) cmdStatus(args []string) error {
	status := a.session.Status()
	fmt.Printf("user authenticated:  %v\n", status.Authenticated)
	if expiry, ok := a.session.TokenExpiry(); ok {
		fmt.Printf("token expires:       %s\n", expiry.Format(time.RFC3339))
	}
	fmt.Printf("admin authenticated: %v\n", a.adminStore.IsAuthenticated())
	return nil
}

func (a *app) cmdOAuth(args []string) error {
	if len(args) == 0 {
		return errors.New("oauth requires a subcommand: login or link")
	}

	flow, err := oauthflow.NewFlow(a.client, a.session, a.cfg.OAuthProvider, a.logger)
	if err != nil {
		return err
	}
	listener := oauthflow.NewListener(flow, a.cfg.CallbackPort, a.logger)
	if err := listener.Start(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), oauthWaitTimeout)
	defer cancel()
	defer listener.Shutdown(context.Background())

	var authorizeURL string
	switch args[0] {
	case "login":
		authorizeURL, err = flow.BeginLogin(ctx, listener.RedirectURI())
	case "link":
		authorizeURL, err = flow.BeginLink(ctx, listener.RedirectURI())
	default:
		return errors.Errorf("unknown oauth subcommand %q", args[0])
	}
	if err != nil {
		return err
	}

	fmt.Println("Open this URL in your browser to continue:")
	fmt.Println("  " + authorizeURL)

	result, err := listener.Wait(ctx)
	if err != nil {
		return err
	}
	if result.Message != "" {
		fmt.Println(result.Message)
	}
	fmt.Println("next:", result.Route)
	return nil
}

func (a *app) cmdRecover(args []string) error {
	if len(args) == 0 {
		return errors.New("recover requires a subcommand: email or confirm")
	}
	flags := pflag.NewFlagSet("recover", pflag.ContinueOnError)
	email := flags.String("email", "", "account email")
	token := flags.String("token", "", "recovery token from the mail")
	if err := flags.Parse(args[1:]); err != nil {
		return err
	}

	ctx := context.Background()
	switch args[0] {
	case "email":
		if *email == "" {
			return errors.New("recover email requires --email")
		}
		if err := a.client.RequestWithdrawalRecovery(ctx, *email); err != nil {
			return errors.New(api.MessageOf(err))
		}
		fmt.Println("Recovery mail sent.")
	case "confirm":
		if *token == "" {
			return errors.New("recover confirm requires --token")
		}
		if err := a.client.ConfirmWithdrawalRecovery(ctx, *token); err != nil {
			return errors.New(api.MessageOf(err))
		}
		fmt.Println("Account recovered. You can log in again.")
	default:
		return errors.Errorf("unknown recover subcommand %q", args[0])
	}
	return nil
}
