package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/modubooking/go-booking-client/api"
)

// Admin commands use the admin credential store exclusively; the user
// session is never consulted.

func (a *app) cmdAdmin(args []string) error {
	if len(args) == 0 {
		return errors.New("admin requires a subcommand: login, logout, add-section or add-seat")
	}
	switch args[0] {
	case "login":
		return a.cmdAdminLogin(args[1:])
	case "logout":
		return a.cmdAdminLogout()
	case "add-section":
		return a.cmdAdminAddSection(args[1:])
	case "add-seat":
		return a.cmdAdminAddSeat(args[1:])
	default:
		return errors.Errorf("unknown admin subcommand %q", args[0])
	}
}

func (a *app) cmdAdminLogin(args []string) error {
	flags := pflag.NewFlagSet("admin login", pflag.ContinueOnError)
	email := flags.String("email", "", "admin email")
	password := flags.String("password", "", "admin password")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("admin login requires --email and --password")
	}

	pair, err := a.client.AdminLogin(context.Background(), *email, *password)
	if err != nil {
		return errors.New(api.MessageOf(err))
	}
	// No refresh flow for the admin principal.
	if err := a.adminStore.SetAccess(pair.AccessToken); err != nil {
		return err
	}
	fmt.Println("Admin logged in.")
	return nil
}

func (a *app) cmdAdminLogout() error {
	if err := a.client.AdminLogout(context.Background()); err != nil {
		a.logger.Warn().Err(err).Msg("remote admin logout failed, clearing local credential anyway")
	}
	if err := a.adminStore.Clear(); err != nil {
		return err
	}
	fmt.Println("Admin logged out.")
	return nil
}

func (a *app) cmdAdminAddSection(args []string) error {
	flags := pflag.NewFlagSet("admin add-section", pflag.ContinueOnError)
	venueID := flags.Int64("venue", 0, "venue ID")
	name := flags.String("name", "", "section name")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *venueID == 0 || *name == "" {
		return errors.New("admin add-section requires --venue and --name")
	}

	if err := a.client.CreateVenueSection(context.Background(), *venueID, *name); err != nil {
		return errors.New(api.MessageOf(err))
	}
	fmt.Println("Section created.")
	return nil
}

func (a *app) cmdAdminAddSeat(args []string) error {
	flags := pflag.NewFlagSet("admin add-seat", pflag.ContinueOnError)
	venueID := flags.Int64("venue", 0, "venue ID")
	sectionID := flags.Int64("section", 0, "section ID")
	row := flags.String("row", "", "row label")
	number := flags.Int("number", 0, "seat number")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *venueID == 0 || *sectionID == 0 || *row == "" || *number == 0 {
		return errors.New("admin add-seat requires --venue, --section, --row and --number")
	}

	if err := a.client.CreateVenueSeat(context.Background(), *venueID, *sectionID, *row, *number); err != nil {
		return errors.New(api.MessageOf(err))
	}
	fmt.Println("Seat created.")
	return nil
}
