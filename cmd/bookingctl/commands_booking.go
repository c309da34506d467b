package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/modubooking/go-booking-client/api"
	"github.com/modubooking/go-booking-client/booking"
)

func (a *app) cmdPerformances(args []string) error {
	flags := pflag.NewFlagSet("performances", pflag.ContinueOnError)
	search := flags.String("search", "", "search query")
	id := flags.Int64("id", 0, "show one performance with its schedules")
	if err := flags.Parse(args); err != nil {
		return err
	}
	ctx := context.Background()

	if *id != 0 {
		performance, err := a.client.Performance(ctx, *id)
		if err != nil {
			return errors.New(api.MessageOf(err))
		}
		schedules, err := a.client.Schedules(ctx, *id)
		if err != nil {
			return errors.New(api.MessageOf(err))
		}
		fmt.Printf("%s @ %s\n", performance.Title, performance.VenueName)
		for _, schedule := range schedules {
			fmt.Printf("  schedule %d: round %d, %s\n", schedule.ID, schedule.Round, schedule.StartAt.Format("2006-01-02 15:04"))
		}
		return nil
	}

	var (
		performances []api.Performance
		err          error
	)
	if *search != "" {
		performances, err = a.client.SearchPerformances(ctx, *search)
	} else {
		performances, err = a.client.Performances(ctx)
	}
	if err != nil {
		return errors.New(api.MessageOf(err))
	}
	for _, performance := range performances {
		fmt.Printf("%6d  %s @ %s\n", performance.ID, performance.Title, performance.VenueName)
	}
	return nil
}

// cmdBook drives the direct-booking wizard end to end: section -> seats ->
// payment.
func (a *app) cmdBook(args []string) error {
	flags := pflag.NewFlagSet("book", pflag.ContinueOnError)
	scheduleID := flags.Int64("schedule", 0, "schedule to book")
	sectionID := flags.Int64("section", 0, "section to book")
	seats := flags.Int64Slice("seats", nil, "seat IDs to select")
	method := flags.String("method", "", "payment method (CARD|VIRTUAL_ACCOUNT|EASY_PAY)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	ctx := context.Background()

	flow, err := booking.NewDirectFlow(a.client, *scheduleID, a.logger)
	if err != nil {
		return err
	}
	if _, err := flow.LoadSections(ctx); err != nil {
		return errors.New(api.MessageOf(err))
	}
	if err := flow.ChooseSection(ctx, *sectionID); err != nil {
		return err
	}
	for _, seatID := range *seats {
		if err := flow.ToggleSeat(seatID); err != nil {
			return err
		}
	}
	if err := flow.ConfirmSeats(); err != nil {
		return err
	}
	fmt.Printf("total price: %d\n", flow.TotalPrice())
	if err := flow.ChoosePaymentMethod(*method); err != nil {
		return err
	}
	payment, err := flow.Submit(ctx)
	if err != nil {
		return errors.New(api.MessageOf(err))
	}
	fmt.Printf("Booked. payment %d (%s)\n", payment.ID, payment.Status)
	return nil
}

func (a *app) cmdPrereserve(args []string) error {
	flags := pflag.NewFlagSet("prereserve", pflag.ContinueOnError)
	performanceID := flags.Int64("performance", 0, "performance ID")
	scheduleID := flags.Int64("schedule", 0, "schedule ID")
	applyID := flags.Int64("apply", 0, "section to apply for (omit to list)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	ctx := context.Background()

	flow, err := booking.NewPrereservationFlow(a.client, a.session, *performanceID, *scheduleID, a.logger)
	if err != nil {
		return err
	}
	if err := flow.Enter(ctx); err != nil {
		var loginErr *booking.ErrLoginRequired
		if errors.As(err, &loginErr) {
			return errors.Errorf("please log in first, then return to %s", loginErr.ReturnTo)
		}
		return errors.New(api.MessageOf(err))
	}

	if *applyID != 0 {
		if err := flow.Apply(ctx, *applyID); err != nil {
			return errors.New(api.MessageOf(err))
		}
		fmt.Println(booking.AppliedLabel)
		return nil
	}

	performance := flow.Performance()
	fmt.Printf("%s @ %s\n", performance.Title, performance.VenueName)
	for _, offer := range flow.Offers() {
		state := "closed"
		switch {
		case offer.Applied:
			state = booking.AppliedLabel
		case offer.Appliable:
			state = "open"
		}
		fmt.Printf("  section %d %-12s window %s ~ %s  [%s]\n",
			offer.SectionID, offer.SectionName,
			offer.BookingStartAt.Format("01-02 15:04"), offer.BookingEndAt.Format("01-02 15:04"),
			state)
	}
	return nil
}

func (a *app) cmdLottery(args []string) error {
	if len(args) == 0 {
		return errors.New("lottery requires a subcommand: enter, entries or pay")
	}
	switch args[0] {
	case "enter":
		return a.cmdLotteryEnter(args[1:])
	case "entries":
		return a.cmdLotteryEntries()
	case "pay":
		return a.cmdLotteryPay(args[1:])
	default:
		return errors.Errorf("unknown lottery subcommand %q", args[0])
	}
}

func (a *app) cmdLotteryEnter(args []string) error {
	flags := pflag.NewFlagSet("lottery enter", pflag.ContinueOnError)
	performanceID := flags.Int64("performance", 0, "performance ID")
	scheduleID := flags.Int64("schedule", 0, "schedule (date/round) ID")
	grade := flags.String("grade", "", "seat grade")
	quantity := flags.Int("quantity", 1, "ticket quantity")
	if err := flags.Parse(args); err != nil {
		return err
	}
	ctx := context.Background()

	flow, err := booking.NewLotteryFlow(a.client, *performanceID, a.logger)
	if err != nil {
		return err
	}
	if err := flow.ChooseSchedule(*scheduleID); err != nil {
		return err
	}
	if err := flow.ChooseGrade(*grade, *quantity); err != nil {
		return err
	}
	fmt.Println("A winning entry must be paid; submitting acknowledges this.")
	if err := flow.Acknowledge(); err != nil {
		return err
	}
	entry, err := flow.Submit(ctx)
	if err != nil {
		return errors.New(api.MessageOf(err))
	}
	fmt.Printf("Entry %d submitted (%s).\n", entry.ID, entry.Status)
	return nil
}

func (a *app) cmdLotteryEntries() error {
	entries, err := a.client.MyLotteryEntries(context.Background())
	if err != nil {
		return errors.New(api.MessageOf(err))
	}
	for _, entry := range entries {
		forward := ""
		if booking.PaymentOffered(entry) {
			forward = "  -> payment available"
		}
		fmt.Printf("%6d  %-9s grade %-4s x%d%s\n", entry.ID, entry.Status, entry.Grade, entry.Quantity, forward)
	}
	return nil
}

func (a *app) cmdLotteryPay(args []string) error {
	flags := pflag.NewFlagSet("lottery pay", pflag.ContinueOnError)
	entryID := flags.Int64("entry", 0, "winning entry ID")
	method := flags.String("method", "", "payment method (CARD|VIRTUAL_ACCOUNT|EASY_PAY)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	ctx := context.Background()

	entries, err := a.client.MyLotteryEntries(ctx)
	if err != nil {
		return errors.New(api.MessageOf(err))
	}
	var entry *api.LotteryEntry
	for i := range entries {
		if entries[i].ID == *entryID {
			entry = &entries[i]
			break
		}
	}
	if entry == nil {
		return errors.Errorf("no entry %d", *entryID)
	}

	returned := make(chan string, 1)
	flow, err := booking.NewWinPaymentFlow(a.client, *entry, func(route string) {
		returned <- route
	}, a.logger)
	if err != nil {
		return err
	}
	if err := flow.ChooseMethod(*method); err != nil {
		return err
	}
	payment, err := flow.Confirm(ctx)
	if err != nil {
		return errors.New(api.MessageOf(err))
	}
	fmt.Printf("Paid. payment %d (%s)\n", payment.ID, payment.Status)

	// Completion screen: the flow returns to the entry list on its own.
	route := <-returned
	fmt.Println("returning to", route)
	return a.cmdLotteryEntries()
}
