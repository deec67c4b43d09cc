package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightbooking/internal/client"
	"github.com/spf13/cobra"
)

func newSendCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "send COMMAND [ARGS...]",
		Short: "Send one raw request and print the response",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.roundTrip(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), resp)
			return err
		},
	}
}

func newFlightsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "flights",
		Short: "List flights, one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := opts.roundTrip(cmd.Context(), "GET_FLIGHTS")
			if err != nil {
				return err
			}
			if client.IsError(resp) {
				return errors.New(resp)
			}
			for _, record := range client.SplitRecords(resp) {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), record); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newSeatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seats FLIGHT_ID",
		Short: "List free seats of a flight",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.roundTrip(cmd.Context(), "GET_SEATS "+args[0])
			if err != nil {
				return err
			}
			if client.IsError(resp) {
				return errors.New(resp)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), resp)
			return err
		},
	}
}

func newBookCmd(opts *options) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "book FLIGHT_ID SEAT",
		Short: "Book a seat, optionally logging in first so the booking is tied to a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (username == "") != (password == "") {
				return errors.New("--user and --password must be given together")
			}

			c, err := opts.dial(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			if username != "" {
				resp, err := opts.send(cmd.Context(), c, "LOGIN "+username+" "+password)
				if err != nil {
					return err
				}
				if client.IsError(resp) {
					return errors.New(resp)
				}
			}

			resp, err := opts.send(cmd.Context(), c, "BOOK_SEAT "+args[0]+" "+args[1])
			if err != nil {
				return err
			}
			if client.IsError(resp) {
				return errors.New(resp)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), resp)
			return err
		},
	}
	cmd.Flags().StringVar(&username, "user", "", "log in as this user before booking")
	cmd.Flags().StringVar(&password, "password", "", "password for --user")
	return cmd
}

func newShellCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Read requests from stdin and print each response, keeping one connection open",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.dial(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			in := bufio.NewScanner(cmd.InOrStdin())
			for in.Scan() {
				line := strings.TrimSpace(in.Text())
				if line == "" {
					continue
				}
				if strings.EqualFold(line, "quit") || strings.EqualFold(line, "exit") {
					return nil
				}
				resp, err := opts.send(cmd.Context(), c, line)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), resp); err != nil {
					return err
				}
			}
			return in.Err()
		},
	}
}
