package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mansoorceksport/gymcard/internal/ethiopian"
	"github.com/mansoorceksport/gymcard/internal/membership"
	"github.com/mansoorceksport/gymcard/internal/middleware"
)

// NewToGregorianCommand converts an Ethiopian YYYY-MM-DD date
func NewToGregorianCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "to-gregorian <ethiopian-date>",
		Short: "Convert an Ethiopian date to Gregorian",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := ethiopian.EthiopianToGregorian(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", g.Format(time.DateOnly), ethiopian.FormatDate(args[0]))
			return nil
		},
	}
}

// NewToEthiopianCommand converts a Gregorian YYYY-MM-DD date
func NewToEthiopianCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "to-ethiopian <gregorian-date>",
		Short: "Convert a Gregorian date to Ethiopian",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := time.Parse(time.DateOnly, args[0])
			if err != nil {
				return ethiopian.ErrInvalidFormat
			}
			e, err := ethiopian.GregorianToEthiopian(g)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", e, ethiopian.FormatDate(e))
			return nil
		},
	}
}

// NewRemainingCommand prints the days left on a membership
func NewRemainingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remaining",
		Short: "Compute days left for a registration date and plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			register, _ := cmd.Flags().GetString("register")
			duration, _ := cmd.Flags().GetString("duration")
			today, _ := cmd.Flags().GetString("today")

			var clock membership.Clock = membership.SystemClock{}
			if today != "" {
				t, err := time.Parse(time.DateOnly, today)
				if err != nil {
					return fmt.Errorf("--today: %w", ethiopian.ErrInvalidFormat)
				}
				clock = membership.ClockFunc(func() time.Time { return t })
			}

			calc := membership.NewCalculator(clock)
			p, err := calc.Period(register, duration)
			if err != nil {
				return err
			}
			n := calc.Remaining(p)
			expiry, err := p.ExpiryEthiopian()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "expiry:    %s (%s)\n", ethiopian.FormatDate(expiry.String()), p.Expiry.Format(time.DateOnly))
			fmt.Fprintf(out, "remaining: %s\n", membership.RemainingText(&n))
			fmt.Fprintf(out, "badge:     %s\n", membership.Status(&n))
			return nil
		},
	}

	cmd.Flags().String("register", "", "Ethiopian registration date YYYY-MM-DD (required)")
	cmd.Flags().String("duration", "1 Month", "Plan duration, e.g. \"2 Weeks\"")
	cmd.Flags().String("today", "", "Gregorian date to evaluate against (defaults to now)")
	_ = cmd.MarkFlagRequired("register")
	return cmd
}

// NewTokenCommand issues an admin bearer token signed with JWT_SECRET
func NewTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a front desk admin token",
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, _ := cmd.Flags().GetString("subject")
			name, _ := cmd.Flags().GetString("name")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			secret := os.Getenv("JWT_SECRET")
			if secret == "" {
				return errors.New("JWT_SECRET is required")
			}
			token, err := middleware.IssueAdminToken(secret, subject, name, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().String("subject", "", "Admin id stored in the sub claim (required)")
	cmd.Flags().String("name", "", "Display name")
	cmd.Flags().Duration("ttl", 12*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
