package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manageday-dev/manageday/internal/api"
)

// NewNotifyCmd creates the notify command for testing notification delivery
func NewNotifyCmd() *cobra.Command {
	var phone, message, channel string

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Send a test order notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			if phone == "" {
				return fmt.Errorf("phone is required (use --phone)")
			}
			d, err := newDeps("")
			if err != nil {
				return err
			}
			return runNotify(d, channel, api.NotificationTest{Phone: phone, Message: message})
		},
	}

	cmd.Flags().StringVar(&phone, "phone", "", "Destination phone number")
	cmd.Flags().StringVar(&message, "message", "", "Message body")
	cmd.Flags().StringVar(&channel, "channel", "sms", "Delivery channel: sms or whatsapp")

	return cmd
}

func runNotify(d *deps, channel string, test api.NotificationTest) error {
	ctx := context.Background()

	var err error
	switch channel {
	case "sms":
		err = d.client.TestSMS(ctx, test)
	case "whatsapp":
		err = d.client.TestWhatsApp(ctx, test)
	default:
		return fmt.Errorf("unknown channel '%s' (expected sms or whatsapp)", channel)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(d.out, "✓ Test %s notification sent to %s\n", channel, test.Phone)
	return nil
}
