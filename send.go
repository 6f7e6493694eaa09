package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shreyatrivedi/portfolio/internal/config"
	"github.com/shreyatrivedi/portfolio/internal/contact"
)

func newSendCmd() *cobra.Command {
	values := make(map[contact.Field]*string, len(contact.Fields))

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send an inquiry through the configured form relay",
		Example: `  portfolio send --name Alice --email a@b.com --inquiry-type General --message "Hi"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			form := make(map[contact.Field]string, len(values))
			for f, v := range values {
				form[f] = *v
			}
			return sendInquiry(cmd.Context(), cmd.OutOrStdout(), cfg, logger, newRelay(cfg), form)
		},
	}

	flags := map[contact.Field]string{
		contact.FieldName:        "name",
		contact.FieldEmail:       "email",
		contact.FieldCompany:     "company",
		contact.FieldPosition:    "position",
		contact.FieldInquiryType: "inquiry-type",
		contact.FieldMessage:     "message",
	}
	for _, f := range contact.Fields {
		values[f] = cmd.Flags().String(flags[f], "", fmt.Sprintf("inquiry %s", f))
	}
	return cmd
}

// sendInquiry drives a contact controller the same way the dialog does.
func sendInquiry(ctx context.Context, out io.Writer, cfg *config.Config, logger *zap.Logger, relay contact.Relay, form map[contact.Field]string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctrl := contact.NewController(relay, logger, contact.WithTimeout(cfg.Contact.SubmitTimeout))
	ctrl.Open()
	for _, f := range contact.Fields {
		if err := ctrl.SetField(f, form[f]); err != nil {
			return err
		}
	}

	notice, err := ctrl.Submit(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, notice.Message)
	if notice.Kind == contact.NoticeFailure {
		return errors.New("inquiry was not delivered")
	}
	return nil
}
