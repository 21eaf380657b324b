package services

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"want-salon-backend/utils"
)

type twilioMessages interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// SMSSender delivers notifications through Twilio. Recipients written as
// "whatsapp:+..." go out over WhatsApp from the same number.
type SMSSender struct {
	api  twilioMessages
	from string
	log  *zap.Logger
}

func NewSMSSender(accountSID, authToken, from string, timeout time.Duration, log *zap.Logger) *SMSSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	client.SetTimeout(timeout)
	return &SMSSender{api: client.Api, from: from, log: log}
}

func (s *SMSSender) Name() string { return "sms" }

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// plainText strips the Telegram HTML markup.
func plainText(text string) string {
	return strings.TrimSpace(html.UnescapeString(tagPattern.ReplaceAllString(text, "")))
}

func (s *SMSSender) Send(ctx context.Context, recipient, text string) error {
	to, from := recipient, s.from
	if phone, ok := strings.CutPrefix(recipient, "whatsapp:"); ok {
		if !utils.ValidatePhone(phone) {
			return fmt.Errorf("invalid phone number %q", phone)
		}
		from = "whatsapp:" + s.from
	} else if !utils.ValidatePhone(recipient) {
		return fmt.Errorf("invalid phone number %q", recipient)
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(plainText(text))

	return callWithContext(ctx, func() error {
		resp, err := s.api.CreateMessage(params)
		if err != nil {
			return err
		}
		if resp != nil && resp.Sid != nil {
			s.log.Debug("sms sent", zap.String("to", to), zap.String("sid", *resp.Sid))
		}
		return nil
	})
}
