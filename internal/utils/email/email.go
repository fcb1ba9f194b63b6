package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/lumafin/credit-service/internal/config"
	"github.com/lumafin/credit-service/internal/models"
	"github.com/sirupsen/logrus"
)

// Sender delivers account notifications via SMTP. The engine holds no user
// contact details, so messages go to the configured notification mailbox with
// the user ID in the body.
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// NotifyRewardGranted sends a notification that a user's APR was reduced
func (s *Sender) NotifyRewardGranted(userID int64, oldAPR, newAPR float64) error {
	e := email.NewEmail()
	e.From = s.cfg.SMTPFrom
	e.To = []string{s.cfg.RewardNotifyEmail}
	e.Subject = "APR Reward Granted"

	body := fmt.Sprintf(
		"User %d has earned an APR reduction.\n\n"+
			"Previous APR: %.1f%%\n"+
			"New APR: %.1f%%\n"+
			"Granted at: %s\n",
		userID, oldAPR, newAPR, time.Now().Format("2006-01-02 15:04:05"),
	)
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send reward notification for user %d: %v", userID, err)
		return fmt.Errorf("failed to send reward notification: %w", err)
	}

	s.logger.Infof("Reward notification sent for user %d (%.1f%% -> %.1f%%)", userID, oldAPR, newAPR)
	return nil
}

// NotifyStatement sends a summary of a requested account statement
func (s *Sender) NotifyStatement(userID int64, st *models.Statement) error {
	e := email.NewEmail()
	e.From = s.cfg.SMTPFrom
	e.To = []string{s.cfg.RewardNotifyEmail}
	e.Subject = fmt.Sprintf("Account Statement %s - %s",
		st.PeriodStart.Format("2006-01-02"), st.PeriodEnd.Format("2006-01-02"))

	body := fmt.Sprintf(
		"Statement for user %d, loan account %d.\n\n"+
			"Opening balance: %.2f\n"+
			"Closing balance: %.2f\n"+
			"Purchases: %.2f\n"+
			"Interest charged: %.2f\n"+
			"Fees charged: %.2f\n"+
			"Repayments: %.2f\n"+
			"Current APR: %.1f%%\n",
		userID, st.LoanAccountID, st.OpeningBalance, st.ClosingBalance,
		st.Purchases, st.InterestCharged, st.FeesCharged, st.Repayments, st.CurrentAPR,
	)
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send statement notification for user %d: %v", userID, err)
		return fmt.Errorf("failed to send statement notification: %w", err)
	}

	s.logger.Infof("Statement notification sent for user %d (account %d)", userID, st.LoanAccountID)
	return nil
}
