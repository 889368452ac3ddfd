package mailer

// Service dispatches transactional email. Implementations must not be relied
// on for durability; callers decide whether a send failure is fatal.
type Service interface {
	SendWelcome(toEmail, toName, accountURL string) error
	SendPasswordReset(toEmail, toName, resetURL string) error
}
