package ports

import "context"

// EmailService defines the interface for email operations
type EmailService interface {
	SendPasswordResetEmail(ctx context.Context, email, token, userName string) error
}
