package domain

import "errors"

// NewSubscriber is a validated subscription request.
type NewSubscriber struct {
	Email Email
	Name  Name
}

// ParseNewSubscriber validates both fields and reports every failure.
func ParseNewSubscriber(email, name string) (NewSubscriber, error) {
	e, emailErr := ParseEmail(email)
	n, nameErr := ParseName(name)
	if err := errors.Join(emailErr, nameErr); err != nil {
		return NewSubscriber{}, err
	}
	return NewSubscriber{Email: e, Name: n}, nil
}

// SubscriptionStatus is the stored state of a subscriber.
type SubscriptionStatus string

const (
	StatusPendingConfirmation SubscriptionStatus = "pending_confirmation"
	StatusConfirmed           SubscriptionStatus = "confirmed"
)
