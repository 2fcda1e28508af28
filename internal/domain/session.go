package domain

import "time"

// MailSession is the paging cursor for the mail list, saved between runs
// so that `mail list --next` can continue where the last call stopped.
type MailSession struct {
	IntegrationID string
	Filter        EmailFilter
	Search        string
	BaseQuery     string
	Tokens        []string
	PageIndex     int
	NextToken     string
	UpdatedAt     time.Time
}

// Profile is one backend the client has talked to.
type Profile struct {
	ID        string
	BaseURL   string
	CreatedAt time.Time
	LastUsed  time.Time
}
