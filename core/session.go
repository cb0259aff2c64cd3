package core

// Session identifies the signed-in account every record operation is scoped to.
// It is built per request from the identity provider's token and passed explicitly.
type Session struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email,omitempty"`
}

func NewSession(accountID, email string) Session {
	return Session{AccountID: CleanString(accountID), Email: CleanString(email, true /* lower */)}
}

func (s Session) IsZero() bool { return s.AccountID == "" }

// Check returns ErrNoSession when no account is signed in.
func (s Session) Check() error {
	if s.IsZero() {
		return ErrNoSession
	}
	return nil
}
