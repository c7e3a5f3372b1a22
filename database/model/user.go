package model

// NewLocalUser builds an account that signs in with an email and password hash.
func NewLocalUser(name, email, hash string) *User {
	return &User{Name: name, Email: email, Password: &hash}
}

// NewOAuthUser builds an account without a local password.
func NewOAuthUser(name, email string) *User {
	return &User{Name: name, Email: email}
}
