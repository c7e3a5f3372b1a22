// Package entity defines the form payloads accepted by the web layer.
package entity

// SignupForm is posted by the signup page.
type SignupForm struct {
	Name     string `form:"name"`
	Email    string `form:"email"`
	Password string `form:"password"`
}

// LoginForm is posted by the login page.
type LoginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// TaskForm carries the text of a new or edited task.
type TaskForm struct {
	Task string `form:"task"`
}
