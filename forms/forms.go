// Package forms declares the submission shapes for every form in the app.
// Validation is declarative through binding tags and is all-or-nothing: a
// submission with any failing rule must not reach the database.
package forms

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

type RegisterForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
	Name     string `form:"name" binding:"required"`
}

type LoginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

type PostForm struct {
	Title    string `form:"title" binding:"required"`
	Subtitle string `form:"subtitle" binding:"required"`
	ImgURL   string `form:"img_url" binding:"required,url"`
	Body     string `form:"body" binding:"required"`
}

type CommentForm struct {
	Body string `form:"body" binding:"required"`
}

type ContactForm struct {
	Name    string `form:"name" binding:"required"`
	Email   string `form:"email" binding:"required,email"`
	Message string `form:"message" binding:"required"`
}

// ErrorMessages converts a binding error into per-field messages keyed by
// struct field name, for re-rendering the form inline.
func ErrorMessages(err error) map[string]string {
	messages := make(map[string]string)

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		messages["Form"] = "Invalid form submission"
		return messages
	}

	for _, fe := range fieldErrors {
		switch fe.Tag() {
		case "required":
			messages[fe.Field()] = "This field is required"
		case "email":
			messages[fe.Field()] = "Please enter a valid email address"
		case "url":
			messages[fe.Field()] = "Please enter a valid URL"
		default:
			messages[fe.Field()] = "Invalid value"
		}
	}

	return messages
}
