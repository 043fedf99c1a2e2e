package services

import (
	"errors"
	"fmt"
	"strings"

	"taskdesk/taskdesk/models"

	"github.com/go-playground/validator/v10"
)

const (
	maxTitleLen       = 100
	maxDescriptionLen = 500
	maxEmailLen       = 320
	maxNameLen        = 120
	// bcrypt only looks at the first 72 bytes.
	maxPasswordBytes = 72
)

var validate = validator.New()

// SignupFields are normalized signup form values.
type SignupFields struct {
	Email    string
	Name     string
	Password string
}

// SigninFields are normalized signin form values.
type SigninFields struct {
	Email    string
	Password string
}

// NormalizeTaskForm validates a new-task submission.
func NormalizeTaskForm(rawTitle, rawDescription, rawPriority string) (models.TaskFields, error) {
	ve := &ValidationError{}

	title := strings.TrimSpace(rawTitle)
	description := strings.TrimSpace(rawDescription)
	checkField(ve, "title", title, fmt.Sprintf("required,max=%d", maxTitleLen))
	checkField(ve, "description", description, fmt.Sprintf("required,max=%d", maxDescriptionLen))
	priority := checkPriority(ve, rawPriority)

	if len(ve.Fields) > 0 {
		return models.TaskFields{}, ve
	}
	return models.TaskFields{
		Title:       title,
		Description: description,
		Priority:    priority,
	}, nil
}

// NormalizeTaskUpdate validates an edit submission. Omitted fields stay nil.
func NormalizeTaskUpdate(rawTitle, rawDescription, rawPriority *string) (models.TaskUpdate, error) {
	ve := &ValidationError{}
	var update models.TaskUpdate

	if rawTitle != nil {
		title := strings.TrimSpace(*rawTitle)
		checkField(ve, "title", title, fmt.Sprintf("required,max=%d", maxTitleLen))
		update.Title = &title
	}
	if rawDescription != nil {
		description := strings.TrimSpace(*rawDescription)
		checkField(ve, "description", description, fmt.Sprintf("required,max=%d", maxDescriptionLen))
		update.Description = &description
	}
	if rawPriority != nil {
		priority := checkPriority(ve, *rawPriority)
		update.Priority = &priority
	}

	if len(ve.Fields) > 0 {
		return models.TaskUpdate{}, ve
	}
	return update, nil
}

// NormalizeSignupForm validates a signup submission. The password is not trimmed.
func NormalizeSignupForm(rawEmail, rawName, password string) (SignupFields, error) {
	ve := &ValidationError{}

	email := strings.TrimSpace(rawEmail)
	name := strings.TrimSpace(rawName)
	checkField(ve, "email", email, fmt.Sprintf("required,email,max=%d", maxEmailLen))
	checkField(ve, "name", name, fmt.Sprintf("required,max=%d", maxNameLen))
	checkPassword(ve, password)

	if len(ve.Fields) > 0 {
		return SignupFields{}, ve
	}
	return SignupFields{Email: email, Name: name, Password: password}, nil
}

// NormalizeSigninForm validates a signin submission.
func NormalizeSigninForm(rawEmail, password string) (SigninFields, error) {
	ve := &ValidationError{}

	email := strings.TrimSpace(rawEmail)
	checkField(ve, "email", email, "required")
	checkField(ve, "password", password, "required")

	if len(ve.Fields) > 0 {
		return SigninFields{}, ve
	}
	return SigninFields{Email: email, Password: password}, nil
}

func checkPriority(ve *ValidationError, raw string) models.Priority {
	priority, err := models.PriorityFromString(strings.TrimSpace(raw))
	if err != nil {
		ve.add("priority", fmt.Sprintf("priority must be one of: %s", joinPriorities()))
		return models.PriorityUnset
	}
	return priority
}

func checkPassword(ve *ValidationError, password string) {
	checkField(ve, "password", password, "required")
	if len(password) > maxPasswordBytes {
		ve.add("password", fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
	}
}

func checkField(ve *ValidationError, field, value, tag string) {
	err := validate.Var(value, tag)
	if err == nil {
		return
	}
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		for _, fe := range errs {
			ve.add(field, fieldError(field, fe))
		}
		return
	}
	ve.add(field, err.Error())
}

// fieldError converts a single FieldError into a human-readable message.
func fieldError(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

func joinPriorities() string {
	names := make([]string, 0, 3)
	for _, p := range models.Priorities() {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}
