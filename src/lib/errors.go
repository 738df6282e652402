package lib

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

type ValidationError struct {
	Msg      string `json:"msg"`
	Param    string `json:"param,omitempty"`
	Location string `json:"location,omitempty"`
}

// ValidationErrors is returned by handlers to answer 400 {errors: [...]}
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Msg)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Reject builds a body-less validation failure such as "User already exists"
func Reject(msg string) ValidationErrors {
	return ValidationErrors{{Msg: msg}}
}

// Validation collects failed checks on request body fields
type Validation struct {
	errs ValidationErrors
}

func (v *Validation) add(param, msg string) {
	v.errs = append(v.errs, ValidationError{Msg: msg, Param: param, Location: "body"})
}

func (v *Validation) Required(value, param, msg string) {
	if value == "" {
		v.add(param, msg)
	}
}

func (v *Validation) Email(value, param, msg string) {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value || !strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@"):], ".") {
		v.add(param, msg)
	}
}

func (v *Validation) MinLength(value string, n int, param, msg string) {
	if len([]rune(value)) < n {
		v.add(param, msg)
	}
}

// Date checks a required date field and returns the parsed value
func (v *Validation) Date(value, param, msg string) time.Time {
	if value == "" {
		v.add(param, msg)
		return time.Time{}
	}
	t, err := ParseDate(value)
	if err != nil {
		v.add(param, "Invalid date")
	}
	return t
}

// Err returns nil when every check passed
func (v *Validation) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return v.errs
}

// ParseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.DateOnly, value)
}

// ErrorHandler renders validation failures and *fiber.Error as JSON;
// everything else is logged and answered with a bare 500
func ErrorHandler(c *fiber.Ctx, err error) error {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": verrs})
	}

	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return c.Status(ferr.Code).JSON(MessageResponse(ferr.Message))
	}

	log.Errorf("[%v] %s %s: %v", c.Locals(requestid.ConfigDefault.ContextKey), c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).SendString("Server error")
}
