package validator

import (
	"log"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const DateLayout = "2006-01-02"

func RegisterGinValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Register(v)
	}
}

func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("dob", dateOfBirthValidator); err != nil {
		log.Fatal("register dob validator failed")
	}
	if err := v.RegisterValidation("otp", otpValidator); err != nil {
		log.Fatal("register otp validator failed")
	}
}

// ParseDate accepts YYYY-MM-DD or a full RFC 3339 timestamp.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, nil
	}

	return time.Parse(time.RFC3339, value)
}

var dateOfBirthValidator validator.Func = func(fl validator.FieldLevel) bool {
	dob, err := ParseDate(fl.Field().String())
	if err != nil {
		return false
	}

	return !dob.After(time.Now())
}

// otpValidator accepts exactly six decimal digits.
var otpValidator validator.Func = func(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
