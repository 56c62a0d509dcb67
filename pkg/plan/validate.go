package plan

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"

	"github.com/aretw0/readiness/pkg/domain"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var ownerRepo = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)

func init() {
	validate = validator.New()
	// Report fields by their CLI flag name.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("flag"); name != "" {
			return name
		}
		return f.Name
	})
	_ = validate.RegisterValidation("ownerrepo", func(fl validator.FieldLevel) bool {
		return ownerRepo.MatchString(fl.Field().String())
	})
}

// check runs the struct tags of opts and converts failures to config errors.
func check(opts any) []error {
	err := validate.Struct(opts)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []error{err}
	}
	out := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, domain.NewConfigError(fe.Field(), reason(fe)))
	}
	return out
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "missing required option"
	case "ownerrepo":
		return fmt.Sprintf("expected owner/repo, got %q", fe.Value())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	}
	return fmt.Sprintf("failed %q validation", fe.Tag())
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return &domain.AggregateError{Errors: errs}
}
