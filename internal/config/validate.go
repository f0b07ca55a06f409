package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tpodg/wakenrun/internal/wol"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks t and reports every problem found in a single *Error.
func Validate(t *Task) error {
	var errs []string

	if err := validate.Struct(t); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return &Error{Err: err}
		}
		for _, fe := range verrs {
			errs = append(errs, describe(fe))
		}
	}

	if t.Wake.Enabled {
		if strings.TrimSpace(t.Wake.MAC) == "" {
			errs = append(errs, "wakeup_instructions.mac must be set when wake is enabled")
		} else if _, err := wol.ParseMAC(t.Wake.MAC); err != nil {
			errs = append(errs, fmt.Sprintf("wakeup_instructions.mac: %v", err))
		}
	}

	for i, in := range t.Instructions {
		hasCmd := strings.TrimSpace(in.Command) != ""
		hasArgs := len(in.Args) > 0
		switch {
		case hasCmd == hasArgs:
			errs = append(errs, fmt.Sprintf("instructions[%d]: exactly one of command or args must be set", i))
		case hasArgs && in.ExecutionSide == SideRemote:
			errs = append(errs, fmt.Sprintf("instructions[%d]: args are only supported for local instructions", i))
		case hasArgs && strings.TrimSpace(in.Args[0]) == "":
			errs = append(errs, fmt.Sprintf("instructions[%d].args[0] must name a program", i))
		}
	}

	if t.Shutdown.ShutdownRemote && strings.TrimSpace(t.Shutdown.ShutdownCmd) == "" {
		errs = append(errs, "after_instructions.shutdown_cmd must be set when shutdown_remote is enabled")
	}

	if len(errs) > 0 {
		return &Error{Err: errors.New(strings.Join(errs, "; "))}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Task.")
	switch fe.Tag() {
	case "required":
		return field + " must be set"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", field, fe.Param())
	case "hostname_port":
		return fmt.Sprintf("%s must be host:port, got %q", field, fe.Value())
	case "hostname_rfc1123|ip":
		return fmt.Sprintf("%s must be a hostname or IP address, got %q", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed %q validation", field, fe.Tag())
	}
}
