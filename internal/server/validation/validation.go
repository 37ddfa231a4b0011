// Package validation holds the per-context field rules for user payloads.
// Every context is a pure function from a payload to a list of violations;
// nothing here touches the store.
package validation

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/teamkeeper/internal/common"
	"github.com/dmitrijs2005/teamkeeper/internal/server/models"
	"github.com/go-playground/validator/v10"
)

// Context names the operation whose rules apply.
type Context string

const (
	Default  Context = "default"
	Register Context = "register"
	Recover  Context = "recover"
)

// Mode distinguishes a new entity from an update of an existing one.
// Presence requirements only apply on Create.
type Mode int

const (
	Create Mode = iota
	Update
)

const (
	msgRequired = "This field is required."
	msgNotEmpty = "This field cannot be left empty."
)

type check struct {
	rule    string
	message string
	valid   func(any) bool
}

type field struct {
	name               string
	requiredOnCreate   bool
	allowEmptyOnCreate bool
	requiredMessage    string
	emptyMessage       string
	checks             []check
}

// Validator evaluates the rule sets. It is safe for concurrent use.
type Validator struct {
	v        *validator.Validate
	defaults []field
	recovery []field
}

// New builds the rule sets.
func New() *Validator {
	val := &Validator{v: validator.New(validator.WithRequiredStructEnabled())}

	username := val.usernameField()
	val.defaults = []field{
		val.idField(),
		username,
		booleanField(common.FieldActive),
		booleanField(common.FieldDeleted),
		profileField(),
	}
	val.recovery = []field{username}
	return val
}

func (val *Validator) idField() field {
	return field{
		name:               common.FieldID,
		allowEmptyOnCreate: true,
		emptyMessage:       msgNotEmpty,
		checks: []check{
			{rule: "uuid", message: "The user id should be a valid UUID.", valid: val.tag("uuid")},
		},
	}
}

func (val *Validator) usernameField() field {
	const required = "A username is required."
	return field{
		name:             common.FieldUsername,
		requiredOnCreate: true,
		requiredMessage:  required,
		emptyMessage:     required,
		checks: []check{
			{
				rule:    "maxLength",
				message: fmt.Sprintf("The username length should be maximum %d characters.", common.UsernameMaxLength),
				valid:   val.tag("max=" + strconv.Itoa(common.UsernameMaxLength)),
			},
			{rule: "email", message: "The username should be a valid email address.", valid: val.tag("email")},
		},
	}
}

// profileField requires a map carrying a non-empty first and last name, the
// only shape that ToUser turns into a profile row.
func profileField() field {
	return field{
		name:             common.FieldProfile,
		requiredOnCreate: true,
		requiredMessage:  msgRequired,
		emptyMessage:     msgNotEmpty,
		checks: []check{{
			rule:    "profile",
			message: "The profile should contain a first name and a last name.",
			valid: func(v any) bool {
				prof, ok := models.AsProfile(v)
				return ok && strings.TrimSpace(prof.FirstName) != "" && strings.TrimSpace(prof.LastName) != ""
			},
		}},
	}
}

func booleanField(name string) field {
	return field{
		name:             name,
		requiredOnCreate: true,
		requiredMessage:  msgRequired,
		emptyMessage:     msgNotEmpty,
		checks: []check{{
			rule:    "boolean",
			message: fmt.Sprintf("The %s flag should be a boolean.", name),
			valid: func(v any) bool {
				_, ok := common.ToBool(v)
				return ok
			},
		}},
	}
}

// tag adapts a validator tag to a string check. Non-string values fail.
func (val *Validator) tag(tag string) func(any) bool {
	return func(v any) bool {
		s, ok := v.(string)
		if !ok {
			return false
		}
		return val.v.Var(s, tag) == nil
	}
}

// Default applies the general user rules.
func (val *Validator) Default(mode Mode, p models.Payload) []common.Violation {
	return run(val.defaults, mode, p)
}

// Register applies the default rules unchanged. Registration does not relax
// them; the sensitive fields are forced by the normalizer instead.
func (val *Validator) Register(mode Mode, p models.Payload) []common.Violation {
	return val.Default(mode, p)
}

// Recover checks the username only; a recovery request carries nothing else.
func (val *Validator) Recover(mode Mode, p models.Payload) []common.Violation {
	return run(val.recovery, mode, p)
}

// Validate dispatches to the rule set named by ctx.
func (val *Validator) Validate(ctx Context, mode Mode, p models.Payload) ([]common.Violation, error) {
	switch ctx {
	case Default:
		return val.Default(mode, p), nil
	case Register:
		return val.Register(mode, p), nil
	case Recover:
		return val.Recover(mode, p), nil
	default:
		return nil, fmt.Errorf("unknown validation context %q", ctx)
	}
}

// Check is Validate folded into a single error: nil when valid, otherwise a
// *common.ValidationError listing every violation.
func (val *Validator) Check(ctx Context, mode Mode, p models.Payload) error {
	violations, err := val.Validate(ctx, mode, p)
	if err != nil {
		return err
	}
	if len(violations) > 0 {
		return &common.ValidationError{Context: string(ctx), Violations: violations}
	}
	return nil
}

func run(fields []field, mode Mode, p models.Payload) []common.Violation {
	var out []common.Violation
	for _, f := range fields {
		value, present := p[f.name]
		if !present {
			if mode == Create && f.requiredOnCreate {
				out = append(out, common.Violation{Field: f.name, Rule: "required", Message: f.requiredMessage})
			}
			continue
		}

		if isEmpty(value) {
			if mode == Create && f.allowEmptyOnCreate {
				continue
			}
			out = append(out, common.Violation{Field: f.name, Rule: "notEmpty", Message: f.emptyMessage})
			continue
		}

		for _, c := range f.checks {
			if !c.valid(value) {
				out = append(out, common.Violation{Field: f.name, Rule: c.rule, Message: c.message})
			}
		}
	}
	return out
}

// isEmpty treats nil, "" and empty collections as empty. false and 0 are
// values, not emptiness.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
