package validate

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/dimitrije/lessonforge-api/internal/models"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	v          *validator.Validate
	translator ut.Translator
)

// Error lists failed fields by their JSON name.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, e.Fields[name])
	}
	return strings.Join(msgs, "; ")
}

func (e *Error) Unwrap() error {
	return models.ErrValidation
}

func init() {
	v = validator.New()

	english := en.New()
	uni := ut.New(english, english)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, translator)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	register("content_type", "{0} must be one of Course, Presentation, Quiz, Tutorial", func(s string) bool {
		return models.ContentType(s).Valid()
	})
	register("share_type", "{0} must be one of link, email, user, group, public", func(s string) bool {
		return models.ShareType(s).Valid()
	})
	register("member_role", "{0} must be one of editor, reviewer, commenter", func(s string) bool {
		return models.MemberRole(s).Valid()
	})
	register("task_status", "{0} must be one of todo, in-progress, review, completed", func(s string) bool {
		return models.TaskStatus(s).Valid()
	})
	register("task_priority", "{0} must be one of low, medium, high, urgent", func(s string) bool {
		return models.TaskPriority(s).Valid()
	})
	register("collaboration_status", "{0} must be one of active, paused, completed", func(s string) bool {
		return models.CollaborationStatus(s).Valid()
	})
}

// register adds a string-enum tag and its English message.
func register(tag, text string, valid func(string) bool) {
	_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return valid(fl.Field().String())
	})
	_ = v.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Struct validates a request body. The returned error is an *Error for
// field failures.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &Error{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields[fe.Field()] = fe.Translate(translator)
	}
	return out
}
