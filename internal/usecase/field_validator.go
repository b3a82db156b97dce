package usecase

import (
	"regexp"
	"strings"

	"github.com/St1cky1/ticket-generator/internal/entity"
)

var emailRegex = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// DefaultFields - поля формы билета в порядке отображения
func DefaultFields() []entity.Field {
	return []entity.Field{
		{Name: entity.FieldFullName, Label: "Full Name", Kind: entity.FieldText},
		{Name: entity.FieldEmailAddr, Label: "Email Address", Kind: entity.FieldEmail},
		{Name: entity.FieldUsername, Label: "GitHub Username", Kind: entity.FieldText},
	}
}

type FieldValidator struct {
	fields  []entity.Field
	surface ISurface
}

// NewFieldValidator без списка полей использует DefaultFields
func NewFieldValidator(surface ISurface, fields ...entity.Field) *FieldValidator {
	if len(fields) == 0 {
		fields = DefaultFields()
	}
	return &FieldValidator{
		fields:  fields,
		surface: surface,
	}
}

func (v *FieldValidator) Fields() []entity.Field {
	out := make([]entity.Field, len(v.fields))
	copy(out, v.fields)
	return out
}

// Tracks сообщает, отслеживается ли поле с таким именем
func (v *FieldValidator) Tracks(name string) bool {
	for _, f := range v.fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Check проверяет одно значение, на страницу ничего не пишет
func Check(f entity.Field, value string) entity.FieldState {
	st := entity.FieldState{Name: f.Name, RawValue: value, IsValid: true}

	switch {
	case strings.TrimSpace(value) == "":
		st.IsValid = false
		st.Err = entity.ErrRequiredFieldEmpty
	case f.Kind == entity.FieldEmail && !ValidEmail(value):
		st.IsValid = false
		st.Err = entity.ErrInvalidEmailFormat
	}

	st.ErrorMessage = entity.UserMessage(st.Err)
	return st
}

func ValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// Validate проверяет все отслеживаемые поля, обновляет индикаторы и
// возвращает true только если валидны все поля
func (v *FieldValidator) Validate(values map[string]string) ([]entity.FieldState, bool) {
	states := make([]entity.FieldState, 0, len(v.fields))
	ok := true

	for _, f := range v.fields {
		st := Check(f, values[f.Name])
		v.surface.SetFieldIndicator(st)
		if !st.IsValid {
			ok = false
		}
		states = append(states, st)
	}

	return states, ok
}
