package entity

type FieldKind string

const (
	FieldText  FieldKind = "text"
	FieldEmail FieldKind = "email"
)

// Имена отслеживаемых полей формы
const (
	FieldFullName  = "full_name"
	FieldEmailAddr = "email"
	FieldUsername  = "username"
)

// Field - описание отслеживаемого поля
type Field struct {
	Name  string    `json:"name"`
	Label string    `json:"label"`
	Kind  FieldKind `json:"kind"`
}

// FieldState - результат проверки одного поля. Не кешируется,
// пересчитывается при каждой проверке.
type FieldState struct {
	Name         string `json:"name"`
	RawValue     string `json:"raw_value"`
	IsValid      bool   `json:"is_valid"`
	Err          error  `json:"-"`
	ErrorMessage string `json:"error_message,omitempty"`
}
