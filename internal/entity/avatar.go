package entity

import "strings"

// MaxAvatarSize - лимит размера аватарки. Именно 5*1014*1024, а не 5 MiB.
const MaxAvatarSize = 5 * 1014 * 1024

// Avatar - файл, выбранный пользователем (picker или drag-and-drop)
type Avatar struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Data        []byte `json:"-"`
}

// IsImage проверяет заявленный тип файла
func (a *Avatar) IsImage() bool {
	return a != nil && strings.HasPrefix(a.ContentType, "image/")
}
