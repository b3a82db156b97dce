// Package view хранит состояние областей страницы генератора билетов:
// слот ошибки, превью, подписи поля загрузки, индикаторы полей и
// страницу подтверждения. Логика формы пишет сюда, HTTP слой читает
// снимок и рендерит его.
package view

import (
	"errors"
	"strconv"
	"sync"

	"github.com/St1cky1/ticket-generator/internal/entity"
)

// UploadPrompt - исходный текст подписи поля загрузки
const UploadPrompt = " Drag and drop or click to upload"

// RequiredFontSize - размер шрифта, который принудительно ставится
// индикатору пустого поля
const RequiredFontSize = "13px"

type ErrorSlot struct {
	Text   string `json:"text"`
	Hidden bool   `json:"hidden"`
}

type UploadArea struct {
	Label          string `json:"label"`
	LabelHidden    bool   `json:"label_hidden"`
	IconVisible    bool   `json:"icon_visible"`
	ControlsActive bool   `json:"controls_active"`
	DragOver       bool   `json:"drag_over"`
	PickerOpen     bool   `json:"picker_open"`
	PickerValue    string `json:"picker_value"`
}

type Image struct {
	Src    string `json:"src"`
	Hidden bool   `json:"hidden"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

type FieldIndicator struct {
	Value    string `json:"value"`
	Message  string `json:"message"`
	Visible  bool   `json:"visible"`
	FontSize string `json:"font_size,omitempty"`
	Outlined bool   `json:"outlined"`
}

// Confirmation - текстовые слоты страницы подтверждения
type Confirmation struct {
	DisplayName  string `json:"display_name"`
	Email        string `json:"email"`
	BadgeName    string `json:"badge_name"`
	Username     string `json:"username"`
	Month        string `json:"month"`
	Day          string `json:"day"`
	Year         string `json:"year"`
	TicketNumber string `json:"ticket_number"`
}

// Snapshot - копия состояния страницы на момент чтения
type Snapshot struct {
	Error              ErrorSlot                 `json:"error"`
	Upload             UploadArea                `json:"upload"`
	Preview            Image                     `json:"preview"`
	Fields             map[string]FieldIndicator `json:"fields"`
	FormHidden         bool                      `json:"form_hidden"`
	DescriptionHidden  bool                      `json:"description_hidden"`
	ConfirmationActive bool                      `json:"confirmation_active"`
	Confirmation       Confirmation              `json:"confirmation"`
	Avatar             Image                     `json:"avatar"`
}

// Page - области одной открытой страницы. Методы безопасны для вызова
// из горутины декодирования превью.
type Page struct {
	mu    sync.Mutex
	state Snapshot
}

func NewPage() *Page {
	return &Page{
		state: Snapshot{
			Error:   ErrorSlot{Hidden: true},
			Upload:  UploadArea{Label: UploadPrompt, IconVisible: true},
			Preview: Image{Hidden: true},
			Fields:  make(map[string]FieldIndicator),
		},
	}
}

func (p *Page) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.state
	s.Fields = make(map[string]FieldIndicator, len(p.state.Fields))
	for k, v := range p.state.Fields {
		s.Fields[k] = v
	}
	return s
}

// ShowError пишет сообщение в общий слот, затирая предыдущее
func (p *Page) ShowError(message string) {
	if message == "" {
		p.ClearError()
		return
	}
	p.mu.Lock()
	p.state.Error = ErrorSlot{Text: message}
	p.mu.Unlock()
}

func (p *Page) ClearError() {
	p.mu.Lock()
	p.state.Error = ErrorSlot{Hidden: true}
	p.mu.Unlock()
}

func (p *Page) SetUploadLabel(text string) {
	p.mu.Lock()
	p.state.Upload.Label = text
	p.mu.Unlock()
}

// ResetUpload возвращает поле загрузки в исходный вид
func (p *Page) ResetUpload() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state.Preview = Image{Hidden: true}
	p.state.Upload.ControlsActive = false
	p.state.Upload.IconVisible = true
	p.state.Upload.Label = UploadPrompt
	p.state.Upload.LabelHidden = false
}

func (p *Page) OpenPicker() {
	p.mu.Lock()
	p.state.Upload.PickerOpen = true
	p.mu.Unlock()
}

// ResetPicker сбрасывает значение input[type=file], иначе повторный выбор
// того же файла не даст события change
func (p *Page) ResetPicker() {
	p.mu.Lock()
	p.state.Upload.PickerValue = ""
	p.mu.Unlock()
}

func (p *Page) SetPickerValue(name string) {
	p.mu.Lock()
	p.state.Upload.PickerValue = name
	p.state.Upload.PickerOpen = false
	p.mu.Unlock()
}

func (p *Page) SetDragOver(active bool) {
	p.mu.Lock()
	p.state.Upload.DragOver = active
	p.mu.Unlock()
}

func (p *Page) SetFieldIndicator(st entity.FieldState) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ind := FieldIndicator{Value: st.RawValue}
	if !st.IsValid {
		ind.Message = st.ErrorMessage
		ind.Visible = true
		ind.Outlined = true
		if errors.Is(st.Err, entity.ErrRequiredFieldEmpty) {
			ind.FontSize = RequiredFontSize
		}
	}
	p.state.Fields[st.Name] = ind
}

func (p *Page) ClearTicketNumber() {
	p.mu.Lock()
	p.state.Confirmation.TicketNumber = ""
	p.mu.Unlock()
}

// ShowConfirmation прячет форму и заполняет страницу подтверждения
func (p *Page) ShowConfirmation(t *entity.TicketView) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state.FormHidden = true
	p.state.DescriptionHidden = true
	p.state.ConfirmationActive = true
	p.state.Confirmation = Confirmation{
		DisplayName:  t.FullName,
		Email:        t.Email,
		BadgeName:    t.FullName,
		Username:     t.Username,
		Month:        t.Month,
		Day:          strconv.Itoa(t.Day),
		Year:         strconv.Itoa(t.Year),
		TicketNumber: t.TicketNumber,
	}
}

// Preview - цель для живого превью
func (p *Page) Preview() *PreviewImage { return &PreviewImage{page: p} }

// Avatar - цель для аватарки на странице подтверждения
func (p *Page) Avatar() *AvatarImage { return &AvatarImage{page: p} }

type PreviewImage struct {
	page *Page
}

// SetSource показывает превью, прячет иконку загрузки и включает кнопки
// remove/change. Пустой src прячет превью.
func (i *PreviewImage) SetSource(src string) {
	i.page.mu.Lock()
	defer i.page.mu.Unlock()

	st := &i.page.state
	if src == "" {
		st.Preview.Src = ""
		st.Preview.Hidden = true
		return
	}
	st.Preview.Src = src
	st.Preview.Hidden = false
	st.Upload.IconVisible = false
	st.Upload.ControlsActive = true
}

func (i *PreviewImage) SetDimensions(width, height int) {
	i.page.mu.Lock()
	i.page.state.Preview.Width = width
	i.page.state.Preview.Height = height
	i.page.mu.Unlock()
}

type AvatarImage struct {
	page *Page
}

func (i *AvatarImage) SetSource(src string) {
	i.page.mu.Lock()
	i.page.state.Avatar.Src = src
	i.page.state.Avatar.Hidden = src == ""
	i.page.mu.Unlock()
}

func (i *AvatarImage) SetDimensions(width, height int) {
	i.page.mu.Lock()
	i.page.state.Avatar.Width = width
	i.page.state.Avatar.Height = height
	i.page.mu.Unlock()
}
