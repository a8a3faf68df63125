// Package i18n holds the user-facing strings of the recipe views in English and Thai
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Key identifies a message. Keys are the English source strings.
type Key = string

const (
	DraftSaved         Key = "Draft saved"
	ConfirmDelete      Key = "Do you want to delete this recipe?"
	CreatedAt          Key = "Created: %s"
	DescriptionHeading Key = "Description:"
	TimeHeading        Key = "Time:"
	DifficultyHeading  Key = "Difficulty:"
	ServingsHeading    Key = "Servings:"
	IngredientsHeading Key = "Ingredients:"
	MethodHeading      Key = "Method:"
	ImageHeading       Key = "Image:"
	Published          Key = "Published"
	Draft              Key = "Draft"
	Loading            Key = "Loading recipe..."
	NotFound           Key = "Recipe not found"
	Saving             Key = "Saving..."
	Copyright          Key = "Copyright © %s %s"
	UploadFailed       Key = "Image upload failed"
	RecipeDeleted      Key = "Recipe %s deleted"
	RecipeTitle        Key = "Recipe"
	EditingTitle       Key = "Editing recipe"
	ErrorLabel         Key = "Error: %s"
)

// thai translations, taken from the web client
var thai = map[Key]string{
	DraftSaved:         "บันทึกฉบับร่างแล้ว",
	ConfirmDelete:      "คุณต้องการลบสูตรอาหารนี้หรือไม่?",
	CreatedAt:          "สร้างเมื่อ: %s",
	DescriptionHeading: "คำอธิบาย:",
	TimeHeading:        "ระยะเวลา:",
	DifficultyHeading:  "ความยาก:",
	ServingsHeading:    "จำนวนที่เสิร์ฟ:",
	IngredientsHeading: "วัตถุดิบ:",
	MethodHeading:      "วิธีทำ:",
	ImageHeading:       "รูปภาพ:",
	Published:          "เผยแพร่แล้ว",
	Draft:              "ฉบับร่าง",
	Loading:            "กำลังโหลดสูตรอาหาร...",
	NotFound:           "ไม่พบสูตรอาหาร",
	Saving:             "กำลังบันทึก...",
	Copyright:          "ลิขสิทธิ์ © %s %s",
	UploadFailed:       "อัปโหลดรูปภาพไม่สำเร็จ",
	RecipeDeleted:      "ลบสูตรอาหาร %s แล้ว",
	RecipeTitle:        "สูตรอาหาร",
	EditingTitle:       "กำลังแก้ไขสูตรอาหาร",
	ErrorLabel:         "ข้อผิดพลาด: %s",
}

var supported = []language.Tag{language.English, language.Thai}

// Messages renders keys for one locale. Each value owns its catalog so
// nothing is registered process-wide.
type Messages struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns the messages for locale ("en", "th", "th-TH", ...). Unsupported
// but well-formed locales fall back to English.
func New(locale string) (*Messages, error) {
	if locale == "" {
		locale = "en"
	}
	requested, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}

	_, idx, _ := language.NewMatcher(supported).Match(requested)
	tag := supported[idx]

	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, tr := range thai {
		if err := b.SetString(language.English, key, key); err != nil {
			return nil, err
		}
		if err := b.SetString(language.Thai, key, tr); err != nil {
			return nil, err
		}
	}

	return &Messages{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(b)),
	}, nil
}

// Default returns the English messages
func Default() *Messages {
	m, err := New("en")
	if err != nil {
		panic(err)
	}
	return m
}

// Tag returns the resolved language
func (m *Messages) Tag() language.Tag {
	return m.tag
}

// Get renders key with args
func (m *Messages) Get(key Key, args ...interface{}) string {
	return m.printer.Sprintf(key, args...)
}
