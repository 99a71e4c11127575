package file

import (
	"time"

	"github.com/google/uuid"
)

type Purpose string

const (
	PurposeCV          Purpose = "cv"
	PurposeAvatar      Purpose = "avatar"
	PurposeCertificate Purpose = "certificate"
	PurposeLogo        Purpose = "logo"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypePNG  = "image/png"
	ContentTypeJPEG = "image/jpeg"
	ContentTypeWEBP = "image/webp"
)

var allowed = map[Purpose][]string{
	PurposeCV:          {ContentTypePDF, ContentTypeDOCX},
	PurposeAvatar:      {ContentTypePNG, ContentTypeJPEG, ContentTypeWEBP},
	PurposeLogo:        {ContentTypePNG, ContentTypeJPEG, ContentTypeWEBP},
	PurposeCertificate: {ContentTypePDF, ContentTypePNG, ContentTypeJPEG},
}

func (p Purpose) Valid() bool {
	_, ok := allowed[p]
	return ok
}

func (p Purpose) Accepts(contentType string) bool {
	for _, ct := range allowed[p] {
		if ct == contentType {
			return true
		}
	}
	return false
}

type File struct {
	ID           uuid.UUID `json:"id"`
	OwnerID      uuid.UUID `json:"owner_id"`
	Purpose      Purpose   `json:"purpose"`
	ObjectKey    string    `json:"object_key"`
	ContentType  string    `json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	OriginalName string    `json:"original_name"`
	CreatedAt    time.Time `json:"created_at"`
}
