// Package downloads handles gated file download forms.
package downloads

import (
	"context"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitecms/internal/apperrors"
	"github.com/goliatone/go-sitecms/internal/locale"
)

var (
	// ErrMappingNotFound reports a file without CRM routing.
	ErrMappingNotFound = apperrors.New(apperrors.KindNotFound, "DOWNLOAD_MAPPING_NOT_FOUND", "downloads: file mapping not found")
)

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^[0-9+()\-\s./]{5,32}$`)
)

// Request is one submitted download form, stored in download_requests.
type Request struct {
	bun.BaseModel `bun:"table:download_requests,alias:dr"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	FirstName string    `bun:"first_name,notnull" json:"firstName"`
	LastName  string    `bun:"last_name,notnull" json:"lastName"`
	Email     string    `bun:"email,notnull" json:"email"`
	Company   string    `bun:"company,notnull,default:''" json:"company,omitempty"`
	Country   string    `bun:"country,notnull,default:''" json:"country,omitempty"`
	Phone     string    `bun:"phone,notnull,default:''" json:"phone,omitempty"`
	FileKey   string    `bun:"file_key,notnull" json:"fileKey"`
	FileName  string    `bun:"file_name,notnull,default:''" json:"fileName,omitempty"`
	Language  string    `bun:"language,notnull,default:'en'" json:"language,omitempty"`
	Consent   bool      `bun:"consent,notnull" json:"consent"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

// Validate checks the form fields before anything is stored.
func (r Request) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), validation.Match(emailPattern).Error("must be a valid email address")),
		validation.Field(&r.Company, validation.Length(0, 200)),
		validation.Field(&r.Phone, validation.Match(phonePattern)),
		validation.Field(&r.FileKey, validation.Required, validation.Length(1, 300)),
		validation.Field(&r.Language, validation.By(func(value any) error {
			code, _ := value.(string)
			if code == "" {
				return nil
			}
			if _, err := locale.Parse(code); err != nil {
				return validation.NewError("downloads.language", "unsupported language")
			}
			return nil
		})),
		validation.Field(&r.Consent, validation.Required.Error("consent is required")),
	)
	if err != nil {
		return &apperrors.Error{Kind: apperrors.KindValidation, Code: "DOWNLOAD_FORM_INVALID", Message: "downloads: invalid form", Err: err}
	}
	return nil
}

func (r *Request) normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Company = strings.TrimSpace(r.Company)
	r.Country = strings.TrimSpace(r.Country)
	r.Phone = strings.TrimSpace(r.Phone)
	r.FileKey = strings.TrimSpace(r.FileKey)
	r.Language = strings.ToLower(strings.TrimSpace(r.Language))
}

// FileSegmentMapping routes downloads of one file into CRM lists.
type FileSegmentMapping struct {
	bun.BaseModel `bun:"table:file_segment_mappings,alias:fsm"`

	ID         uuid.UUID `bun:",pk,type:uuid" json:"id"`
	FileKey    string    `bun:"file_key,notnull,unique" json:"fileKey"`
	SegmentID  int       `bun:"segment_id,notnull,default:0" json:"segmentId"`
	CampaignID int       `bun:"campaign_id,notnull,default:0" json:"campaignId"`
	Tags       []string  `bun:"tags,type:jsonb" json:"tags,omitempty"`
	Points     int       `bun:"points,notnull,default:0" json:"points"`
}

// Repository persists requests and reads mappings.
type Repository interface {
	Create(ctx context.Context, req *Request) (*Request, error)
	List(ctx context.Context, limit int) ([]*Request, error)
	Mapping(ctx context.Context, fileKey string) (*FileSegmentMapping, error)
	SaveMapping(ctx context.Context, mapping *FileSegmentMapping) (*FileSegmentMapping, error)
}

// Migrate creates the download tables.
func Migrate(ctx context.Context, db bun.IDB) error {
	models := []any{(*Request)(nil), (*FileSegmentMapping)(nil)}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func cloneRequest(r *Request) *Request {
	out := *r
	return &out
}

func cloneMapping(m *FileSegmentMapping) *FileSegmentMapping {
	out := *m
	out.Tags = append([]string(nil), m.Tags...)
	return &out
}
